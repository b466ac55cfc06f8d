package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"storefront-demo/internal/handler"
	appmw "storefront-demo/internal/middleware"
	"storefront-demo/internal/repository"
	"storefront-demo/internal/service"
)

type Server struct {
	echo            *echo.Echo
	productHandler  *handler.ProductHandler
	cartHandler     *handler.CartHandler
	checkoutHandler *handler.CheckoutHandler
	orderHandler    *handler.OrderHandler
}

func NewServer(
	logger *zap.Logger,
	productRepo repository.ProductRepository,
	cartService service.CartService,
	checkoutService service.CheckoutService,
	paymentService service.PaymentService,
	orderService service.OrderService,
) *Server {
	e := echo.New()

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Error(v.Error),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:            e,
		productHandler:  handler.NewProductHandler(productRepo),
		cartHandler:     handler.NewCartHandler(cartService),
		checkoutHandler: handler.NewCheckoutHandler(checkoutService, paymentService),
		orderHandler:    handler.NewOrderHandler(orderService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	api.GET("/products", s.productHandler.ListProducts)

	authed := api.Group("", appmw.AuthMiddleware())

	// -------- cart --------
	authed.GET("/cart", s.cartHandler.GetCart)
	authed.POST("/cart", s.cartHandler.AddItem)
	authed.PUT("/cart", s.cartHandler.SetQuantity)

	// -------- checkout / payments --------
	authed.POST("/checkout", s.checkoutHandler.Checkout)
	authed.POST("/payments", s.checkoutHandler.InitiatePayment)
	authed.POST("/payments/:id/confirm", s.checkoutHandler.ConfirmPayment)
	authed.GET("/payments/:id", s.checkoutHandler.GetPayment)

	// -------- orders --------
	authed.GET("/orders", s.orderHandler.ListOrders)
	authed.GET("/orders/:id", s.orderHandler.GetOrder)

	// -------- admin --------
	admin := authed.Group("", appmw.RequireAdmin())
	admin.PATCH("/orders/:id/status", s.orderHandler.UpdateStatus)
	admin.POST("/admin/orders/status", s.orderHandler.BulkUpdateStatus)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
