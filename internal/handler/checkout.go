package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-demo/internal/dto"
	"storefront-demo/internal/middleware"
	"storefront-demo/internal/service"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
	paymentService  service.PaymentService
}

func NewCheckoutHandler(checkoutService service.CheckoutService, paymentService service.PaymentService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		paymentService:  paymentService,
	}
}

func (h *CheckoutHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := h.checkoutService.Checkout(ctx, middleware.BuyerID(c))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, dto.CheckoutResponse{OrderID: orderID})
}

func (h *CheckoutHandler) InitiatePayment(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.checkoutService.InitiatePayment(ctx, middleware.BuyerID(c))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, result)
}

func (h *CheckoutHandler) ConfirmPayment(c echo.Context) error {
	ctx := c.Request().Context()
	paymentID := c.Param("id")

	var req dto.ConfirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	orderID, err := h.paymentService.Confirm(ctx, middleware.BuyerID(c), paymentID, req.Method)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ConfirmPaymentResponse{OrderID: orderID})
}

func (h *CheckoutHandler) GetPayment(c echo.Context) error {
	ctx := c.Request().Context()

	payment, err := h.paymentService.Get(ctx, middleware.BuyerID(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, payment)
}
