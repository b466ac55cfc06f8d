package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-demo/internal/dto"
	"storefront-demo/internal/middleware"
	"storefront-demo/internal/service"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	cart, err := h.cartService.GetCart(ctx, middleware.BuyerID(c))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.cartService.AddItem(ctx, middleware.BuyerID(c), req.ProductID, req.Quantity); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) SetQuantity(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.cartService.SetQuantity(ctx, middleware.BuyerID(c), req.ProductID, req.Quantity); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
