package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-demo/internal/dto"
	"storefront-demo/internal/errs"
	"storefront-demo/internal/middleware"
	"storefront-demo/internal/service"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	if middleware.IsAdmin(c) {
		orders, err := h.orderService.ListAllOrders(ctx)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, orders)
	}

	orders, err := h.orderService.ListOrders(ctx, middleware.BuyerID(c))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	orderID := c.Param("id")

	order, err := h.orderService.GetOrder(ctx, orderID)
	if err != nil {
		return httpError(err)
	}

	// buyers only see their own orders
	if !middleware.IsAdmin(c) && order.BuyerID != middleware.BuyerID(c) {
		return httpError(errs.OrderNotFound(orderID))
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	order, err := h.orderService.SetStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) BulkUpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.BulkStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	updated, err := h.orderService.SetStatusBulk(ctx, req.OrderIDs, req.Status)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.BulkStatusResponse{Updated: updated})
}
