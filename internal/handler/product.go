package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-demo/internal/repository"
)

type ProductHandler struct {
	productRepo repository.ProductRepository
}

func NewProductHandler(productRepo repository.ProductRepository) *ProductHandler {
	return &ProductHandler{
		productRepo: productRepo,
	}
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.productRepo.List(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}
