package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const defaultBuyerID = "demo-buyer-001"

// sample auth middleware standing in for the real identity provider: buyer
// and role come from headers, defaulted for demo use. The engine trusts
// whatever identity lands in the request context.
func AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			buyerID := c.Request().Header.Get("X-Buyer-Id")
			if buyerID == "" {
				buyerID = defaultBuyerID
			}
			c.Set("buyer_id", buyerID)
			c.Set("role", c.Request().Header.Get("X-Role"))
			return next(c)
		}
	}
}

func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if role, _ := c.Get("role").(string); role != "admin" {
				return echo.NewHTTPError(http.StatusForbidden, "admin role required")
			}
			return next(c)
		}
	}
}

// BuyerID extracts the authenticated buyer from the request context.
func BuyerID(c echo.Context) string {
	buyerID, _ := c.Get("buyer_id").(string)
	return buyerID
}

// IsAdmin reports whether the request carries the admin role.
func IsAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "admin"
}
