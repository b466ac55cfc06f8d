package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-demo/internal/errs"
)

var kindStatus = map[errs.Kind]int{
	errs.KindValidation: http.StatusBadRequest,
	errs.KindConflict:   http.StatusConflict,
	errs.KindNotFound:   http.StatusNotFound,
	errs.KindExpired:    http.StatusGone,
	errs.KindTransient:  http.StatusServiceUnavailable,
}

// httpError maps the engine's error taxonomy onto HTTP statuses and exposes
// the machine code so clients branch on it instead of parsing messages.
func httpError(err error) error {
	kind, ok := errs.KindOf(err)
	if !ok {
		return err
	}

	return echo.NewHTTPError(kindStatus[kind], map[string]string{
		"error":   errs.CodeOf(err),
		"kind":    string(kind),
		"message": err.Error(),
	})
}
