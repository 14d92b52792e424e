// Package handler binds HTTP requests to the service layer. Handlers
// stay thin: decode and shape-check the payload, call one service
// operation, translate coded errors into status codes. Business rules
// live in internal/service.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinematrix/cinematrix/internal/apperr"
)

// userID extracts the opaque user id the identity middleware stored in
// the request context.
func userID(c echo.Context) (string, error) {
	if v, ok := c.Get("user_id").(string); ok && v != "" {
		return v, nil
	}
	return "", errors.New("missing user_id in context")
}

// respondError translates service errors into HTTP responses. Coded
// business errors carry their code and message verbatim; anything else
// is a storage fault answered with a bare 500.
func respondError(c echo.Context, err error) error {
	if e, ok := apperr.As(err); ok {
		status := http.StatusBadRequest
		if e.Kind == apperr.KindNotFound {
			status = http.StatusNotFound
		}
		return c.JSON(status, echo.Map{"error_code": e.Code, "message": e.Error()})
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
