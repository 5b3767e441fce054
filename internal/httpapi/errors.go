package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/guilhermegouw/socchat/internal/chat"
	"github.com/guilhermegouw/socchat/internal/debug"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a chat error kind to an HTTP status.
func statusFor(err error) int {
	switch chat.KindOf(err) {
	case chat.KindValidation:
		return http.StatusBadRequest
	case chat.KindNotFound:
		return http.StatusNotFound
	case chat.KindGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error body. Validation and not-found errors are
// reported with their cause; everything else is logged and reported by kind.
func fail(c echo.Context, err error) error {
	status := statusFor(err)

	msg := err.Error()
	var ce *chat.Error
	if errors.As(err, &ce) {
		msg = ce.Err.Error()
	}
	if status >= http.StatusInternalServerError {
		debug.Error("httpapi", err, c.Request().Method+" "+c.Path())
	}

	return c.JSON(status, errorResponse{Error: msg})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}
