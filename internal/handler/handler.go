// Package handler exposes the fridge-sharing services over HTTP. Each
// handler binds a small request DTO, calls one service operation under a
// request-scoped timeout and maps service error kinds onto status codes.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/service"
)

const requestTimeout = 5 * time.Second

// requestContext bounds the work a single request may do in the stores.
func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// statusFor maps a service error kind to an HTTP status.
func statusFor(k service.Kind) int {
	switch k {
	case service.KindValidation, service.KindConflict:
		return http.StatusBadRequest
	case service.KindUnauthenticated:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindExpired:
		return http.StatusGone
	}
	return http.StatusInternalServerError
}

// fail writes err as {"error": message}. Server-side failures are logged
// and never expose their cause.
func fail(c echo.Context, log *zap.Logger, err error) error {
	kind := service.KindOf(err)
	status := statusFor(kind)
	msg := "internal error"
	var se *service.Error
	if errors.As(err, &se) && status < http.StatusInternalServerError {
		msg = se.Message
	}
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.String("kind", kind.String()),
			zap.Error(err))
	}
	return c.JSON(status, echo.Map{"error": msg})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// userID returns the subject the JWT middleware stored on the context.
func userID(c echo.Context) string {
	s, _ := c.Get("user_id").(string)
	return s
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
