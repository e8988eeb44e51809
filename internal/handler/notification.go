package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/service"
)

// NotificationHandler serves the caller's notification feed.
type NotificationHandler struct {
	Notifier *service.Notifier
	Admin    *service.Admin
	Log      *zap.Logger
}

func NewNotificationHandler(s *service.Services, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{Notifier: s.Notifications, Admin: s.Admin, Log: log}
}

// List accepts ?read=true|false to filter by read state.
func (h *NotificationHandler) List(c echo.Context) error {
	var read *bool
	if q := c.QueryParam("read"); q != "" {
		b, err := strconv.ParseBool(q)
		if err != nil {
			return badRequest(c, "read must be true or false")
		}
		read = &b
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	notes, err := h.Notifier.ListForUser(ctx, userID(c), read)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, notes)
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	n, err := h.Notifier.UnreadCount(ctx, userID(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": n})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	note, err := h.Notifier.MarkRead(ctx, userID(c), c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, note)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	n, err := h.Notifier.MarkAllRead(ctx, userID(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}

func (h *NotificationHandler) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Notifier.Delete(ctx, userID(c), c.Param("id")); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CheckExpiring runs the daily expiring-item check on demand. Items
// already reported today are skipped.
func (h *NotificationHandler) CheckExpiring(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	n, err := h.Admin.CheckExpiring(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"notified": n})
}
