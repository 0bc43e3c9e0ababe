package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"
)

func (h *Handler) Notifications(c echo.Context) error {
	notifications, err := h.notifications.Refresh(c.Request().Context())
	if err != nil {
		// Locally synthesized notifications still render while offline.
		return c.JSON(http.StatusOK, map[string]any{
			"notifications": notifications,
			"unread_count":  h.notifications.UnreadCount(),
			"stale":         true,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"notifications": notifications,
		"unread_count":  h.notifications.UnreadCount(),
	})
}

func (h *Handler) NotificationCount(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"unread_count": h.notifications.UnreadCount()})
}

func (h *Handler) MarkRead(c echo.Context) error {
	if err := h.notifications.MarkRead(c.Request().Context(), c.PathParam("id")); err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"unread_count": h.notifications.UnreadCount()})
}

func (h *Handler) MarkAllRead(c echo.Context) error {
	if err := h.notifications.MarkAllRead(c.Request().Context()); err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"unread_count": h.notifications.UnreadCount()})
}
