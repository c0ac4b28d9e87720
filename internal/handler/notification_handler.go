package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nthoangDev/event-management/internal/repository"
)

// NotificationHandler reads the inbox the ticket.booked consumer writes.
type NotificationHandler struct {
	repo repository.NotificationRepository
}

func NewNotificationHandler(repo repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

func (h *NotificationHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/notifications", h.ListNotifications)
}

func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	notifications, err := h.repo.FindByUser(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, notifications)
}
