package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pipcrest/tradejournal/backend/internal/repositories"
	"github.com/pipcrest/tradejournal/backend/internal/social"
)

// NotificationHandler handles HTTP requests related to notifications
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(repo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepository: repo}
}

// RegisterNotificationRoutes registers notification-related routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PATCH("/notifications/:id/read", h.MarkAsRead)
	g.PATCH("/notifications/read-all", h.MarkAllAsRead)
}

// GetNotifications retrieves the authenticated user's notifications with pagination
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	self, err := social.CurrentUserID(c.Request().Context())
	if err != nil {
		return domainHTTPError(err)
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	notifications, total, err := h.notificationRepository.GetByRecipientID(self, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve notifications")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"total":         total,
		"page":          page,
		"limit":         limit,
	})
}

// GetUnreadCount returns how many unread notifications the user has
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	self, err := social.CurrentUserID(c.Request().Context())
	if err != nil {
		return domainHTTPError(err)
	}

	count, err := h.notificationRepository.GetUnreadCount(self)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count notifications")
	}
	return c.JSON(http.StatusOK, map[string]int64{"unread_count": count})
}

// MarkAsRead marks a single notification of the authenticated user as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	self, err := social.CurrentUserID(c.Request().Context())
	if err != nil {
		return domainHTTPError(err)
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	rows, err := h.notificationRepository.MarkAsRead(self, uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update notification")
	}
	if rows == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// MarkAllAsRead marks all of the user's notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	self, err := social.CurrentUserID(c.Request().Context())
	if err != nil {
		return domainHTTPError(err)
	}

	if err := h.notificationRepository.MarkAllAsRead(self); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update notifications")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}
