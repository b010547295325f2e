package handlers

import (
	"net/http"

	"github.com/catatanku/backend/internal/repositories"
	"github.com/catatanku/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	coordinator    *services.NotificationCoordinator
	userRepository repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(coordinator *services.NotificationCoordinator, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{coordinator: coordinator, userRepository: userRepo}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.DELETE("/notifications/:id", h.Dismiss)
	g.POST("/notifications/verification-request", h.RequestVerification)
	g.POST("/notifications/:id/approve-verification", h.ApproveVerification)
}

// GetNotifications returns paginated notifications, newest first. Fetching
// the list marks everything read and clears the unread badge.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	page, limit := pagination(c)

	notifications, total, err := h.coordinator.ListForVisit(c.Request().Context(), currentUID(c), page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"notifications": notifications},
		"meta":    paginationMeta(page, limit, total),
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.coordinator.UnreadCount(c.Request().Context(), currentUID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// Dismiss deletes a notification addressed to the caller
func (h *NotificationHandler) Dismiss(c echo.Context) error {
	err := h.coordinator.Dismiss(c.Request().Context(), currentUID(c), c.Param("id"))
	switch err {
	case nil:
		return c.NoContent(http.StatusNoContent)
	case repositories.ErrNotFound:
		return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
	case services.ErrNotAllowed:
		return echo.NewHTTPError(http.StatusForbidden, "Notification is not addressed to you")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// RequestVerification files an account verification request for the caller
func (h *NotificationHandler) RequestVerification(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := h.userRepository.GetUserByID(ctx, currentUID(c))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.coordinator.RequestVerification(ctx, actor); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}

// ApproveVerification verifies the requesting account and resolves the
// request notification. Reviewer only.
func (h *NotificationHandler) ApproveVerification(c echo.Context) error {
	err := h.coordinator.ApproveVerification(c.Request().Context(), currentUID(c), c.Param("id"))
	switch err {
	case nil:
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
	case repositories.ErrNotFound:
		return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
	case services.ErrNotAllowed:
		return echo.NewHTTPError(http.StatusForbidden, "Only the reviewer account may approve verification")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
