package handlers

import (
	"net/http"

	"github.com/catatanku/backend/internal/session"
	"github.com/labstack/echo/v4"
)

// SessionHandler exposes the caller's navigation indicator flags
type SessionHandler struct {
	indicators *session.Registry
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(indicators *session.Registry) *SessionHandler {
	return &SessionHandler{indicators: indicators}
}

// RegisterSessionRoutes registers session routes
func (h *SessionHandler) RegisterSessionRoutes(g *echo.Group) {
	g.GET("/session/indicators", h.GetIndicators)
}

// GetIndicators returns the caller's current indicator flags
func (h *SessionHandler) GetIndicators(c echo.Context) error {
	flags := h.indicators.For(currentUID(c)).Snapshot()
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"indicators": flags}})
}
