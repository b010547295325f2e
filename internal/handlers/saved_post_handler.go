package handlers

import (
	"net/http"

	"github.com/catatanku/backend/internal/repositories"
	"github.com/catatanku/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// SavedPostHandler handles save/bookmark HTTP requests
type SavedPostHandler struct {
	engagement *services.Engagement
}

// NewSavedPostHandler creates a new SavedPostHandler
func NewSavedPostHandler(engagement *services.Engagement) *SavedPostHandler {
	return &SavedPostHandler{engagement: engagement}
}

// RegisterSavedPostRoutes registers save-related routes
func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group) {
	g.POST("/posts/:id/save", h.ToggleSave)
	g.GET("/profile/saved", h.GetSavedPosts)
}

// ToggleSave flips the post's membership in the caller's saved set
func (h *SavedPostHandler) ToggleSave(c echo.Context) error {
	saved, err := h.engagement.ToggleSave(c.Request().Context(), currentUID(c), c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"saved": saved}})
}

// GetSavedPosts returns the caller's saved posts
func (h *SavedPostHandler) GetSavedPosts(c echo.Context) error {
	posts, err := h.engagement.SavedPosts(c.Request().Context(), currentUID(c))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"posts": posts}})
}
