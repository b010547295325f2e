package handlers

import (
	"net/http"

	"github.com/catatanku/backend/internal/models"
	"github.com/catatanku/backend/internal/repositories"
	"github.com/catatanku/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// StoryHandler handles story-related HTTP requests
type StoryHandler struct {
	stories        *services.Stories
	userRepository repositories.UserRepository
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(stories *services.Stories, userRepo repositories.UserRepository) *StoryHandler {
	return &StoryHandler{stories: stories, userRepository: userRepo}
}

// RegisterStoryRoutes registers story-related routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.GET("/stories", h.GetStories)
	g.GET("/stories/:id", h.GetStory)
	g.POST("/stories", h.CreateStory)
	g.DELETE("/stories/:id", h.DeleteStory)
	g.POST("/stories/:id/seen", h.MarkAsSeen)
}

// GetStories returns the active story trays, the viewer's own tray split out
// from everyone else's.
func (h *StoryHandler) GetStories(c echo.Context) error {
	uid := currentUID(c)

	trays, err := h.stories.Trays(c.Request().Context(), uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var ownTray *services.Tray
	otherTrays := make([]services.Tray, 0, len(trays))
	for i := range trays {
		if trays[i].Author.ID == uid {
			ownTray = &trays[i]
			continue
		}
		otherTrays = append(otherTrays, trays[i])
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"trays":            otherTrays,
			"currentUserStory": ownTray,
		},
	})
}

// GetStory returns a single story. A viewer holding a story open that the
// author deleted gets the not-found and closes the session.
func (h *StoryHandler) GetStory(c echo.Context) error {
	story, err := h.stories.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Story not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"story": story}})
}

// CreateStory uploads the media file and creates the story. The request is a
// multipart form: a "media" file plus mediaType and, for videos, duration.
func (h *StoryHandler) CreateStory(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.CreateStoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.MediaType == models.MediaVideo && req.Duration < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "Video duration is required")
	}

	fileHeader, err := c.FormFile("media")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Media file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer file.Close()

	author, err := h.userRepository.GetUserByID(ctx, currentUID(c))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	story, err := h.stories.Create(ctx, author, req.MediaType, req.Duration,
		fileHeader.Filename, file, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"story": story}})
}

// DeleteStory deletes the caller's own story and its media
func (h *StoryHandler) DeleteStory(c echo.Context) error {
	err := h.stories.Delete(c.Request().Context(), currentUID(c), c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Story not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAsSeen records that the caller watched the story
func (h *StoryHandler) MarkAsSeen(c echo.Context) error {
	if err := h.stories.MarkSeen(currentUID(c), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}
