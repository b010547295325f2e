package handlers

import (
	"net/http"

	"github.com/catatanku/backend/internal/models"
	"github.com/catatanku/backend/internal/repositories"
	"github.com/catatanku/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler exposes the follow state machine over HTTP
type FollowHandler struct {
	socialGraph    *services.SocialGraph
	userRepository repositories.UserRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(graph *services.SocialGraph, userRepo repositories.UserRepository) *FollowHandler {
	return &FollowHandler{socialGraph: graph, userRepository: userRepo}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.ToggleFollow)
	g.GET("/profile/follow-requests", h.GetFollowRequests)
	g.POST("/profile/follow-requests/:requesterId/approve", h.ApproveFollowRequest)
	g.POST("/profile/follow-requests/:requesterId/decline", h.DeclineFollowRequest)
}

// ToggleFollow advances the follow relationship one step and returns the
// resulting button presentation.
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	state, err := h.socialGraph.ToggleFollow(c.Request().Context(), currentUID(c), c.Param("id"))
	switch err {
	case nil:
	case services.ErrSelfFollow:
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	case repositories.ErrNotFound:
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"relationship": services.Button(state)}})
}

// GetFollowRequests lists pending follow requests on the own account
func (h *FollowHandler) GetFollowRequests(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, currentUID(c))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	requesters, err := h.userRepository.GetUsersByIDs(ctx, user.FollowRequests)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	snapshots := make([]models.Author, len(requesters))
	for i := range requesters {
		snapshots[i] = requesters[i].Snapshot()
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"requests": snapshots}})
}

// ApproveFollowRequest grants a pending follow request
func (h *FollowHandler) ApproveFollowRequest(c echo.Context) error {
	err := h.socialGraph.ApproveFollowRequest(c.Request().Context(), currentUID(c), c.Param("requesterId"))
	return h.requestResolution(c, err)
}

// DeclineFollowRequest rejects a pending follow request
func (h *FollowHandler) DeclineFollowRequest(c echo.Context) error {
	err := h.socialGraph.DeclineFollowRequest(c.Request().Context(), currentUID(c), c.Param("requesterId"))
	return h.requestResolution(c, err)
}

func (h *FollowHandler) requestResolution(c echo.Context, err error) error {
	switch err {
	case nil:
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
	case services.ErrNoPendingRequest:
		return echo.NewHTTPError(http.StatusNotFound, "No pending follow request from this user")
	case repositories.ErrNotFound:
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
