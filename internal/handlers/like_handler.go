package handlers

import (
	"net/http"

	"github.com/catatanku/backend/internal/repositories"
	"github.com/catatanku/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles like-related HTTP requests
type LikeHandler struct {
	engagement     *services.Engagement
	postRepository repositories.PostRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(engagement *services.Engagement, postRepo repositories.PostRepository) *LikeHandler {
	return &LikeHandler{engagement: engagement, postRepository: postRepo}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.ToggleLike)
	g.GET("/profile/likes", h.GetLikedPosts)
}

// ToggleLike flips the like and returns the new state with the fresh count
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	ctx := c.Request().Context()
	postID := c.Param("id")

	liked, err := h.engagement.ToggleLike(ctx, currentUID(c), postID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"liked": liked, "likes": post.Likes},
	})
}

// GetLikedPosts returns the posts the authenticated user has liked
func (h *LikeHandler) GetLikedPosts(c echo.Context) error {
	page, limit := pagination(c)
	skip := int64((page - 1) * limit)

	posts, err := h.postRepository.GetPostsLikedBy(c.Request().Context(), currentUID(c), skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": posts},
		"meta": echo.Map{
			"currentPage":  page,
			"itemsPerPage": limit,
			"hasNextPage":  len(posts) == limit,
		},
	})
}
