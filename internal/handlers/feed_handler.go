package handlers

import (
	"net/http"

	"github.com/catatanku/backend/internal/models"
	"github.com/catatanku/backend/internal/repositories"
	"github.com/catatanku/backend/internal/session"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	indicators     *session.Registry
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, indicators *session.Registry) *FeedHandler {
	return &FeedHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		indicators:     indicators,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// EnrichedPost is a post with viewer-specific engagement flags
type EnrichedPost struct {
	models.Post
	IsLiked bool `json:"isLiked"`
	IsSaved bool `json:"isSaved"`
}

// GetFeed returns posts from followed accounts plus the viewer's own, newest
// first. Visiting the feed clears the new-posts indicator.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	ctx := c.Request().Context()
	uid := currentUID(c)
	page, limit := pagination(c)

	viewer, err := h.userRepository.GetUserByID(ctx, uid)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	authorIDs := append(append([]string{}, viewer.Following...), uid)
	skip := int64((page - 1) * limit)
	posts, err := h.postRepository.GetPostsByAuthors(ctx, authorIDs, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	enriched := make([]EnrichedPost, len(posts))
	for i, p := range posts {
		enriched[i] = EnrichedPost{
			Post:    p,
			IsLiked: p.IsLikedBy(uid),
			IsSaved: viewer.HasSaved(p.ID.Hex()),
		}
	}

	h.indicators.For(uid).SetNewPosts(false)

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": enriched},
		"meta": echo.Map{
			"currentPage":  page,
			"itemsPerPage": limit,
			"hasNextPage":  len(posts) == limit,
		},
	})
}
