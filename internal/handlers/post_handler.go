package handlers

import (
	"net/http"

	"github.com/catatanku/backend/internal/models"
	"github.com/catatanku/backend/internal/repositories"
	"github.com/catatanku/backend/internal/session"
	"github.com/catatanku/backend/internal/tags"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	suggester      tags.Suggester
	indicators     *session.Registry
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	suggester tags.Suggester,
	indicators *session.Registry,
) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		suggester:      suggester,
		indicators:     indicators,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/tag-suggestions", h.SuggestTags)
}

// CreatePost creates a new post and flips the new-posts indicator for every
// follower of the author.
func (h *PostHandler) CreatePost(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	author, err := h.userRepository.GetUserByID(ctx, currentUID(c))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	post := &models.Post{
		AuthorID: author.ID,
		Author:   author.Snapshot(),
		Content:  req.Content,
		Tags:     req.Tags,
	}
	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.userRepository.AdjustPostCount(ctx, author.ID, 1); err != nil {
		logrus.WithError(err).WithField("author", author.ID).Error("Failed to bump post count")
	}
	for _, followerID := range author.Followers {
		h.indicators.For(followerID).SetNewPosts(true)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"post": post}})
}

// GetPost returns a single post with the viewer's engagement flags, behind
// the author's privacy gate.
func (h *PostHandler) GetPost(c echo.Context) error {
	ctx := c.Request().Context()
	uid := currentUID(c)

	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	author, err := h.userRepository.GetUserByID(ctx, post.AuthorID)
	if err == nil && !canView(author, uid) {
		return echo.NewHTTPError(http.StatusForbidden, "This account is private")
	}

	viewer, err := h.userRepository.GetUserByID(ctx, uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{"post": EnrichedPost{
			Post:    *post,
			IsLiked: post.IsLikedBy(uid),
			IsSaved: viewer.HasSaved(post.ID.Hex()),
		}},
	})
}

// DeletePost deletes the caller's own post and moves the counter back
func (h *PostHandler) DeletePost(c echo.Context) error {
	ctx := c.Request().Context()
	uid := currentUID(c)

	if err := h.postRepository.DeletePost(ctx, c.Param("id"), uid); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userRepository.AdjustPostCount(ctx, uid, -1); err != nil {
		logrus.WithError(err).WithField("author", uid).Error("Failed to lower post count")
	}

	return c.NoContent(http.StatusNoContent)
}

// SuggestTags proposes tags for a draft post's content
func (h *PostHandler) SuggestTags(c echo.Context) error {
	var req models.SuggestTagsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	suggested, err := h.suggester.Suggest(c.Request().Context(), req.Content)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"tags": suggested}})
}
