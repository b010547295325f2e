package handlers

import (
	"net/http"

	"github.com/catatanku/backend/internal/models"
	"github.com/catatanku/backend/internal/repositories"
	"github.com/catatanku/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	postRepository repositories.PostRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo, postRepository: postRepo}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/users/:id", h.GetUser)
	g.GET("/users/:id/posts", h.GetUserPosts)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
}

// ProfileResponse is another user's profile as seen by the viewer. Counters
// are always visible; content access depends on the privacy gate.
type ProfileResponse struct {
	User           *models.User         `json:"user"`
	Relationship   services.ButtonState `json:"relationship"`
	CanViewContent bool                 `json:"canViewContent"`
}

// canView applies the privacy gate: the owner, followers, and everyone on a
// public account may see content.
func canView(target *models.User, viewerID string) bool {
	return target.ID == viewerID || !target.IsPrivate || target.IsFollowedBy(viewerID)
}

// GetProfile retrieves the authenticated user's own profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), currentUID(c))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"user": user}})
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(ctx, currentUID(c))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.Handle != "" && req.Handle != user.Handle {
		if _, err := h.userRepository.GetUserByHandle(ctx, req.Handle); err == nil {
			return echo.NewHTTPError(http.StatusConflict, "Handle is already taken")
		} else if err != repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		user.Handle = req.Handle
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.IsPrivate != nil {
		user.IsPrivate = *req.IsPrivate
	}

	if err := h.userRepository.UpdateProfile(ctx, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"user": user}})
}

// GetUser retrieves another user's profile with the viewer's relationship
// state and content gate. The own account is served by /profile.
func (h *UserHandler) GetUser(c echo.Context) error {
	uid := currentUID(c)
	if c.Param("id") == uid {
		return echo.NewHTTPError(http.StatusBadRequest, "Use /profile for your own account")
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := ProfileResponse{
		User:           user,
		Relationship:   services.Button(services.Relationship(user, uid)),
		CanViewContent: canView(user, uid),
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"profile": resp}})
}

// GetUserPosts returns a user's posts, newest first, behind the privacy gate
func (h *UserHandler) GetUserPosts(c echo.Context) error {
	ctx := c.Request().Context()
	uid := currentUID(c)
	page, limit := pagination(c)

	user, err := h.userRepository.GetUserByID(ctx, c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !canView(user, uid) {
		return echo.NewHTTPError(http.StatusForbidden, "This account is private")
	}

	skip := int64((page - 1) * limit)
	posts, err := h.postRepository.GetPostsByAuthor(ctx, user.ID, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": posts},
		"meta":    paginationMeta(page, limit, user.Stats.Posts),
	})
}

// GetFollowers returns the user's followers as author snapshots
func (h *UserHandler) GetFollowers(c echo.Context) error {
	return h.relationList(c, func(u *models.User) []string { return u.Followers }, "followers")
}

// GetFollowing returns who the user follows as author snapshots
func (h *UserHandler) GetFollowing(c echo.Context) error {
	return h.relationList(c, func(u *models.User) []string { return u.Following }, "following")
}

func (h *UserHandler) relationList(c echo.Context, pick func(*models.User) []string, key string) error {
	ctx := c.Request().Context()
	uid := currentUID(c)

	user, err := h.userRepository.GetUserByID(ctx, c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !canView(user, uid) {
		return echo.NewHTTPError(http.StatusForbidden, "This account is private")
	}

	users, err := h.userRepository.GetUsersByIDs(ctx, pick(user))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	snapshots := make([]models.Author, len(users))
	for i := range users {
		snapshots[i] = users[i].Snapshot()
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{key: snapshots}})
}

// SearchUsers searches for users by name or handle
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query 'q' is required")
	}

	users, err := h.userRepository.SearchUsers(c.Request().Context(), query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	snapshots := make([]models.Author, len(users))
	for i := range users {
		snapshots[i] = users[i].Snapshot()
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"users": snapshots}})
}
