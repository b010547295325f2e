package handlers

import (
	"net/http"

	"github.com/catatanku/backend/internal/models"
	"github.com/catatanku/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// AuthHandler completes signup for identities already verified by the auth
// provider. The user's document ID is the provider UID from the middleware.
type AuthHandler struct {
	userRepository repositories.UserRepository
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository) *AuthHandler {
	return &AuthHandler{userRepository: userRepo}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.GET("/check-handle", h.CheckHandle)
}

// Signup creates the user document for the authenticated identity. The
// relationship sets start empty; a fresh user follows no one and is
// followed by no one.
func (h *AuthHandler) Signup(c echo.Context) error {
	uid := currentUID(c)

	var req models.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.userRepository.GetUserByHandle(c.Request().Context(), req.Handle); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Handle is already taken")
	} else if err != repositories.ErrNotFound {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user := &models.User{
		ID:        uid,
		Name:      req.Name,
		Handle:    req.Handle,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
	}

	if err := h.userRepository.CreateUser(c.Request().Context(), user); err != nil {
		if err == repositories.ErrAlreadyExists {
			return echo.NewHTTPError(http.StatusConflict, "User already registered")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"user": user}})
}

// CheckHandle reports whether a handle is still available
func (h *AuthHandler) CheckHandle(c echo.Context) error {
	handle := c.QueryParam("handle")
	if handle == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Query parameter 'handle' is required")
	}

	_, err := h.userRepository.GetUserByHandle(c.Request().Context(), handle)
	switch err {
	case nil:
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"available": false}})
	case repositories.ErrNotFound:
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"available": true}})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
