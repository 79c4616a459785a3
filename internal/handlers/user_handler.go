package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pipcrest/tradejournal/backend/internal/models"
	"github.com/pipcrest/tradejournal/backend/internal/repositories"
	"github.com/pipcrest/tradejournal/backend/internal/social"
	"gorm.io/gorm"
)

// UserHandler handles HTTP requests related to trader profiles
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(repo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: repo}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.POST("/users", h.CreateProfile)
	g.GET("/users/me", h.GetMe)
	g.PATCH("/users/me", h.UpdateMe)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUserByID)
}

// CreateProfile creates the trader profile after the client has signed
// in with Firebase. The Firebase UID in the body must match the token.
func (h *UserHandler) CreateProfile(c echo.Context) error {
	self, err := social.CurrentUserID(c.Request().Context())
	if err != nil {
		return domainHTTPError(err)
	}

	var req models.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.FirebaseUID != self {
		return echo.NewHTTPError(http.StatusForbidden, "Firebase UID does not match the authenticated user")
	}

	user := &models.User{
		Name:        req.Name,
		Email:       req.Email,
		Bio:         req.Bio,
		FirebaseUID: req.FirebaseUID,
	}
	if err := h.userRepository.CreateUser(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusConflict, "A profile already exists for this account")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create profile")
	}
	return c.JSON(http.StatusCreated, user)
}

// GetMe retrieves the authenticated user's profile
func (h *UserHandler) GetMe(c echo.Context) error {
	self, err := social.CurrentUserID(c.Request().Context())
	if err != nil {
		return domainHTTPError(err)
	}

	user, err := h.userRepository.GetUserByFirebaseUID(self)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Profile not found, complete registration first")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve profile")
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe updates the authenticated user's profile
func (h *UserHandler) UpdateMe(c echo.Context) error {
	self, err := social.CurrentUserID(c.Request().Context())
	if err != nil {
		return domainHTTPError(err)
	}

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userRepository.GetUserByFirebaseUID(self)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Profile not found, complete registration first")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve profile")
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile")
	}
	return c.JSON(http.StatusOK, user)
}

// SearchUsers searches trader profiles by name or email substring
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query is required")
	}

	users, err := h.userRepository.SearchUsers(query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to search users")
	}
	return c.JSON(http.StatusOK, users)
}

// GetUserByID retrieves a trader profile by its numeric ID
func (h *UserHandler) GetUserByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.userRepository.GetUserByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve user")
	}
	return c.JSON(http.StatusOK, user)
}
