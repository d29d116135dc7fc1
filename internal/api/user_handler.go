package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thierry260/vibewise-backend/internal/core"
	"github.com/thierry260/vibewise-backend/internal/middleware"
	"github.com/thierry260/vibewise-backend/internal/models"
)

// UserHandler handles user-profile related API endpoints.
type UserHandler struct {
	authService core.AuthService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(as core.AuthService, logger *zap.Logger) *UserHandler {
	return &UserHandler{authService: as, logger: logger}
}

// InitializeUserProfile handles POST /api/v1/users/initialize. Clients call it
// after a sign-in that does not seed, such as email and password.
func (h *UserHandler) InitializeUserProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}

	profile, created, err := h.authService.InitializeUser(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to initialize user profile", Details: err.Error()})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, models.InitializeUserResponse{Created: created, Profile: profile})
}

// GetCurrentUserProfile handles GET /api/v1/users/me.
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}

	profile, err := h.authService.CurrentProfile(c.Request.Context(), user.UID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User profile not found"})
			return
		}
		h.logger.Error("Failed to load user profile", zap.String("uid", user.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to retrieve user profile", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}
