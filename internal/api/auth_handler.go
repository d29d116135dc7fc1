package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thierry260/vibewise-backend/internal/core"
	"github.com/thierry260/vibewise-backend/internal/middleware"
	"github.com/thierry260/vibewise-backend/internal/models"
)

// AuthHandler exposes the sign-in operations. Auth outcomes are reported in the
// AuthResult body with status 200; only malformed or unauthenticated requests get
// an error status.
type AuthHandler struct {
	authService core.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as core.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: as, logger: logger}
}

// BeginGoogleSignIn handles GET /api/v1/auth/google.
// It redirects to the Google consent page, or returns its URL with ?mode=json.
func (h *AuthHandler) BeginGoogleSignIn(c *gin.Context) {
	url, err := h.authService.BeginGoogleSignIn(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to start Google sign-in", Details: err.Error()})
		return
	}
	if c.Query("mode") == "json" {
		c.JSON(http.StatusOK, models.GoogleAuthURLResponse{URL: url})
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback handles GET /api/v1/auth/google/callback.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if reason := c.Query("error"); reason != "" {
		c.JSON(http.StatusOK, h.authService.CancelGoogleSignIn(c.Request.Context(), c.Query("state"), reason))
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Missing authorization code"})
		return
	}
	c.JSON(http.StatusOK, h.authService.SignInWithGoogle(c.Request.Context(), c.Query("state"), code))
}

// SignInWithEmail handles POST /api/v1/auth/email/signin.
func (h *AuthHandler) SignInWithEmail(c *gin.Context) {
	var req models.EmailSignInRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.authService.SignInWithEmail(c.Request.Context(), req.Email, req.Password))
}

// SendMagicLink handles POST /api/v1/auth/email/link.
func (h *AuthHandler) SendMagicLink(c *gin.Context) {
	var req models.MagicLinkRequest
	if !bindJSON(c, &req) {
		return
	}
	deviceID := c.GetString(middleware.ContextDeviceID)
	result := h.authService.SendMagicLink(c.Request.Context(), deviceID, req.Email, req.RedirectURL)
	c.JSON(http.StatusOK, models.MagicLinkResponse{AuthResult: result, DeviceID: deviceID})
}

// CompleteMagicLink handles POST /api/v1/auth/email/link/complete.
func (h *AuthHandler) CompleteMagicLink(c *gin.Context) {
	var req models.CompleteMagicLinkRequest
	if !bindJSON(c, &req) {
		return
	}
	deviceID := c.GetString(middleware.ContextDeviceID)
	c.JSON(http.StatusOK, h.authService.CompleteMagicLink(c.Request.Context(), deviceID, req.Email, req.Link))
}

// SignOut handles POST /api/v1/auth/signout.
func (h *AuthHandler) SignOut(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}
	c.JSON(http.StatusOK, h.authService.SignOutUser(c.Request.Context(), user.UID))
}
