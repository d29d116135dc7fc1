package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thierry260/vibewise-backend/internal/core"
	"github.com/thierry260/vibewise-backend/internal/middleware"
)

// RouteDeps holds what SetupRoutes wires into the router.
type RouteDeps struct {
	AuthService      core.AuthService
	AuthMiddleware   *middleware.AuthMiddleware
	MagicLinkLimiter *middleware.IPRateLimiter
	// Metrics is served on GET /metrics when set.
	Metrics http.Handler
	Logger  *zap.Logger
}

// SetupRoutes registers the /api/v1 routes, /health and /metrics. Global
// middleware is applied by the caller.
func SetupRoutes(router *gin.Engine, deps RouteDeps) {
	authHandler := NewAuthHandler(deps.AuthService, deps.Logger)
	userHandler := NewUserHandler(deps.AuthService, deps.Logger)
	verify := deps.AuthMiddleware.VerifyToken()

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.GET("/google", authHandler.BeginGoogleSignIn)
			authGroup.GET("/google/callback", authHandler.GoogleCallback)
			authGroup.POST("/email/signin", authHandler.SignInWithEmail)

			sendLink := []gin.HandlerFunc{middleware.DeviceID(true)}
			if deps.MagicLinkLimiter != nil {
				sendLink = append([]gin.HandlerFunc{deps.MagicLinkLimiter.Handler()}, sendLink...)
			}
			authGroup.POST("/email/link", append(sendLink, authHandler.SendMagicLink)...)
			authGroup.POST("/email/link/complete", middleware.DeviceID(false), authHandler.CompleteMagicLink)

			authGroup.POST("/signout", verify, authHandler.SignOut)
		}

		userGroup := apiV1.Group("/users", verify)
		{
			userGroup.POST("/initialize", userHandler.InitializeUserProfile)
			userGroup.GET("/me", userHandler.GetCurrentUserProfile)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	deps.Logger.Info("API routes configured under /api/v1")
}
