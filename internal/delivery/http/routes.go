package http

import (
	"github.com/gin-gonic/gin"
	"github.com/restockly/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// Webhooks called by the marketing platform flows
	webhooks := router.Group("/webhook")
	webhooks.Use(WebhookAuthMiddleware(cfg.Webhook.Secret))
	{
		webhooks.POST("/enrich", handler.EnrichProfile)
		webhooks.POST("/cleanup", handler.CleanupProfile)
	}

	return router
}
