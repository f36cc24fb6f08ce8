package http

import (
	"github.com/gin-gonic/gin"
	"github.com/nichefood/backend/config"
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
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	if cfg.RateLimit.PerIP > 0 {
		v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	}
	{
		products := v1.Group("/products")
		{
			products.POST("/check", handler.CheckProduct)
			products.GET("/:barcode/assessment", handler.AssessBarcode)
		}

		assessments := v1.Group("/assessments")
		{
			assessments.POST("", handler.AssessProduct)
			assessments.POST("/batch", handler.AssessBatch)
		}
	}

	return router
}
