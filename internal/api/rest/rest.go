package rest

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures the status routes
func SetupRoutes(router *gin.Engine, handler Handler) {
	// Health check endpoint (no version prefix)
	router.GET("/healthz", handler.HealthCheck)

	v1 := router.Group("/v1")
	{
		v1.GET("/chains/:chain/cursor", handler.GetReconciledCursor)
	}
}
