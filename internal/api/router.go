package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-optimizer/internal/api/handlers"
	"github.com/stitts-dev/fpl-optimizer/internal/api/middleware"
)

// NewRouter builds the gin engine with recovery and request logging
func NewRouter(logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(logger))
	return router
}

// SetupRoutes registers the API and health endpoints. apiMiddleware applies
// to the solver endpoints only, so health checks are never throttled.
func SetupRoutes(router *gin.Engine, optimization *handlers.OptimizationHandler, health *handlers.HealthHandler, apiMiddleware ...gin.HandlerFunc) {
	apiV1 := router.Group("/api/v1", apiMiddleware...)
	{
		apiV1.POST("/squad/optimize", optimization.OptimizeSquad)
		apiV1.POST("/lineup", optimization.SelectLineup)
		apiV1.POST("/captain", optimization.SelectCaptain)
		apiV1.POST("/transfers/suggest", optimization.SuggestTransfers)
	}

	router.GET("/health", health.GetHealth)
}
