package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/fpl-optimizer/internal/cache"
	"github.com/stitts-dev/fpl-optimizer/pkg/database"
)

const serviceName = "fpl-optimizer"

// HealthStatus is the body of the health and readiness endpoints
type HealthStatus struct {
	Status        string            `json:"status"`
	Service       string            `json:"service"`
	Timestamp     time.Time         `json:"timestamp"`
	Checks        map[string]string `json:"checks"`
	CachedResults int               `json:"cached_results,omitempty"`
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db     *database.DB
	cache  *cache.OptimizationCache
	logger *logrus.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB, cache *cache.OptimizationCache, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// GetHealth reports database and cache status. The database is required;
// the cache is optional, so losing it only degrades the service.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := HealthStatus{
		Status:    "ok",
		Service:   serviceName,
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if h.db == nil {
		response.Status = "unhealthy"
		response.Checks["database"] = "not_configured"
	} else if err := h.db.HealthCheck(c.Request.Context()); err != nil {
		response.Status = "unhealthy"
		response.Checks["database"] = "failed: " + err.Error()
	} else {
		response.Checks["database"] = "ok"
	}

	if !h.cache.Enabled() {
		response.Checks["redis"] = "disabled"
	} else if err := h.cache.Ping(c.Request.Context()); err != nil {
		if response.Status == "ok" {
			response.Status = "degraded"
		}
		response.Checks["redis"] = "failed: " + err.Error()
	} else {
		response.Checks["redis"] = "ok"
		response.Checks["redis_breaker"] = h.cache.BreakerState()
		if count, err := h.cache.Count(c.Request.Context()); err == nil {
			response.CachedResults = count
		}
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		h.logger.WithField("checks", response.Checks).Warn("Health check failed")
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}
