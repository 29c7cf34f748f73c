package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nulzo/task-router-api/internal/core/domain"
	"github.com/nulzo/task-router-api/internal/core/services"
	"github.com/nulzo/task-router-api/internal/store/cache"
	"github.com/nulzo/task-router-api/pkg/api"
)

const metricsCacheKey = "metrics:all"

type MetricsHandler struct {
	service *services.Service
	cache   cache.CacheService
}

func NewMetricsHandler(service *services.Service, cacheService cache.CacheService) *MetricsHandler {
	return &MetricsHandler{service: service, cache: cacheService}
}

// List returns the rolling metrics for every provider that has served
// at least one request.
//
// GET /v1/metrics
func (h *MetricsHandler) List(c *gin.Context) {
	var all map[string]domain.Metrics
	if err := h.cache.Get(c.Request.Context(), metricsCacheKey, &all); err == nil {
		c.JSON(http.StatusOK, gin.H{"object": "map", "data": all})
		return
	}

	all = h.service.GetAllMetrics()
	_ = h.cache.Set(c.Request.Context(), metricsCacheKey, all, 5*time.Second)

	c.JSON(http.StatusOK, gin.H{"object": "map", "data": all})
}

// Get returns metrics for a single provider.
//
// GET /v1/metrics/:provider
func (h *MetricsHandler) Get(c *gin.Context) {
	providerID := c.Param("provider")

	metrics, ok := h.service.GetMetrics(providerID)
	if !ok {
		_ = c.Error(api.NotFoundError("no metrics recorded for provider " + providerID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"provider": providerID, "metrics": metrics})
}
