package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nulzo/task-router-api/internal/core/services"
	"github.com/nulzo/task-router-api/internal/store/cache"
	"github.com/nulzo/task-router-api/pkg/api"
)

const providerListCacheKey = "providers:list"

type ProviderHandler struct {
	service *services.Service
	cache   cache.CacheService
}

func NewProviderHandler(service *services.Service, cacheService cache.CacheService) *ProviderHandler {
	return &ProviderHandler{service: service, cache: cacheService}
}

// List returns every registered provider with its live performance
// snapshot. Cached briefly since registry churn is rare but the
// endpoint is polled by dashboards.
//
// GET /v1/providers
func (h *ProviderHandler) List(c *gin.Context) {
	var views []api.ProviderView
	if err := h.cache.Get(c.Request.Context(), providerListCacheKey, &views); err == nil {
		c.JSON(http.StatusOK, gin.H{"object": "list", "data": views})
		return
	}

	providers := h.service.ListProviders()
	views = make([]api.ProviderView, 0, len(providers))
	for _, p := range providers {
		views = append(views, api.NewProviderView(p))
	}

	_ = h.cache.Set(c.Request.Context(), providerListCacheKey, views, 10*time.Second)

	c.JSON(http.StatusOK, gin.H{"object": "list", "data": views})
}
