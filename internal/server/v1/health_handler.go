package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nulzo/task-router-api/internal/core/services"
)

type HealthHandler struct {
	service *services.Service
}

func NewHealthHandler(service *services.Service) *HealthHandler {
	return &HealthHandler{service: service}
}

// Health is the liveness probe.
//
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"active_requests": h.service.ActiveRequestCount(),
	})
}
