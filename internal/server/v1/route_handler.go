package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nulzo/task-router-api/internal/core/services"
	"github.com/nulzo/task-router-api/internal/server/validator"
	"github.com/nulzo/task-router-api/pkg/api"
)

type RouteHandler struct {
	service *services.Service
}

func NewRouteHandler(service *services.Service) *RouteHandler {
	return &RouteHandler{service: service}
}

// Route scores the registry against the request and returns the winning
// decision without invoking any provider.
//
// POST /v1/route
func (h *RouteHandler) Route(c *gin.Context) {
	var req api.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseError(err)))
		return
	}

	decision, err := h.service.Route(c.Request.Context(), req.ToDomain())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, api.DecisionResponse{Decision: decision})
}

// Execute runs a previously routed request against its decision. The
// decision may have been edited by the caller; the executor re-admits
// each attempt regardless.
//
// POST /v1/execute
func (h *RouteHandler) Execute(c *gin.Context) {
	var req api.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseError(err)))
		return
	}

	domainReq := req.Request.ToDomain()
	if domainReq.ID == "" {
		domainReq.ID = req.Decision.RequestID
	}

	resp := h.service.Execute(c.Request.Context(), domainReq, req.Decision)
	c.JSON(http.StatusOK, api.CompletionResponse{Response: resp})
}

// ActiveRequests reports the number of requests currently in flight
// across all providers.
//
// GET /v1/requests/active
func (h *RouteHandler) ActiveRequests(c *gin.Context) {
	c.JSON(http.StatusOK, api.ActiveRequestsResponse{Active: h.service.ActiveRequestCount()})
}
