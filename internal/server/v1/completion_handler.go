package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nulzo/task-router-api/internal/core/services"
	"github.com/nulzo/task-router-api/internal/server/validator"
	"github.com/nulzo/task-router-api/pkg/api"
)

type CompletionHandler struct {
	service *services.Service
}

func NewCompletionHandler(service *services.Service) *CompletionHandler {
	return &CompletionHandler{service: service}
}

// Create routes and executes in one call. A terminal failure still
// returns 200 with success=false; only a request no provider can serve
// surfaces as an error.
//
// POST /v1/completions
func (h *CompletionHandler) Create(c *gin.Context) {
	var req api.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseError(err)))
		return
	}

	resp, err := h.service.RouteAndExecute(c.Request.Context(), req.ToDomain())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, api.CompletionResponse{Response: resp})
}
