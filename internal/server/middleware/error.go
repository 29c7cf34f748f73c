package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nulzo/task-router-api/internal/core/domain"
	"github.com/nulzo/task-router-api/pkg/api"
)

// ErrorHandler turns errors attached by handlers into JSON responses.
// Problems serialize per RFC 9457; api.Error gets the minimal envelope;
// known domain errors map to their canonical status codes.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var problem *api.Problem
		if errors.As(err, &problem) {
			if problem.Log != nil {
				logger.Error("request failed", zap.Error(problem.Log))
			}
			c.JSON(problem.Status, problem)
			c.Abort()
			return
		}

		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			if apiErr.Log != nil {
				logger.Error("request failed", zap.Error(apiErr.Log))
			}
			c.JSON(apiErr.Code, api.ErrorResponse{Message: apiErr.Message})
			c.Abort()
			return
		}

		switch {
		case errors.Is(err, domain.ErrNoProvidersAvailable):
			apiErr := api.UnavailableError(err.Error())
			c.JSON(apiErr.Code, api.ErrorResponse{Message: apiErr.Message})
		case errors.Is(err, domain.ErrAdmissionDenied):
			apiErr := api.RateLimitError(err.Error())
			c.JSON(apiErr.Code, api.ErrorResponse{Message: apiErr.Message})
		case errors.Is(err, domain.ErrProviderNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Message: err.Error()})
		default:
			logger.Error("unhandled error", zap.Error(err))
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "An unexpected error occurred."})
		}
		c.Abort()
	}
}
