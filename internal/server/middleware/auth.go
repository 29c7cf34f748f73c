package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nulzo/task-router-api/internal/store"
	"github.com/nulzo/task-router-api/pkg/api"
)

// Auth guards the v1 routes with Bearer keys. Keys listed in config are
// accepted as-is; anything else is sha256-hashed and matched against the
// api_keys table.
func Auth(repo store.Repository, staticKeys []string) gin.HandlerFunc {
	static := make(map[string]struct{}, len(staticKeys))
	for _, k := range staticKeys {
		static[k] = struct{}{}
	}

	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			apiErr := api.UnauthorizedError("Missing or malformed Authorization header")
			c.AbortWithStatusJSON(apiErr.Code, api.ErrorResponse{Message: apiErr.Message})
			return
		}

		if _, ok := static[token]; ok {
			c.Next()
			return
		}

		sum := sha256.Sum256([]byte(token))
		key, err := repo.APIKeys().GetByHash(c.Request.Context(), hex.EncodeToString(sum[:]))
		if err != nil {
			apiErr := api.UnauthorizedError("Invalid API key")
			c.AbortWithStatusJSON(apiErr.Code, api.ErrorResponse{Message: apiErr.Message})
			return
		}

		// Expose the key to handlers for attribution
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), store.ContextKeyAPIKey, key),
		)

		// Stamp last_used_at off the request path
		go func() {
			_ = repo.APIKeys().Touch(context.Background(), key.ID)
		}()

		c.Next()
	}
}
