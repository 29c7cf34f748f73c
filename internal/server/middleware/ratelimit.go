package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nulzo/task-router-api/pkg/api"
)

// RateLimiter throttles callers per client IP. Limiters are created
// lazily and never evicted; the map is bounded by the set of distinct
// callers.
type RateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
	logger   *zap.Logger
}

func NewRateLimiter(rps float64, burst int, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		logger:   logger,
	}
}

func (rl *RateLimiter) limiterFor(client string) *rate.Limiter {
	rl.mu.RLock()
	limiter, ok := rl.limiters[client]
	rl.mu.RUnlock()
	if ok {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Recheck under the write lock
	if limiter, ok = rl.limiters[client]; ok {
		return limiter
	}

	limiter = rate.NewLimiter(rl.rps, rl.burst)
	rl.limiters[client] = limiter
	return limiter
}

// Middleware returns the gin handler enforcing the limit. Rejections
// carry Retry-After and the standard rate-limit problem body.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.ClientIP()
		if !rl.limiterFor(client).Allow() {
			rl.logger.Warn("Rate limit exceeded",
				zap.String("client", client),
				zap.String("path", c.Request.URL.Path),
			)
			c.Header("Retry-After", "1")
			apiErr := api.RateLimitError("Too many requests, slow down.")
			c.AbortWithStatusJSON(apiErr.Code, api.ErrorResponse{Message: apiErr.Message})
			return
		}

		c.Next()
	}
}
