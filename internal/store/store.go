package store

import (
	"context"

	"github.com/nulzo/task-router-api/internal/store/model"
)

type contextKey string

const (
	ContextKeyAPIKey contextKey = "api_key"
)

// Repository is the main contract for the data layer.
type Repository interface {
	APIKeys() APIKeyRepository
	Decisions() DecisionRepository
	Responses() ResponseRepository

	// transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	Close() error
}

type APIKeyRepository interface {
	// GetByHash retrieves a key by its hashed value (for auth).
	GetByHash(ctx context.Context, hash string) (*model.APIKey, error)
	// Create issues a new API key.
	Create(ctx context.Context, key *model.APIKey) error
	// Touch stamps last_used_at.
	Touch(ctx context.Context, id string) error
}

type DecisionRepository interface {
	// Log stores a routing decision.
	Log(ctx context.Context, decision *model.DecisionLog) error
	// GetByRequestID returns every decision recorded for a request.
	GetByRequestID(ctx context.Context, requestID string) ([]model.DecisionLog, error)
}

type ResponseRepository interface {
	// Log stores a completed response.
	Log(ctx context.Context, response *model.ResponseLog) error
	// GetRecent returns the last N responses.
	GetRecent(ctx context.Context, limit int) ([]model.ResponseLog, error)
	// GetDailyStats returns aggregated stats grouped by day.
	GetDailyStats(ctx context.Context, days int) ([]model.DailyStats, error)
}
