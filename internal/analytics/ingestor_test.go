package analytics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nulzo/task-router-api/internal/core/domain"
	"github.com/nulzo/task-router-api/internal/store"
	"github.com/nulzo/task-router-api/internal/store/model"
)

// captureRepo records everything flushed to it so tests can inspect the
// persisted rows without a real database.
type captureRepo struct {
	mu        sync.Mutex
	decisions []model.DecisionLog
	responses []model.ResponseLog
}

func (r *captureRepo) APIKeys() store.APIKeyRepository     { return nil }
func (r *captureRepo) Decisions() store.DecisionRepository { return (*captureDecisionRepo)(r) }
func (r *captureRepo) Responses() store.ResponseRepository { return (*captureResponseRepo)(r) }

func (r *captureRepo) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	return fn(r)
}

func (r *captureRepo) Close() error { return nil }

func (r *captureRepo) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.decisions), len(r.responses)
}

type captureDecisionRepo captureRepo

func (r *captureDecisionRepo) Log(ctx context.Context, decision *model.DecisionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, *decision)
	return nil
}

func (r *captureDecisionRepo) GetByRequestID(ctx context.Context, requestID string) ([]model.DecisionLog, error) {
	return nil, nil
}

type captureResponseRepo captureRepo

func (r *captureResponseRepo) Log(ctx context.Context, response *model.ResponseLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, *response)
	return nil
}

func (r *captureResponseRepo) GetRecent(ctx context.Context, limit int) ([]model.ResponseLog, error) {
	return nil, nil
}

func (r *captureResponseRepo) GetDailyStats(ctx context.Context, days int) ([]model.DailyStats, error) {
	return nil, nil
}

func TestIngestorFlushesOnStop(t *testing.T) {
	repo := &captureRepo{}
	ing := NewIngestor(zap.NewNop(), repo)
	ing.Start(context.Background())

	now := time.Now()
	ing.RecordDecision("req-1", &domain.RoutingDecision{
		RequestID:          "req-1",
		ProviderID:         "anthropic-main",
		Model:              "claude-sonnet",
		Reasoning:          "specialist match",
		Confidence:         0.9,
		EstimatedCostUSD:   0.0042,
		EstimatedLatencyMS: 850,
		Fallbacks: []domain.Candidate{
			{ProviderID: "openai-main", Model: "gpt-4o"},
		},
		CreatedAt: now,
	})
	ing.RecordResponse(&domain.Response{
		RequestID:  "req-1",
		ProviderID: "anthropic-main",
		Model:      "claude-sonnet",
		Usage:      domain.TokenUsage{Input: 120, Output: 80, Total: 200},
		CostUSD:    0.0039,
		LatencyMS:  812,
		Success:    true,
		Timestamp:  now,
	})

	ing.Stop()

	require.Eventually(t, func() bool {
		d, r := repo.counts()
		return d == 1 && r == 1
	}, 2*time.Second, 10*time.Millisecond)

	repo.mu.Lock()
	defer repo.mu.Unlock()

	decision := repo.decisions[0]
	assert.NotEmpty(t, decision.ID)
	assert.Equal(t, "req-1", decision.RequestID)
	assert.Equal(t, "anthropic-main", decision.ProviderID)
	assert.Equal(t, "claude-sonnet", decision.Model)
	assert.Equal(t, 0.9, decision.Confidence)
	assert.JSONEq(t, `[{"provider_id":"openai-main","model":"gpt-4o"}]`, decision.FallbacksJSON)

	response := repo.responses[0]
	assert.NotEmpty(t, response.ID)
	assert.Equal(t, "req-1", response.RequestID)
	assert.Equal(t, 120, response.InputTokens)
	assert.Equal(t, 80, response.OutputTokens)
	assert.Equal(t, 0.0039, response.CostUSD)
	assert.True(t, response.Success)
	assert.Empty(t, response.ErrorMessage)
}

func TestIngestorFlushesFullBatch(t *testing.T) {
	repo := &captureRepo{}
	ing := NewIngestor(zap.NewNop(), repo)
	ing.Start(context.Background())
	defer ing.Stop()

	for n := 0; n < 50; n++ {
		ing.RecordResponse(&domain.Response{
			RequestID:  "req-batch",
			ProviderID: "openai-main",
			Model:      "gpt-4o-mini",
			Success:    true,
			Timestamp:  time.Now(),
		})
	}

	// A full batch flushes without waiting for the ticker or Stop.
	require.Eventually(t, func() bool {
		_, r := repo.counts()
		return r == 50
	}, 2*time.Second, 10*time.Millisecond)
}

func TestIngestorRecordsFailureResponses(t *testing.T) {
	repo := &captureRepo{}
	ing := NewIngestor(zap.NewNop(), repo)
	ing.Start(context.Background())

	ing.RecordResponse(&domain.Response{
		RequestID:  "req-fail",
		ProviderID: "local-ollama",
		Model:      "llama3",
		Success:    false,
		Error:      "upstream timeout",
		LatencyMS:  30000,
		Timestamp:  time.Now(),
	})

	ing.Stop()

	require.Eventually(t, func() bool {
		_, r := repo.counts()
		return r == 1
	}, 2*time.Second, 10*time.Millisecond)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.False(t, repo.responses[0].Success)
	assert.Equal(t, "upstream timeout", repo.responses[0].ErrorMessage)
	assert.Equal(t, int64(30000), repo.responses[0].LatencyMS)
}
