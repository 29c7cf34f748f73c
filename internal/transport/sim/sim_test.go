package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nulzo/task-router-api/internal/core/domain"
)

func simRequest() *domain.Request {
	return &domain.Request{
		ID:     "req-1",
		Task:   domain.TaskExplanation,
		Prompt: "explain goroutines in one paragraph",
	}
}

func TestInvoke_SynthesizesContentAndTokens(t *testing.T) {
	transport := New(1, nil)

	result, err := transport.Invoke(context.Background(), "p1", "p1-medium", simRequest())
	require.NoError(t, err)

	assert.Contains(t, result.Content, "p1/p1-medium")
	assert.Contains(t, result.Content, "explain goroutines")
	assert.Equal(t, len(simRequest().Prompt)/4, result.InputTokens)
	assert.Equal(t, len(result.Content)/4, result.OutputTokens)
}

func TestInvoke_AlwaysFailsAtRateOne(t *testing.T) {
	transport := New(1, map[string]Behavior{
		"flaky": {BaseLatency: time.Millisecond, FailureRate: 1.0},
	})

	for i := 0; i < 5; i++ {
		_, err := transport.Invoke(context.Background(), "flaky", "m", simRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "flaky")
	}
}

func TestInvoke_NeverFailsAtRateZero(t *testing.T) {
	transport := New(42, map[string]Behavior{
		"steady": {BaseLatency: time.Millisecond, Jitter: time.Millisecond},
	})

	for i := 0; i < 20; i++ {
		_, err := transport.Invoke(context.Background(), "steady", "m", simRequest())
		require.NoError(t, err)
	}
}

func TestInvoke_HonorsContextCancellation(t *testing.T) {
	transport := New(1, map[string]Behavior{
		"slow": {BaseLatency: time.Second},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := transport.Invoke(ctx, "slow", "m", simRequest())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
