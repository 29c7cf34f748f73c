package sim

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/nulzo/task-router-api/internal/core/domain"
	"github.com/nulzo/task-router-api/internal/core/ports"
)

// Behavior controls how one simulated provider responds.
type Behavior struct {
	BaseLatency time.Duration
	Jitter      time.Duration
	FailureRate float64 // probability in [0,1] that a call errors
}

// Transport is a deterministic-enough stand-in for real provider
// clients: it sleeps for a configured latency, fails at a configured
// rate, and synthesizes content and token counts from the prompt. It
// honors context cancellation mid-call.
type Transport struct {
	mu        sync.Mutex
	rng       *rand.Rand
	behaviors map[string]Behavior
	fallback  Behavior
}

func New(seed int64, behaviors map[string]Behavior) *Transport {
	return &Transport{
		rng:       rand.New(rand.NewSource(seed)),
		behaviors: behaviors,
		fallback:  Behavior{BaseLatency: 200 * time.Millisecond},
	}
}

func (t *Transport) behavior(providerID string) Behavior {
	if b, ok := t.behaviors[providerID]; ok {
		return b
	}
	return t.fallback
}

func (t *Transport) Invoke(ctx context.Context, providerID, model string, req *domain.Request) (*ports.TransportResult, error) {
	b := t.behavior(providerID)

	t.mu.Lock()
	jitter := time.Duration(0)
	if b.Jitter > 0 {
		jitter = time.Duration(t.rng.Int63n(int64(b.Jitter)))
	}
	fail := t.rng.Float64() < b.FailureRate
	t.mu.Unlock()

	select {
	case <-time.After(b.BaseLatency + jitter):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if fail {
		return nil, fmt.Errorf("simulated upstream error from %s", providerID)
	}

	inputTokens := (len(req.Prompt) + len(req.Context)) / 4
	content := synthesize(req, providerID, model)

	return &ports.TransportResult{
		Content:      content,
		InputTokens:  inputTokens,
		OutputTokens: len(content) / 4,
	}, nil
}

func synthesize(req *domain.Request, providerID, model string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s/%s] %s response for: ", providerID, model, req.Task)

	prompt := req.Prompt
	if len(prompt) > 120 {
		prompt = prompt[:120] + "..."
	}
	sb.WriteString(prompt)
	return sb.String()
}
