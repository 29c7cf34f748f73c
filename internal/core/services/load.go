package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// loadState tracks one provider's in-flight and per-minute usage. Each
// entry has its own mutex so admissions against different providers
// proceed in parallel, and the window sweep never stops the world.
type loadState struct {
	mu              sync.Mutex
	concurrent      int
	requestsThisMin int
	tokensThisMin   int
	lastRequest     time.Time
}

// LoadAccountant enforces per-provider admission control. TryAdmit is
// the authoritative gate: the check and the increments happen under one
// lock so two concurrent callers can never both squeeze past a limit.
type LoadAccountant struct {
	registry *Registry
	logger   *zap.Logger

	mu     sync.RWMutex
	states map[string]*loadState
}

func NewLoadAccountant(registry *Registry, logger *zap.Logger) *LoadAccountant {
	return &LoadAccountant{
		registry: registry,
		logger:   logger,
		states:   make(map[string]*loadState),
	}
}

func (l *LoadAccountant) state(providerID string) *loadState {
	l.mu.RLock()
	st, ok := l.states[providerID]
	l.mu.RUnlock()
	if ok {
		return st
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if st, ok = l.states[providerID]; ok {
		return st
	}
	st = &loadState{}
	l.states[providerID] = st
	return st
}

// TryAdmit reserves capacity for one request. It admits only when all
// three limits have headroom, and the reservation happens atomically
// with the check.
func (l *LoadAccountant) TryAdmit(providerID string, estimatedTokens int) bool {
	limits, ok := l.registry.Limits(providerID)
	if !ok {
		return false
	}

	st := l.state(providerID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.concurrent >= limits.MaxConcurrent {
		return false
	}
	if st.requestsThisMin >= limits.RequestsPerMinute {
		return false
	}
	if st.tokensThisMin+estimatedTokens > limits.TokensPerMinute {
		return false
	}

	st.concurrent++
	st.requestsThisMin++
	st.tokensThisMin += estimatedTokens
	st.lastRequest = time.Now()
	return true
}

// CanAdmit is the advisory, read-only variant used by the router's hard
// filter. It reserves nothing; the executor re-checks authoritatively
// at dispatch time.
func (l *LoadAccountant) CanAdmit(providerID string, estimatedTokens int) bool {
	limits, ok := l.registry.Limits(providerID)
	if !ok {
		return false
	}

	st := l.state(providerID)
	st.mu.Lock()
	defer st.mu.Unlock()

	return st.concurrent < limits.MaxConcurrent &&
		st.requestsThisMin < limits.RequestsPerMinute &&
		st.tokensThisMin+estimatedTokens <= limits.TokensPerMinute
}

// Release returns one unit of concurrency. The count clamps at zero.
func (l *LoadAccountant) Release(providerID string) {
	st := l.state(providerID)
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.concurrent > 0 {
		st.concurrent--
	}
}

// AvailabilityScore returns the minimum headroom ratio across the three
// limits, in [0,1]. Advisory only; it ranks already-admissible
// candidates and never gates admission.
func (l *LoadAccountant) AvailabilityScore(providerID string) float64 {
	limits, ok := l.registry.Limits(providerID)
	if !ok {
		return 0
	}

	st := l.state(providerID)
	st.mu.Lock()
	defer st.mu.Unlock()

	score := headroom(st.concurrent, limits.MaxConcurrent)
	if v := headroom(st.requestsThisMin, limits.RequestsPerMinute); v < score {
		score = v
	}
	if v := headroom(st.tokensThisMin, limits.TokensPerMinute); v < score {
		score = v
	}
	return score
}

func headroom(used, limit int) float64 {
	if limit <= 0 {
		return 0
	}
	v := 1 - float64(used)/float64(limit)
	if v < 0 {
		return 0
	}
	return v
}

// ResetWindow zeroes the per-minute counters for all providers. Each
// entry is swept under its own lock so in-flight admissions against
// other providers are never blocked.
func (l *LoadAccountant) ResetWindow() {
	l.mu.RLock()
	states := make([]*loadState, 0, len(l.states))
	for _, st := range l.states {
		states = append(states, st)
	}
	l.mu.RUnlock()

	for _, st := range states {
		st.mu.Lock()
		st.requestsThisMin = 0
		st.tokensThisMin = 0
		st.mu.Unlock()
	}
}

// ActiveRequests returns the total in-flight count across providers.
func (l *LoadAccountant) ActiveRequests() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0
	for _, st := range l.states {
		st.mu.Lock()
		total += st.concurrent
		st.mu.Unlock()
	}
	return total
}

// Snapshot returns one provider's current load counters.
func (l *LoadAccountant) Snapshot(providerID string) (concurrent, requests, tokens int, last time.Time) {
	st := l.state(providerID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.concurrent, st.requestsThisMin, st.tokensThisMin, st.lastRequest
}

// Run resets the per-minute window on a fixed interval until ctx is
// cancelled.
func (l *LoadAccountant) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.ResetWindow()
			l.logger.Debug("Per-minute admission window reset")
		case <-ctx.Done():
			return
		}
	}
}
