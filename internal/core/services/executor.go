package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nulzo/task-router-api/internal/core/domain"
	"github.com/nulzo/task-router-api/internal/core/ports"
)

const defaultCallTimeout = 30 * time.Second

// Executor runs a routing decision: it reserves admission, invokes the
// transport under a bounded deadline, records the outcome, and walks
// the fallback chain when an attempt fails. The walk is an explicit
// iterative countdown, so termination never depends on chain-length
// assumptions.
type Executor struct {
	registry  *Registry
	load      *LoadAccountant
	metrics   *MetricsAggregator
	transport ports.Transport
	sink      ports.DecisionSink
	logger    *zap.Logger
}

func NewExecutor(registry *Registry, load *LoadAccountant, metrics *MetricsAggregator, transport ports.Transport, sink ports.DecisionSink, logger *zap.Logger) *Executor {
	return &Executor{
		registry:  registry,
		load:      load,
		metrics:   metrics,
		transport: transport,
		sink:      sink,
		logger:    logger,
	}
}

// Execute makes at most len(decision.Fallbacks)+1 transport attempts
// and always returns a Response. An admission denial counts exactly
// like a transport failure: move to the next candidate without
// re-scoring. Each attempt reserves and releases admission
// independently; no reservation is held across an escalation.
func (e *Executor) Execute(ctx context.Context, req *domain.Request, decision *domain.RoutingDecision) *domain.Response {
	start := time.Now()
	tokens := EstimateTokens(req)

	chain := make([]domain.Candidate, 0, len(decision.Fallbacks)+1)
	chain = append(chain, domain.Candidate{ProviderID: decision.ProviderID, Model: decision.Model})
	chain = append(chain, decision.Fallbacks...)

	lastErr := domain.ErrNoProvidersAvailable
	for attemptsLeft, i := len(chain), 0; attemptsLeft > 0; attemptsLeft, i = attemptsLeft-1, i+1 {
		candidate := chain[i]

		if !e.load.TryAdmit(candidate.ProviderID, tokens.Total()) {
			e.metrics.RecordDenial(candidate.ProviderID)
			e.logger.Debug("Admission denied, escalating to fallback",
				zap.String("request_id", req.ID),
				zap.String("provider", candidate.ProviderID),
			)
			lastErr = domain.ErrAdmissionDenied
			continue
		}

		resp, err := e.attempt(ctx, req, candidate)
		e.load.Release(candidate.ProviderID)

		if err == nil {
			e.sink.RecordResponse(resp)
			return resp
		}

		lastErr = &domain.TransportError{ProviderID: candidate.ProviderID, Err: err}
		e.logger.Warn("Provider attempt failed",
			zap.String("request_id", req.ID),
			zap.String("provider", candidate.ProviderID),
			zap.String("model", candidate.Model),
			zap.Error(err),
		)
	}

	// Chain exhausted: synthesize a terminal failure measured from the
	// original request start.
	failure := &domain.Response{
		RequestID:  req.ID,
		ProviderID: decision.ProviderID,
		Model:      decision.Model,
		Success:    false,
		Error:      lastErr.Error(),
		LatencyMS:  time.Since(start).Milliseconds(),
		Timestamp:  time.Now(),
	}
	e.sink.RecordResponse(failure)
	return failure
}

// attempt performs one bounded transport call and the bookkeeping for
// its outcome. The returned Response is only valid when err is nil.
func (e *Executor) attempt(ctx context.Context, req *domain.Request, candidate domain.Candidate) (*domain.Response, error) {
	timeout := defaultCallTimeout
	if req.Constraints.MaxLatencyMS > 0 {
		timeout = time.Duration(req.Constraints.MaxLatencyMS) * time.Millisecond
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	result, err := e.transport.Invoke(callCtx, candidate.ProviderID, candidate.Model, req)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		e.metrics.Record(candidate.ProviderID, false, latency, 0)
		return nil, err
	}

	cost := e.actualCost(candidate.ProviderID, result)
	e.metrics.Record(candidate.ProviderID, true, latency, cost)

	return &domain.Response{
		RequestID:  req.ID,
		ProviderID: candidate.ProviderID,
		Model:      candidate.Model,
		Content:    result.Content,
		Usage: domain.TokenUsage{
			Input:  result.InputTokens,
			Output: result.OutputTokens,
			Total:  result.InputTokens + result.OutputTokens,
		},
		CostUSD:   cost,
		LatencyMS: latency,
		Success:   true,
		Timestamp: time.Now(),
	}, nil
}

func (e *Executor) actualCost(providerID string, result *ports.TransportResult) float64 {
	p, ok := e.registry.Get(providerID)
	if !ok {
		return 0
	}
	return EstimateCost(p, TokenEstimate{Input: result.InputTokens, Output: result.OutputTokens})
}
