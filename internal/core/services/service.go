package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nulzo/task-router-api/internal/core/domain"
	"github.com/nulzo/task-router-api/internal/core/ports"
)

// Service is the single entry point most callers need. It wires the
// registry, load accountant, scorer, router, executor and metrics
// aggregator together and owns their background timers.
type Service struct {
	registry *Registry
	load     *LoadAccountant
	metrics  *MetricsAggregator
	router   *Router
	executor *Executor
	logger   *zap.Logger
}

func NewService(specs []domain.ProviderSpec, transport ports.Transport, sink ports.DecisionSink, logger *zap.Logger) (*Service, error) {
	registry, err := NewRegistry(specs)
	if err != nil {
		return nil, err
	}

	load := NewLoadAccountant(registry, logger)
	metrics := NewMetricsAggregator(registry, logger)
	scorer := NewScorer(load)
	router := NewRouter(registry, load, scorer, sink, logger)
	executor := NewExecutor(registry, load, metrics, transport, sink, logger)

	return &Service{
		registry: registry,
		load:     load,
		metrics:  metrics,
		router:   router,
		executor: executor,
		logger:   logger,
	}, nil
}

// Start launches the per-minute admission reset and the hourly-window
// metrics prune. Both stop when ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	go s.load.Run(ctx, time.Minute)
	go s.metrics.Run(ctx, time.Minute)
}

// Route builds a decision without executing it, for callers that want
// to inspect or override before dispatch.
func (s *Service) Route(ctx context.Context, req *domain.Request) (*domain.RoutingDecision, error) {
	s.ensureID(req)
	return s.router.Route(ctx, req)
}

// Execute runs a previously obtained decision.
func (s *Service) Execute(ctx context.Context, req *domain.Request, decision *domain.RoutingDecision) *domain.Response {
	s.ensureID(req)
	return s.executor.Execute(ctx, req, decision)
}

// RouteAndExecute is the synchronous one-shot path: route, then run the
// decision with fallback.
func (s *Service) RouteAndExecute(ctx context.Context, req *domain.Request) (*domain.Response, error) {
	decision, err := s.Route(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.executor.Execute(ctx, req, decision), nil
}

// ListProviders returns read-only snapshots of every registered
// provider.
func (s *Service) ListProviders() []domain.Provider {
	return s.registry.All()
}

// GetMetrics returns one provider's metrics copy.
func (s *Service) GetMetrics(providerID string) (domain.Metrics, bool) {
	return s.metrics.Snapshot(providerID)
}

// GetAllMetrics returns metrics for every provider with traffic.
func (s *Service) GetAllMetrics() map[string]domain.Metrics {
	return s.metrics.SnapshotAll()
}

// ActiveRequestCount is the total number of in-flight provider calls.
func (s *Service) ActiveRequestCount() int {
	return s.load.ActiveRequests()
}

func (s *Service) ensureID(req *domain.Request) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
}
