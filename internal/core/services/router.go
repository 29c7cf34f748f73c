package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/nulzo/task-router-api/internal/core/domain"
	"github.com/nulzo/task-router-api/internal/core/ports"
)

const (
	maxFallbacks = 3

	// Requests capped below this spend always get the cheapest tier.
	budgetTierThresholdUSD = 0.01
)

// Router builds routing decisions: it filters candidates on hard
// constraints, scores the survivors, selects a model tier for the
// winner, and attaches an ordered fallback chain.
type Router struct {
	registry *Registry
	load     *LoadAccountant
	scorer   *Scorer
	sink     ports.DecisionSink
	logger   *zap.Logger
}

func NewRouter(registry *Registry, load *LoadAccountant, scorer *Scorer, sink ports.DecisionSink, logger *zap.Logger) *Router {
	return &Router{
		registry: registry,
		load:     load,
		scorer:   scorer,
		sink:     sink,
		logger:   logger,
	}
}

type scoredCandidate struct {
	provider domain.Provider
	score    domain.Score
	cost     float64
	latency  int
}

// Route produces a decision for the request, or ErrNoProvidersAvailable
// when the hard filter eliminates every candidate. All other
// irregularities are expressed through lower scores, never errors.
func (r *Router) Route(ctx context.Context, req *domain.Request) (*domain.RoutingDecision, error) {
	candidates := r.filter(req)
	if len(candidates) == 0 {
		return nil, domain.ErrNoProvidersAvailable
	}

	tokens := EstimateTokens(req)

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, p := range candidates {
		scored = append(scored, scoredCandidate{
			provider: p,
			score:    r.scorer.Score(p, req),
			cost:     EstimateCost(p, tokens),
			latency:  EstimateLatency(p, tokens),
		})
	}

	// Stable sort keeps registration order on ties, which makes the
	// ranking deterministic.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score.Total > scored[j].score.Total
	})

	winner := scored[0]

	fallbacks := make([]domain.Candidate, 0, maxFallbacks)
	for _, c := range scored[1:] {
		if len(fallbacks) == maxFallbacks {
			break
		}
		fallbacks = append(fallbacks, domain.Candidate{
			ProviderID: c.provider.Spec.ID,
			Model:      selectModel(c.provider, req),
		})
	}

	decision := &domain.RoutingDecision{
		RequestID:          req.ID,
		ProviderID:         winner.provider.Spec.ID,
		Model:              selectModel(winner.provider, req),
		Reasoning:          r.reasoning(winner, len(candidates)),
		Confidence:         winner.score.Confidence,
		EstimatedCostUSD:   winner.cost,
		EstimatedLatencyMS: winner.latency,
		Fallbacks:          fallbacks,
		CreatedAt:          time.Now(),
	}

	// Best-effort audit; a sink failure must never fail routing.
	r.sink.RecordDecision(req.ID, decision)

	r.logger.Debug("Routing decision made",
		zap.String("request_id", req.ID),
		zap.String("provider", decision.ProviderID),
		zap.String("model", decision.Model),
		zap.Float64("score", winner.score.Total),
		zap.Int("fallbacks", len(fallbacks)),
	)

	return decision, nil
}

// filter applies every hard constraint: active+scope (via ListActive),
// include/exclude lists (exclusion wins on conflict), required
// capabilities, advisory admission headroom, and the cost ceiling.
func (r *Router) filter(req *domain.Request) []domain.Provider {
	tokens := EstimateTokens(req)

	include := toSet(req.Constraints.IncludeProviders)
	exclude := toSet(req.Constraints.ExcludeProviders)

	var out []domain.Provider
	for _, p := range r.registry.ListActive(req.OrgID) {
		id := p.Spec.ID

		if exclude[id] {
			continue
		}
		if len(include) > 0 && !include[id] {
			continue
		}
		if req.Constraints.RequireStreaming && !p.Spec.Capabilities.Streaming {
			continue
		}
		if req.Constraints.RequireFunctionCalling && !p.Spec.Capabilities.FunctionCalling {
			continue
		}
		if !r.load.CanAdmit(id, tokens.Total()) {
			continue
		}
		if maxCost := req.Constraints.MaxCostUSD; maxCost > 0 && EstimateCost(p, tokens) > maxCost {
			continue
		}

		out = append(out, p)
	}
	return out
}

// selectModel picks a tier for the provider: code generation and review
// go to the highest tier, low-priority or tightly-budgeted requests to
// the lowest, everything else to the middle. Models are tier-sorted by
// the registry.
func selectModel(p domain.Provider, req *domain.Request) string {
	models := p.Spec.Models

	switch {
	case req.Task == domain.TaskCodeGeneration || req.Task == domain.TaskCodeReview:
		return models[len(models)-1].ID
	case req.Priority == domain.PriorityLow:
		return models[0].ID
	case req.Constraints.MaxCostUSD > 0 && req.Constraints.MaxCostUSD < budgetTierThresholdUSD:
		return models[0].ID
	default:
		return models[len(models)/2].ID
	}
}

func (r *Router) reasoning(winner scoredCandidate, candidateCount int) string {
	b := winner.score.Breakdown
	return fmt.Sprintf(
		"selected %s from %d candidates (total=%.3f spec=%.2f perf=%.2f cost=%.2f avail=%.2f quality=%.2f, est $%.4f / %dms)",
		winner.provider.Spec.ID, candidateCount, winner.score.Total,
		b.Specialization, b.Performance, b.Cost, b.Availability, b.Quality,
		winner.cost, winner.latency,
	)
}

func toSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
