package services

import "github.com/nulzo/task-router-api/internal/core/domain"

// Scoring weights. They must sum to 1.0; any deviation is a bug.
const (
	weightSpecialization = 0.30
	weightPerformance    = 0.25
	weightCost           = 0.20
	weightAvailability   = 0.15
	weightQuality        = 0.10

	defaultMaxLatencyMS = 5000
	defaultMaxCostUSD   = 1.0

	perfLatencyShare = 0.6
	perfSuccessShare = 0.4

	confidenceWarm = 0.9
	confidenceCold = 0.7
	coldStartMin   = 10
)

// taskTags maps each task type to the specialization tags a provider
// should carry to be a good fit. An unmapped task type scores 0 on
// specialization.
var taskTags = map[domain.TaskType][]string{
	domain.TaskCodeGeneration: {"code"},
	domain.TaskCodeReview:     {"code", "analysis"},
	domain.TaskDocumentation:  {"writing"},
	domain.TaskDebugging:      {"code", "debugging"},
	domain.TaskExplanation:    {"reasoning"},
	domain.TaskRefactoring:    {"code"},
	domain.TaskTesting:        {"code", "testing"},
	domain.TaskAnalysis:       {"analysis", "reasoning"},
	domain.TaskCreative:       {"creative"},
	domain.TaskReasoning:      {"reasoning"},
}

// Scorer ranks candidate providers for a request using a fixed weighted
// blend of specialization fit, rolling performance, estimated cost,
// live availability and configured quality.
type Scorer struct {
	load *LoadAccountant
}

func NewScorer(load *LoadAccountant) *Scorer {
	return &Scorer{load: load}
}

// Score computes the weighted total, the per-factor breakdown and a
// confidence value for one provider against one request. Given
// identical provider/load snapshots it is fully deterministic.
func (s *Scorer) Score(p domain.Provider, req *domain.Request) domain.Score {
	tokens := EstimateTokens(req)

	breakdown := domain.ScoreBreakdown{
		Specialization: specializationScore(p, req.Task),
		Performance:    performanceScore(p, req.Constraints.MaxLatencyMS),
		Cost:           costScore(EstimateCost(p, tokens), req.Constraints.MaxCostUSD),
		Availability:   s.load.AvailabilityScore(p.Spec.ID),
		Quality:        p.Perf.QualityScore,
	}

	total := weightSpecialization*breakdown.Specialization +
		weightPerformance*breakdown.Performance +
		weightCost*breakdown.Cost +
		weightAvailability*breakdown.Availability +
		weightQuality*breakdown.Quality

	return domain.Score{
		Total:      total,
		Confidence: confidence(p),
		Breakdown:  breakdown,
	}
}

// specializationScore is the fraction of the task's required tags the
// provider carries. The denominator is never below 1.
func specializationScore(p domain.Provider, task domain.TaskType) float64 {
	required := taskTags[task]

	have := make(map[string]bool, len(p.Spec.Specializations))
	for _, tag := range p.Spec.Specializations {
		have[tag] = true
	}

	matched := 0
	for _, tag := range required {
		if have[tag] {
			matched++
		}
	}

	denom := len(required)
	if denom < 1 {
		denom = 1
	}
	return float64(matched) / float64(denom)
}

// performanceScore blends latency headroom against the caller's ceiling
// (or a 5s default) with the provider's rolling success rate.
func performanceScore(p domain.Provider, maxLatencyMS int) float64 {
	ceiling := float64(maxLatencyMS)
	if ceiling <= 0 {
		ceiling = defaultMaxLatencyMS
	}

	latencyScore := 1 - p.Perf.AvgLatencyMS/ceiling
	if latencyScore < 0 {
		latencyScore = 0
	}

	return perfLatencyShare*latencyScore + perfSuccessShare*p.Perf.SuccessRate
}

func costScore(estimated, maxCostUSD float64) float64 {
	limit := maxCostUSD
	if limit <= 0 {
		limit = defaultMaxCostUSD
	}

	score := 1 - estimated/limit
	if score < 0 {
		return 0
	}
	return score
}

// confidence applies a simple cold-start discount: providers with a
// short history are capped lower regardless of their success rate.
func confidence(p domain.Provider) float64 {
	ceiling := confidenceCold
	if p.Perf.TotalRequests > coldStartMin {
		ceiling = confidenceWarm
	}
	if p.Perf.SuccessRate < ceiling {
		return p.Perf.SuccessRate
	}
	return ceiling
}
