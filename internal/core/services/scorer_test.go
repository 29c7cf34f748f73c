package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nulzo/task-router-api/internal/core/domain"
)

func newTestScorer(t *testing.T, specs ...domain.ProviderSpec) (*Registry, *Scorer) {
	t.Helper()
	reg, err := NewRegistry(specs)
	require.NoError(t, err)
	return reg, NewScorer(NewLoadAccountant(reg, zap.NewNop()))
}

func TestScore_WeightedBlend(t *testing.T) {
	reg, scorer := newTestScorer(t, testSpec("p1"))
	p, _ := reg.Get("p1")
	req := &domain.Request{Task: domain.TaskCodeGeneration, Prompt: "write a function"}

	score := scorer.Score(p, req)

	b := score.Breakdown
	expected := 0.30*b.Specialization + 0.25*b.Performance + 0.20*b.Cost + 0.15*b.Availability + 0.10*b.Quality
	assert.InDelta(t, expected, score.Total, 1e-9)
	assert.GreaterOrEqual(t, score.Total, 0.0)
	assert.LessOrEqual(t, score.Total, 1.0)
}

func TestScore_Deterministic(t *testing.T) {
	reg, scorer := newTestScorer(t, testSpec("p1"))
	p, _ := reg.Get("p1")
	req := &domain.Request{Task: domain.TaskAnalysis, Prompt: "compare these approaches"}

	first := scorer.Score(p, req)
	second := scorer.Score(p, req)
	assert.Equal(t, first, second)
}

func TestSpecializationScore(t *testing.T) {
	p := domain.Provider{Spec: domain.ProviderSpec{Specializations: []string{"code", "testing"}}}

	assert.InDelta(t, 1.0, specializationScore(p, domain.TaskCodeGeneration), 0.001)
	assert.InDelta(t, 0.5, specializationScore(p, domain.TaskCodeReview), 0.001) // has code, lacks analysis
	assert.InDelta(t, 0.0, specializationScore(p, domain.TaskCreative), 0.001)

	// A task type with no tag mapping never matches anything.
	assert.InDelta(t, 0.0, specializationScore(p, domain.TaskType("interpretive_dance")), 0.001)
}

func TestPerformanceScore_LatencyCeiling(t *testing.T) {
	p := domain.Provider{Perf: domain.Performance{AvgLatencyMS: 2500, SuccessRate: 1.0}}

	// Against the 5000ms default the latency half scores 0.5.
	assert.InDelta(t, 0.6*0.5+0.4*1.0, performanceScore(p, 0), 0.001)

	// A tight caller ceiling zeroes the latency half instead of going negative.
	assert.InDelta(t, 0.4, performanceScore(p, 1000), 0.001)
}

func TestCostScore(t *testing.T) {
	assert.InDelta(t, 0.9, costScore(0.1, 0), 0.001) // default $1 ceiling
	assert.InDelta(t, 0.5, costScore(0.05, 0.1), 0.001)
	assert.Zero(t, costScore(0.5, 0.1)) // over budget clamps at zero
}

func TestConfidence_ColdStartDiscount(t *testing.T) {
	cold := domain.Provider{Perf: domain.Performance{SuccessRate: 1.0, TotalRequests: 3}}
	assert.InDelta(t, 0.7, confidence(cold), 0.001)

	warm := domain.Provider{Perf: domain.Performance{SuccessRate: 1.0, TotalRequests: 50}}
	assert.InDelta(t, 0.9, confidence(warm), 0.001)

	// A poor success rate is never rounded up to the ceiling.
	shaky := domain.Provider{Perf: domain.Performance{SuccessRate: 0.4, TotalRequests: 50}}
	assert.InDelta(t, 0.4, confidence(shaky), 0.001)
}

func TestScore_PrefersSpecialist(t *testing.T) {
	specialist := testSpec("specialist")
	specialist.Specializations = []string{"code", "debugging"}

	generalist := testSpec("generalist")
	generalist.Specializations = []string{"writing"}

	reg, scorer := newTestScorer(t, specialist, generalist)
	req := &domain.Request{Task: domain.TaskDebugging, Prompt: "why does this panic"}

	sp, _ := reg.Get("specialist")
	gp, _ := reg.Get("generalist")

	assert.Greater(t, scorer.Score(sp, req).Total, scorer.Score(gp, req).Total)
}
