package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nulzo/task-router-api/internal/core/domain"
)

// testSpec returns a valid provider spec that individual tests tweak.
func testSpec(id string) domain.ProviderSpec {
	return domain.ProviderSpec{
		ID:     id,
		Vendor: "testvendor",
		Models: []domain.ModelSpec{
			{ID: id + "-small", Tier: 1},
			{ID: id + "-medium", Tier: 2},
			{ID: id + "-large", Tier: 3},
		},
		Pricing: domain.Pricing{InputPer1K: 0.001, OutputPer1K: 0.002},
		Limits:  domain.RateLimits{RequestsPerMinute: 100, TokensPerMinute: 100000, MaxConcurrent: 10},
		Capabilities: domain.Capabilities{
			Streaming:       true,
			FunctionCalling: true,
		},
		Specializations:   []string{"code"},
		Enabled:           true,
		BaselineLatencyMS: 500,
		QualityScore:      0.9,
	}
}

func TestNewRegistry_RejectsInvalidSpec(t *testing.T) {
	spec := testSpec("p1")
	spec.Vendor = ""

	_, err := NewRegistry([]domain.ProviderSpec{spec})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "p1")
}

func TestNewRegistry_RejectsMissingModels(t *testing.T) {
	spec := testSpec("p1")
	spec.Models = nil

	_, err := NewRegistry([]domain.ProviderSpec{spec})
	require.Error(t, err)
}

func TestNewRegistry_RejectsDuplicateIDs(t *testing.T) {
	_, err := NewRegistry([]domain.ProviderSpec{testSpec("p1"), testSpec("p1")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNewRegistry_DefaultsScopeAndSortsTiers(t *testing.T) {
	spec := testSpec("p1")
	spec.Scope = ""
	spec.Models = []domain.ModelSpec{
		{ID: "big", Tier: 3},
		{ID: "small", Tier: 1},
		{ID: "mid", Tier: 2},
	}

	reg, err := NewRegistry([]domain.ProviderSpec{spec})
	require.NoError(t, err)

	p, ok := reg.Get("p1")
	require.True(t, ok)
	assert.Equal(t, domain.ScopeShared, p.Spec.Scope)
	assert.Equal(t, []string{"small", "mid", "big"}, []string{p.Spec.Models[0].ID, p.Spec.Models[1].ID, p.Spec.Models[2].ID})
}

func TestListActive_FiltersDisabledAndScope(t *testing.T) {
	shared := testSpec("shared")
	disabled := testSpec("disabled")
	disabled.Enabled = false
	scoped := testSpec("scoped")
	scoped.Scope = "org-a"

	reg, err := NewRegistry([]domain.ProviderSpec{shared, disabled, scoped})
	require.NoError(t, err)

	forA := reg.ListActive("org-a")
	require.Len(t, forA, 2)
	assert.Equal(t, "shared", forA[0].Spec.ID)
	assert.Equal(t, "scoped", forA[1].Spec.ID)

	forB := reg.ListActive("org-b")
	require.Len(t, forB, 1)
	assert.Equal(t, "shared", forB[0].Spec.ID)
}

func TestListActive_PreservesRegistrationOrder(t *testing.T) {
	reg, err := NewRegistry([]domain.ProviderSpec{testSpec("zeta"), testSpec("alpha"), testSpec("mid")})
	require.NoError(t, err)

	active := reg.ListActive("")
	require.Len(t, active, 3)
	assert.Equal(t, "zeta", active[0].Spec.ID)
	assert.Equal(t, "alpha", active[1].Spec.ID)
	assert.Equal(t, "mid", active[2].Spec.ID)
}

func TestUpdatePerformance_RunningMean(t *testing.T) {
	spec := testSpec("p1")
	spec.BaselineLatencyMS = 100

	reg, err := NewRegistry([]domain.ProviderSpec{spec})
	require.NoError(t, err)

	// First observation replaces the seed entirely (total was 0).
	reg.UpdatePerformance("p1", 300, true)
	p, _ := reg.Get("p1")
	assert.InDelta(t, 300, p.Perf.AvgLatencyMS, 0.001)
	assert.InDelta(t, 1.0, p.Perf.SuccessRate, 0.001)
	assert.EqualValues(t, 1, p.Perf.TotalRequests)

	reg.UpdatePerformance("p1", 100, false)
	p, _ = reg.Get("p1")
	assert.InDelta(t, 200, p.Perf.AvgLatencyMS, 0.001)
	assert.InDelta(t, 0.5, p.Perf.SuccessRate, 0.001)
	assert.EqualValues(t, 2, p.Perf.TotalRequests)
}

func TestGet_UnknownProvider(t *testing.T) {
	reg, err := NewRegistry(nil)
	require.NoError(t, err)

	_, ok := reg.Get("nope")
	assert.False(t, ok)

	_, ok = reg.Limits("nope")
	assert.False(t, ok)
}
