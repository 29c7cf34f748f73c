package domain

import "time"

// Scope constants for provider visibility.
const (
	ScopeShared = "shared"
)

// ModelSpec describes a single model offered by a provider.
// Tier is an explicit capability ranking (higher = more capable); model
// selection keys off this field rather than the position in the slice.
type ModelSpec struct {
	ID   string `mapstructure:"id" json:"id" validate:"required"`
	Tier int    `mapstructure:"tier" json:"tier" validate:"gte=0"`
}

// Pricing holds the USD prices for a provider.
type Pricing struct {
	InputPer1K  float64 `mapstructure:"input_per_1k" json:"input_per_1k" validate:"gte=0"`
	OutputPer1K float64 `mapstructure:"output_per_1k" json:"output_per_1k" validate:"gte=0"`
	PerRequest  float64 `mapstructure:"per_request" json:"per_request" validate:"gte=0"`
}

// RateLimits are the provider's admission limits.
type RateLimits struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute" json:"requests_per_minute" validate:"gt=0"`
	TokensPerMinute   int `mapstructure:"tokens_per_minute" json:"tokens_per_minute" validate:"gt=0"`
	MaxConcurrent     int `mapstructure:"max_concurrent" json:"max_concurrent" validate:"gt=0"`
}

// Capabilities are the static feature flags of a provider.
type Capabilities struct {
	MaxOutputTokens int  `mapstructure:"max_output_tokens" json:"max_output_tokens"`
	ContextWindow   int  `mapstructure:"context_window" json:"context_window"`
	Streaming       bool `mapstructure:"streaming" json:"streaming"`
	FunctionCalling bool `mapstructure:"function_calling" json:"function_calling"`
	CodeExecution   bool `mapstructure:"code_execution" json:"code_execution"`
	Vision          bool `mapstructure:"vision" json:"vision"`
	Multimodal      bool `mapstructure:"multimodal" json:"multimodal"`
}

// ProviderSpec is the immutable configuration of a backend provider.
// It is loaded once at startup and never mutated afterwards; the live
// performance counterpart lives in Performance, keyed by provider ID.
type ProviderSpec struct {
	ID              string       `mapstructure:"id" json:"id" validate:"required"`
	Vendor          string       `mapstructure:"vendor" json:"vendor" validate:"required"`
	Models          []ModelSpec  `mapstructure:"models" json:"models" validate:"required,min=1,dive"`
	Pricing         Pricing      `mapstructure:"pricing" json:"pricing"`
	Limits          RateLimits   `mapstructure:"limits" json:"limits" validate:"required"`
	Capabilities    Capabilities `mapstructure:"capabilities" json:"capabilities"`
	Specializations []string     `mapstructure:"specializations" json:"specializations"`
	Scope           string       `mapstructure:"scope" json:"scope"`
	Enabled         bool         `mapstructure:"enabled" json:"enabled"`

	// Seed values for the mutable performance state.
	BaselineLatencyMS float64 `mapstructure:"baseline_latency_ms" json:"baseline_latency_ms" validate:"gte=0"`
	QualityScore      float64 `mapstructure:"quality_score" json:"quality_score" validate:"gte=0,lte=1"`
}

// Performance is the rolling performance snapshot of a provider.
// Average latency and success rate drift toward recent behavior; quality
// is seeded from configuration.
type Performance struct {
	AvgLatencyMS  float64   `json:"avg_latency_ms"`
	SuccessRate   float64   `json:"success_rate"`
	QualityScore  float64   `json:"quality_score"`
	TotalRequests int64     `json:"total_requests"`
	LastUpdated   time.Time `json:"last_updated"`
}

// Provider is the read snapshot handed out by the registry: the static
// spec plus a copy of the current performance state.
type Provider struct {
	Spec ProviderSpec `json:"spec"`
	Perf Performance  `json:"performance"`
}

// VisibleTo reports whether the provider may serve requests for the
// given organization.
func (p ProviderSpec) VisibleTo(org string) bool {
	return p.Scope == "" || p.Scope == ScopeShared || p.Scope == org
}
