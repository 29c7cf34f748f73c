package services

import "github.com/nulzo/task-router-api/internal/core/domain"

// Token, cost and latency estimation. Everything here is pure and
// deterministic: same inputs, same outputs, no shared state.

const (
	charsPerToken        = 4
	defaultOutputCap     = 1000
	latencyPenaltyFree   = 1000 // tokens included before the linear penalty kicks in
	latencyPenaltyPerTok = 2    // ms per token beyond the free allowance
)

// TokenEstimate is the projected token usage for a request.
type TokenEstimate struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

func (t TokenEstimate) Total() int { return t.Input + t.Output }

// EstimateTokens projects input tokens from character length over the
// prompt, context and attached files, and output tokens from the
// caller's max-token constraint or a capped fraction of the input.
func EstimateTokens(req *domain.Request) TokenEstimate {
	chars := len(req.Prompt) + len(req.Context)
	for _, f := range req.Files {
		chars += len(f)
	}
	input := chars / charsPerToken

	output := req.Constraints.MaxTokens
	if output <= 0 {
		output = input / 2
		if output > defaultOutputCap {
			output = defaultOutputCap
		}
	}

	return TokenEstimate{Input: input, Output: output}
}

// EstimateCost prices a token estimate against a provider: per-1000
// token input/output rates plus the flat per-request charge.
func EstimateCost(p domain.Provider, tokens TokenEstimate) float64 {
	return float64(tokens.Input)/1000*p.Spec.Pricing.InputPer1K +
		float64(tokens.Output)/1000*p.Spec.Pricing.OutputPer1K +
		p.Spec.Pricing.PerRequest
}

// EstimateLatency projects milliseconds for a request: the provider's
// rolling average plus a linear penalty for volume beyond 1000 tokens.
func EstimateLatency(p domain.Provider, tokens TokenEstimate) int {
	penalty := (tokens.Total() - latencyPenaltyFree) * latencyPenaltyPerTok
	if penalty < 0 {
		penalty = 0
	}
	return int(p.Perf.AvgLatencyMS) + penalty
}
