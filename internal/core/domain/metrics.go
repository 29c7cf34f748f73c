package domain

import "time"

// Sample is one entry in the rolling one-hour metrics window. It feeds
// trend reporting only; scoring reads the cumulative-derived averages on
// Provider.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	LatencyMS int64     `json:"latency_ms"`
}

// Metrics is a read-only copy of one provider's aggregated stats.
type Metrics struct {
	TotalRequests int64   `json:"total_requests"`
	Successes     int64   `json:"successes"`
	LatencySumMS  int64   `json:"latency_sum_ms"`
	CostSumUSD    float64 `json:"cost_sum_usd"`
	AvgLatencyMS  float64 `json:"avg_latency_ms"`
	SuccessRate   float64 `json:"success_rate"`

	// Attempts turned away at admission. Tracked apart from the request
	// totals: a call that never reached the provider does not dilute
	// its success rate.
	AdmissionDenials int64    `json:"admission_denials"`
	Recent           []Sample `json:"recent,omitempty"`
}
