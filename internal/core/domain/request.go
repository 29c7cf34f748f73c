package domain

// TaskType classifies what kind of work a request is asking for.
type TaskType string

const (
	TaskCodeGeneration TaskType = "code_generation"
	TaskCodeReview     TaskType = "code_review"
	TaskDocumentation  TaskType = "documentation"
	TaskDebugging      TaskType = "debugging"
	TaskExplanation    TaskType = "explanation"
	TaskRefactoring    TaskType = "refactoring"
	TaskTesting        TaskType = "testing"
	TaskAnalysis       TaskType = "analysis"
	TaskCreative       TaskType = "creative"
	TaskReasoning      TaskType = "reasoning"
)

// Priority is advisory; it influences model-tier selection but not
// scoring weights.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Constraints are the hard limits a caller may place on routing.
// Zero values mean "unset".
type Constraints struct {
	MaxTokens              int      `json:"max_tokens,omitempty"`
	MaxCostUSD             float64  `json:"max_cost_usd,omitempty"`
	MaxLatencyMS           int      `json:"max_latency_ms,omitempty"`
	IncludeProviders       []string `json:"include_providers,omitempty"`
	ExcludeProviders       []string `json:"exclude_providers,omitempty"`
	RequireStreaming       bool     `json:"require_streaming,omitempty"`
	RequireFunctionCalling bool     `json:"require_function_calling,omitempty"`
}

// Request is a single generative task submitted for routing. Immutable
// once submitted.
type Request struct {
	ID       string   `json:"id"`
	UserID   string   `json:"user_id"`
	OrgID    string   `json:"org_id"`
	Task     TaskType `json:"task"`
	Priority Priority `json:"priority"`

	Prompt    string   `json:"prompt"`
	Context   string   `json:"context,omitempty"`
	Files     []string `json:"files,omitempty"`
	Language  string   `json:"language,omitempty"`
	Framework string   `json:"framework,omitempty"`

	Constraints Constraints       `json:"constraints"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
