package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // LLM events only; empty matches all
	RunID   string    // empty matches all
	ItemID  string    // empty matches all
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	RunID        string // empty outside a solve
	ItemID       string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// ItemUsage aggregates token usage of one model for one item within a run.
type ItemUsage struct {
	RunID        string
	ItemID       string
	Model        string
	Calls        int
	Failed       int
	InputTokens  int
	OutputTokens int
}

// SolveOutcomeData records how one graded item ended.
type SolveOutcomeData struct {
	RunID       string
	CourseID    string
	ItemID      string
	Strategy    string
	Status      string
	EarnedGrade *float64 // nil unless a grade was observed
	Passed      bool
	Answered    int
	Detail      string
}

// SolveOutcome is a stored solve event.
type SolveOutcome struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	SolveOutcomeData
}

// EventRepo provides append and query access to the event log.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event by ID, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates calls and tokens per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates calls and tokens per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)

	// LLMUsageByItem aggregates calls and tokens per run, item and model,
	// newest run first. Calls made outside a solve are excluded.
	LLMUsageByItem(ctx context.Context, opts QueryOpts) ([]ItemUsage, error)

	// AppendSolveOutcome records the result of one solve.
	AppendSolveOutcome(ctx context.Context, data SolveOutcomeData) error

	// QuerySolveOutcomes returns solve events, newest first.
	QuerySolveOutcomes(ctx context.Context, opts QueryOpts) ([]SolveOutcome, error)
}
