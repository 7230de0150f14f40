package llm

import "context"

type contextKey string

const (
	purposeKey contextKey = "llm_purpose"
	runKey     contextKey = "llm_run"
	itemKey    contextKey = "llm_item"
)

// PurposeAnswer labels oracle calls that answer assessment questions.
const PurposeAnswer = "answer"

// WithPurpose labels the request for the event log.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// WithItem attributes the request to a solver run and the item it was
// answering, so usage can be costed per item.
func WithItem(ctx context.Context, runID, itemID string) context.Context {
	ctx = context.WithValue(ctx, runKey, runID)
	return context.WithValue(ctx, itemKey, itemID)
}

// ItemFrom returns the run and item set by WithItem. Both are empty when
// the request was not made for an item.
func ItemFrom(ctx context.Context) (runID, itemID string) {
	runID, _ = ctx.Value(runKey).(string)
	itemID, _ = ctx.Value(itemKey).(string)
	return runID, itemID
}
