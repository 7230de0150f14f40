package assessment

import "context"

// API is the remote attempt state service.
type API interface {
	// QueryState fails with ErrStateUnavailable when no state can be read.
	QueryState(ctx context.Context, ref Ref) (*AttemptState, error)

	// StartAttempt fails with ErrAttemptStart without the success marker.
	StartAttempt(ctx context.Context, ref Ref) error

	// SaveResponses stores responses on the attempt. An empty list succeeds
	// without a call.
	SaveResponses(ctx context.Context, ref Ref, attemptID string, responses []ResponsePayload) error

	// SubmitDraft submits the latest draft for grading.
	SubmitDraft(ctx context.Context, ref Ref, submissionID string) error

	// Grade returns the outcome, or nil while grading is pending.
	Grade(ctx context.Context, ref Ref) (*Outcome, error)
}
