package assessment

import (
	"errors"
	"fmt"
)

var (
	// ErrStateUnavailable means the item has no readable attempt state:
	// a transport or parse failure, or a survey or inaccessible item.
	ErrStateUnavailable = errors.New("attempt state unavailable")

	ErrAttemptStart      = errors.New("attempt could not be started")
	ErrSaveRejected      = errors.New("responses were not saved")
	ErrSubmitRejected    = errors.New("draft was not submitted")
	ErrUnsupportedAction = errors.New("unsupported allowed action")
	ErrNoActiveAttempt   = errors.New("no attempt in progress")
	ErrOracle            = errors.New("oracle produced no usable answers")

	// errMidAttempt marks a state read that failed after the item was
	// already being worked on.
	errMidAttempt = errors.New("state lost mid-attempt")
)

func midAttempt(err error) error {
	return fmt.Errorf("%w: %w", errMidAttempt, err)
}

// RejectedError is a call the platform answered without its success marker.
type RejectedError struct {
	Op      string
	Payload any
	Body    string
	kind    error
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s rejected", e.kind, e.Op)
}

func (e *RejectedError) Unwrap() error {
	return e.kind
}
