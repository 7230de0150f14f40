package assessment

import (
	"errors"

	"go.uber.org/zap"

	"github.com/skipera/skipera/internal/store"
)

// Status is the terminal state of one Solve.
type Status string

const (
	StatusPassed            Status = "passed"
	StatusFailed            Status = "failed"
	StatusGradeTimeout      Status = "grade_timeout"
	StatusAlreadyPassed     Status = "already_passed"
	StatusNoAttempts        Status = "no_attempts"
	StatusUnavailable       Status = "unavailable"
	StatusStartFailed       Status = "start_failed"
	StatusOracleFailed      Status = "oracle_failed"
	StatusSaveFailed        Status = "save_failed"
	StatusSubmitFailed      Status = "submit_failed"
	StatusUnsupportedAction Status = "unsupported_action"
	StatusNoActiveAttempt   Status = "no_active_attempt"
	StatusCanceled          Status = "canceled"
	StatusError             Status = "error"
)

// Result is what one Solve observed.
type Result struct {
	RunID    string
	Ref      Ref
	Strategy Strategy
	Status   Status
	Outcome  *Outcome // set once a grade was seen
	Answered int      // oracle answers saved
	Err      error
}

// Submitted reports whether the attempt reached submission.
func (r *Result) Submitted() bool {
	switch r.Status {
	case StatusPassed, StatusFailed, StatusGradeTimeout:
		return true
	}
	return false
}

// Skipped reports an expected no-op: nothing to do or nothing solvable.
func (r *Result) Skipped() bool {
	switch r.Status {
	case StatusAlreadyPassed, StatusNoAttempts:
		return true
	case StatusUnavailable:
		return !errors.Is(r.Err, errMidAttempt)
	}
	return false
}

func (r *Result) record() store.SolveOutcomeData {
	data := store.SolveOutcomeData{
		RunID:    r.RunID,
		CourseID: r.Ref.CourseID,
		ItemID:   r.Ref.ItemID,
		Strategy: string(r.Strategy),
		Status:   string(r.Status),
		Answered: r.Answered,
	}
	if r.Outcome != nil {
		grade := r.Outcome.EarnedGrade
		data.EarnedGrade = &grade
		data.Passed = r.Outcome.IsPassed
	}
	if r.Err != nil {
		data.Detail = r.Err.Error()
	}
	return data
}

// report logs res at a level matching how surprising it is.
func (r *run) report(res *Result) {
	fields := []zap.Field{zap.String("status", string(res.Status)), zap.Int("answered", res.Answered)}
	if res.Outcome != nil {
		fields = append(fields, zap.Float64("earned_grade", res.Outcome.EarnedGrade))
	}

	switch res.Status {
	case StatusPassed:
		r.log.Info("assignment passed", fields...)
	case StatusAlreadyPassed:
		r.log.Info("assignment already passed", fields...)
	case StatusFailed:
		r.log.Warn("assignment not passed; a stronger model may help", fields...)
	case StatusGradeTimeout:
		r.log.Warn("timed out waiting for grading results", fields...)
	case StatusNoAttempts:
		r.log.Warn("no attempts remaining", fields...)
	case StatusUnavailable:
		fields = append(fields, zap.Error(res.Err))
		if errors.Is(res.Err, errMidAttempt) {
			r.log.Error("lost attempt state mid-attempt, aborting", fields...)
			return
		}
		r.log.Warn("no valid attempt state; ungraded, survey or inaccessible item, skipping", fields...)
	case StatusUnsupportedAction:
		r.log.Error("unsupported action, needs investigation", append(fields, zap.Error(res.Err))...)
	default:
		fields = append(fields, zap.Error(res.Err))
		var rej *RejectedError
		if errors.As(res.Err, &rej) {
			fields = append(fields, zap.Any("payload", rej.Payload), zap.String("server_response", rej.Body))
		}
		r.log.Error("solve aborted", fields...)
	}
}
