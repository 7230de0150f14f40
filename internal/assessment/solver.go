package assessment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skipera/skipera/internal/oracle"
	"github.com/skipera/skipera/internal/store"
)

// Strategy selects how questions are fed to the oracle.
type Strategy string

const (
	// StrategySequential answers one question per save and re-reads state
	// between saves.
	StrategySequential Strategy = "sequential"
	// StrategySinglePage answers every open question in one oracle call and
	// one save.
	StrategySinglePage Strategy = "single_page"
)

// Oracle answers formatted questions keyed by question id.
type Oracle interface {
	Answer(ctx context.Context, questions map[string]oracle.Question) ([]oracle.Answer, error)
}

// OutcomeRecorder persists solve results.
type OutcomeRecorder interface {
	AppendSolveOutcome(ctx context.Context, data store.SolveOutcomeData) error
}

// Options is the solver policy.
type Options struct {
	Strategy      Strategy
	StartDelay    time.Duration
	SaveDelay     time.Duration
	GradeAttempts int
	GradeInterval time.Duration
	// RunID groups the results of one invocation. Generated when empty.
	RunID string
}

// DefaultOptions mirrors the platform's observed timing.
func DefaultOptions() Options {
	return Options{
		Strategy:      StrategySequential,
		StartDelay:    2 * time.Second,
		SaveDelay:     2 * time.Second,
		GradeAttempts: 6,
		GradeInterval: 5 * time.Second,
	}
}

// Solver drives graded items from their current state to a grade.
type Solver struct {
	api      API
	oracle   Oracle
	opts     Options
	recorder OutcomeRecorder
	logger   *zap.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewSolver returns a Solver. recorder may be nil.
func NewSolver(api API, o Oracle, opts Options, recorder OutcomeRecorder, logger *zap.Logger) *Solver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategySequential
	}
	if opts.GradeAttempts <= 0 {
		opts.GradeAttempts = 1
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	return &Solver{
		api:      api,
		oracle:   o,
		opts:     opts,
		recorder: recorder,
		logger:   logger.Named("solver"),
		sleep:    sleepCtx,
	}
}

// RunID identifies this solver's results.
func (s *Solver) RunID() string { return s.opts.RunID }

// Solve runs one item to a terminal status. Every failure is contained in
// the Result; the error is non-nil only when ctx ends.
func (s *Solver) Solve(ctx context.Context, ref Ref) (*Result, error) {
	r := newRun(s, ref)
	res := &Result{RunID: s.opts.RunID, Ref: ref, Strategy: s.opts.Strategy}

	status, outcome, err := r.solve(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		res.Status = StatusCanceled
		res.Answered = r.answered
		res.Err = ctxErr
		return res, ctxErr
	}

	res.Status = status
	res.Outcome = outcome
	res.Answered = r.answered
	res.Err = err
	r.report(res)
	s.record(ctx, res)
	return res, nil
}

func (s *Solver) record(ctx context.Context, res *Result) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.AppendSolveOutcome(context.WithoutCancel(ctx), res.record()); err != nil {
		s.logger.Warn("failed to record solve outcome", zap.String("item_id", res.Ref.ItemID), zap.Error(err))
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// run is the state of one Solve call.
type run struct {
	s        *Solver
	ref      Ref
	log      *zap.Logger
	cache    map[string]classification
	unknown  map[string]bool
	saved    map[string]bool
	answered int
}

func newRun(s *Solver, ref Ref) *run {
	return &run{
		s:   s,
		ref: ref,
		log: s.logger.With(
			zap.String("run_id", s.opts.RunID),
			zap.String("course_id", ref.CourseID),
			zap.String("item_id", ref.ItemID),
		),
		cache:   make(map[string]classification),
		unknown: make(map[string]bool),
		saved:   make(map[string]bool),
	}
}

func (r *run) solve(ctx context.Context) (Status, *Outcome, error) {
	state, err := r.s.api.QueryState(ctx, r.ref)
	if err != nil {
		return StatusUnavailable, nil, err
	}

	switch state.AllowedAction {
	case ActionResumeDraft:
		r.log.Info("attempt already in progress, resuming")

	case ActionStartNewAttempt:
		if state.Outcome != nil && state.Outcome.IsPassed {
			return StatusAlreadyPassed, state.Outcome, nil
		}
		if state.Attempts != nil && state.Attempts.AttemptsRemaining != nil && *state.Attempts.AttemptsRemaining == 0 {
			return StatusNoAttempts, state.Outcome, nil
		}
		if err := r.s.api.StartAttempt(ctx, r.ref); err != nil {
			return StatusStartFailed, nil, err
		}
		r.log.Info("new attempt started")
		if err := r.s.sleep(ctx, r.s.opts.StartDelay); err != nil {
			return StatusCanceled, nil, err
		}
		state, err = r.s.api.QueryState(ctx, r.ref)
		if err != nil {
			return StatusUnavailable, nil, midAttempt(err)
		}

	default:
		return StatusUnsupportedAction, nil, &unsupportedActionError{action: state.AllowedAction}
	}

	var draft *Draft
	if r.s.opts.Strategy == StrategySinglePage {
		draft, err = r.singlePage(ctx, state)
	} else {
		draft, err = r.sequential(ctx, state)
	}
	if err != nil {
		return statusFor(err), nil, err
	}

	if err := r.s.api.SubmitDraft(ctx, r.ref, draft.SubmissionID()); err != nil {
		return StatusSubmitFailed, nil, err
	}
	r.log.Info("draft submitted, waiting for grade")

	outcome, err := r.pollGrade(ctx)
	if err != nil {
		return StatusCanceled, nil, err
	}
	if outcome == nil {
		return StatusGradeTimeout, nil, nil
	}
	if outcome.IsPassed {
		return StatusPassed, outcome, nil
	}
	return StatusFailed, outcome, nil
}

type unsupportedActionError struct {
	action Action
}

func (e *unsupportedActionError) Error() string {
	return ErrUnsupportedAction.Error() + ": " + string(e.action)
}

func (e *unsupportedActionError) Unwrap() error { return ErrUnsupportedAction }

func statusFor(err error) Status {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCanceled
	case errors.Is(err, ErrOracle):
		return StatusOracleFailed
	case errors.Is(err, ErrSaveRejected):
		return StatusSaveFailed
	case errors.Is(err, ErrSubmitRejected):
		return StatusSubmitFailed
	case errors.Is(err, ErrNoActiveAttempt):
		return StatusNoActiveAttempt
	case errors.Is(err, ErrStateUnavailable):
		return StatusUnavailable
	case errors.Is(err, ErrAttemptStart):
		return StatusStartFailed
	case errors.Is(err, ErrUnsupportedAction):
		return StatusUnsupportedAction
	}
	return StatusError
}
