package assessment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/skipera/skipera/internal/llm"
)

// sequential answers one question per iteration. The platform exposes the
// next question only after a save, so state is re-read every iteration
// after the first.
func (r *run) sequential(ctx context.Context, state *AttemptState) (*Draft, error) {
	for iter := 0; ; iter++ {
		if iter > 0 {
			var err error
			state, err = r.s.api.QueryState(ctx, r.ref)
			if err != nil {
				return nil, midAttempt(err)
			}
		}

		draft := state.ActiveDraft()
		if draft == nil {
			return nil, ErrNoActiveAttempt
		}

		p := r.classify(draft.Parts(), 1)
		if len(p.order) == 0 {
			r.log.Info("all solvable questions answered, submitting")
			return draft, nil
		}

		target := p.order[0]
		if r.saved[target] {
			return nil, fmt.Errorf("%w: question %s still unanswered after save", ErrSaveRejected, target)
		}
		if err := r.solveAndSave(ctx, draft, p); err != nil {
			return nil, err
		}
		r.saved[target] = true
		r.log.Info("answered and saved question", zap.String("question_id", target))

		if err := r.s.sleep(ctx, r.s.opts.SaveDelay); err != nil {
			return nil, err
		}
	}
}

// singlePage answers every open question with one oracle call and one save.
func (r *run) singlePage(ctx context.Context, state *AttemptState) (*Draft, error) {
	draft := state.ActiveDraft()
	if draft == nil {
		return nil, ErrNoActiveAttempt
	}

	p := r.classify(draft.Parts(), 0)
	if len(p.order) == 0 {
		r.log.Info("all solvable questions answered, submitting")
		return draft, nil
	}

	r.log.Info("sending unanswered questions in one batch", zap.Int("questions", len(p.order)))
	if err := r.solveAndSave(ctx, draft, p); err != nil {
		return nil, err
	}
	r.log.Info("all answers saved")
	return draft, nil
}

func (r *run) solveAndSave(ctx context.Context, draft *Draft, p plan) error {
	answers, err := r.s.oracle.Answer(llm.WithItem(ctx, r.s.opts.RunID, r.ref.ItemID), p.targets)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", ErrOracle, err)
	}

	fresh := r.merge(answers, p.targets)
	if len(fresh) == 0 {
		return fmt.Errorf("%w: no answer fit its question", ErrOracle)
	}

	payload := make([]ResponsePayload, 0, len(fresh)+len(p.others))
	payload = append(payload, fresh...)
	payload = append(payload, p.others...)

	if err := r.s.api.SaveResponses(ctx, r.ref, draft.ID, payload); err != nil {
		return err
	}
	r.answered += len(fresh)
	return nil
}
