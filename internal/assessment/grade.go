package assessment

import (
	"context"

	"go.uber.org/zap"
)

// pollGrade asks for the outcome up to GradeAttempts times, GradeInterval
// apart. A nil outcome with a nil error means grading did not finish in
// time. Failed reads count as pending.
func (r *run) pollGrade(ctx context.Context) (*Outcome, error) {
	attempts := r.s.opts.GradeAttempts
	for i := 1; i <= attempts; i++ {
		outcome, err := r.s.api.Grade(ctx, r.ref)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.log.Debug("grade check failed", zap.Int("attempt", i), zap.Error(err))
		case outcome != nil:
			return outcome, nil
		}

		if i == attempts {
			break
		}
		r.log.Debug("grading not ready",
			zap.Int("attempt", i),
			zap.Int("of", attempts),
			zap.Duration("retry_in", r.s.opts.GradeInterval))
		if err := r.s.sleep(ctx, r.s.opts.GradeInterval); err != nil {
			return nil, err
		}
	}
	return nil, nil
}
