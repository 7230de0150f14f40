package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

func (r *eventRepo) AppendSolveOutcome(ctx context.Context, data SolveOutcomeData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	var grade sql.NullFloat64
	if data.EarnedGrade != nil {
		grade = sql.NullFloat64{Float64: *data.EarnedGrade, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO solve_events
		(sequence, created_at, run_id, course_id, item_id, strategy, status,
		 earned_grade, passed, answered, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, now(), data.RunID, data.CourseID, data.ItemID, data.Strategy, data.Status,
		grade, data.Passed, data.Answered, data.Detail,
	)
	if err != nil {
		return fmt.Errorf("save solve event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySolveOutcomes(ctx context.Context, opts QueryOpts) ([]SolveOutcome, error) {
	where, args := whereClause(opts, map[string]string{"item_id": opts.ItemID})
	rows, err := r.db.QueryContext(ctx, `SELECT id, sequence, created_at, run_id, course_id, item_id,
		strategy, status, earned_grade, passed, answered, detail
		FROM solve_events`+where+" ORDER BY sequence DESC"+limitClause(opts.Limit),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query solve events: %w", err)
	}
	defer rows.Close()

	var out []SolveOutcome
	for rows.Next() {
		var (
			o     SolveOutcome
			ts    int64
			grade sql.NullFloat64
		)
		if err := rows.Scan(&o.ID, &o.Sequence, &ts, &o.RunID, &o.CourseID, &o.ItemID,
			&o.Strategy, &o.Status, &grade, &o.Passed, &o.Answered, &o.Detail); err != nil {
			return nil, fmt.Errorf("scan solve event: %w", err)
		}
		o.Timestamp = time.UnixMilli(ts).UTC()
		if grade.Valid {
			g := grade.Float64
			o.EarnedGrade = &g
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
