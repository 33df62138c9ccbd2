package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo on the phase_events table.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *eventRepo) AppendPhaseEvent(ctx context.Context, data PhaseEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	at := data.At
	if at.IsZero() {
		at = time.Now()
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tablePhaseEvents).
		Columns("sequence", "session_id", "test", "phase", "question_index", "at").
		Values(seqNum, data.SessionID, data.Test, data.Phase, data.QuestionIndex, at.UnixNano()).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save phase event: %w", err)
	}
	return nil
}

func (r *eventRepo) SessionEvents(ctx context.Context, sessionID string) ([]PhaseEvent, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("sequence", "session_id", "test", "phase", "question_index", "at").
		From(entsql.Table(tablePhaseEvents)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("sequence").
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query phase events: %w", err)
	}
	defer rows.Close()

	var out []PhaseEvent
	for rows.Next() {
		var (
			ev PhaseEvent
			at int64
		)
		if err := rows.Scan(&ev.Sequence, &ev.SessionID, &ev.Test, &ev.Phase, &ev.QuestionIndex, &at); err != nil {
			return nil, fmt.Errorf("scan phase event: %w", err)
		}
		ev.At = time.Unix(0, at).UTC()
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate phase events: %w", err)
	}
	return out, nil
}
