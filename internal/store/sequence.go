package store

import (
	"context"
	"fmt"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const tableSequence = "global_sequence"

// sequenceCounter hands out one increasing number shared by stored results
// and phase events, so rows from both tables can be ordered against each
// other regardless of wall-clock timestamps.
//
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu  sync.Mutex
	drv *entsql.Driver
}

// Next returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	rows := &entsql.Rows{}
	err := sc.drv.Query(ctx,
		`UPDATE `+tableSequence+` SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
		[]any{}, rows)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer rows.Close()

	seq, err := entsql.ScanInt64(rows)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// Current returns the last number handed out, or 0 when none was.
func (sc *sequenceCounter) Current(ctx context.Context) (int64, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("next_val").
		From(entsql.Table(tableSequence)).
		Where(entsql.EQ("id", 1)).
		Query()

	rows := &entsql.Rows{}
	if err := sc.drv.Query(ctx, query, args, rows); err != nil {
		return 0, fmt.Errorf("current sequence: %w", err)
	}
	defer rows.Close()

	next, err := entsql.ScanInt64(rows)
	if err != nil {
		return 0, fmt.Errorf("current sequence: %w", err)
	}
	return next - 1, nil
}
