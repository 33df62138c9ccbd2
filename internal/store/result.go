package store

import (
	"context"
	stdsql "database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/abhisek/lexiscreen/internal/record"
)

// resultRepo implements ResultRepo on the SQLite results table. Each row
// keeps the full record JSON alongside the columns used for filtering.
type resultRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *resultRepo) Save(ctx context.Context, rec *record.Record) error {
	data, err := record.Encode(rec)
	if err != nil {
		return err
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableResults).
		Columns("id", "sequence", "test", "risk_level", "taken_at", "data").
		Values(rec.ID, seqNum, rec.Test, rec.RiskLevel.String(), rec.TakenAt.UnixNano(), string(data)).
		Query()

	var res stdsql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (r *resultRepo) Latest(ctx context.Context, test string) (*record.Record, error) {
	recs, err := r.List(ctx, QueryOpts{Test: test, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

func (r *resultRepo) List(ctx context.Context, opts QueryOpts) ([]*record.Record, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select("data").
		From(entsql.Table(tableResults)).
		OrderBy(entsql.Desc("sequence"))

	if opts.Test != "" {
		sel.Where(entsql.EQ("test", opts.Test))
	}
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("taken_at", opts.From.UnixNano()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("taken_at", opts.To.UnixNano()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var (
		out []*record.Record
		bad skipped
	)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		rec, err := record.Decode([]byte(data))
		if err != nil {
			bad.add(err)
			continue
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, bad.err()
}

func (r *resultRepo) Prune(ctx context.Context, keep int) error {
	keep = max(keep, 0)

	// Find the sequence of the oldest result to keep.
	query, args := entsql.Dialect(dialect.SQLite).
		Select("sequence").
		From(entsql.Table(tableResults)).
		OrderBy(entsql.Desc("sequence")).
		Offset(keep).
		Limit(1).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return fmt.Errorf("query results for prune: %w", err)
	}
	var threshold int64
	found := rows.Next()
	if found {
		if err := rows.Scan(&threshold); err != nil {
			rows.Close()
			return fmt.Errorf("scan prune threshold: %w", err)
		}
	}
	rows.Close()
	if !found {
		return nil // fewer than keep results exist
	}

	query, args = entsql.Dialect(dialect.SQLite).
		Delete(tableResults).
		Where(entsql.LTE("sequence", threshold)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("prune results: %w", err)
	}
	return nil
}

func (r *resultRepo) Clear(ctx context.Context) (int64, error) {
	query, args := entsql.Dialect(dialect.SQLite).Delete(tableResults).Query()

	var res stdsql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, fmt.Errorf("clear results: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear results: %w", err)
	}
	return n, nil
}
