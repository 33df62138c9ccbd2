package store

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/lexiscreen/internal/record"
)

// QueryOpts configures result queries with filtering and pagination.
type QueryOpts struct {
	Test  string    // only results of this battery ("" = all)
	Limit int       // max results (0 = unlimited)
	After int64     // sequence > After
	From  time.Time // taken at >= From
	To    time.Time // taken at <= To
}

// ResultRepo stores completed test results. Reads return the newest first.
type ResultRepo interface {
	// Save stores a result record.
	Save(ctx context.Context, r *record.Record) error

	// Latest returns the most recent result, optionally limited to one test.
	// It returns nil when no result exists. Stored data that cannot be
	// decoded fails with record.ErrMalformed.
	Latest(ctx context.Context, test string) (*record.Record, error)

	// List returns results matching opts. Rows that cannot be decoded are
	// skipped; the readable records are returned together with an error
	// wrapping record.ErrMalformed.
	List(ctx context.Context, opts QueryOpts) ([]*record.Record, error)

	// Prune deletes all but the N most recent results. keep <= 0 deletes
	// every result.
	Prune(ctx context.Context, keep int) error

	// Clear deletes every result and returns how many were removed.
	Clear(ctx context.Context) (int64, error)
}

// PhaseEventData captures one session phase change.
type PhaseEventData struct {
	SessionID     string
	Test          string
	Phase         string
	QuestionIndex int
	At            time.Time
}

// PhaseEvent is a stored phase change with its global sequence number.
type PhaseEvent struct {
	Sequence int64
	PhaseEventData
}

// EventRepo provides append access to session phase events.
type EventRepo interface {
	// AppendPhaseEvent records a phase change.
	AppendPhaseEvent(ctx context.Context, data PhaseEventData) error

	// SessionEvents returns the phase changes of one session in order.
	SessionEvents(ctx context.Context, sessionID string) ([]PhaseEvent, error)
}

// skipped counts undecodable records seen by List.
type skipped struct {
	n     int
	first error
}

func (s *skipped) add(err error) {
	if s.n == 0 {
		s.first = err
	}
	s.n++
}

// err returns nil when nothing was skipped.
func (s *skipped) err() error {
	if s.n == 0 {
		return nil
	}
	return fmt.Errorf("skipped %d unreadable results: %w", s.n, s.first)
}
