package store

import (
	"context"
	"fmt"

	"github.com/abhisek/lexiscreen/internal/record"
)

// Mirror is a ResultRepo that writes to a primary and a secondary repo and
// reads from the primary only.
type Mirror struct {
	Primary   ResultRepo
	Secondary ResultRepo
}

func (m *Mirror) Save(ctx context.Context, rec *record.Record) error {
	if err := m.Primary.Save(ctx, rec); err != nil {
		return err
	}
	if err := m.Secondary.Save(ctx, rec); err != nil {
		return fmt.Errorf("mirror: %w", err)
	}
	return nil
}

func (m *Mirror) Latest(ctx context.Context, test string) (*record.Record, error) {
	return m.Primary.Latest(ctx, test)
}

func (m *Mirror) List(ctx context.Context, opts QueryOpts) ([]*record.Record, error) {
	return m.Primary.List(ctx, opts)
}

func (m *Mirror) Prune(ctx context.Context, keep int) error {
	if err := m.Primary.Prune(ctx, keep); err != nil {
		return err
	}
	if err := m.Secondary.Prune(ctx, keep); err != nil {
		return fmt.Errorf("mirror: %w", err)
	}
	return nil
}

func (m *Mirror) Clear(ctx context.Context) (int64, error) {
	n, err := m.Primary.Clear(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := m.Secondary.Clear(ctx); err != nil {
		return n, fmt.Errorf("mirror: %w", err)
	}
	return n, nil
}
