package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lexiscreen/internal/record"
	"github.com/abhisek/lexiscreen/internal/report"
	"github.com/abhisek/lexiscreen/internal/risk"
	"github.com/abhisek/lexiscreen/internal/router"
	"github.com/abhisek/lexiscreen/internal/screens"
	"github.com/abhisek/lexiscreen/internal/screens/result"
	"github.com/abhisek/lexiscreen/internal/store"
)

type listRepo struct {
	recs  []*record.Record
	err   error
	limit int
}

func (r *listRepo) Save(context.Context, *record.Record) error              { return nil }
func (r *listRepo) Latest(context.Context, string) (*record.Record, error) { return nil, nil }
func (r *listRepo) List(_ context.Context, opts store.QueryOpts) ([]*record.Record, error) {
	r.limit = opts.Limit
	return r.recs, r.err
}
func (r *listRepo) Prune(context.Context, int) error     { return nil }
func (r *listRepo) Clear(context.Context) (int64, error) { return 0, nil }

func sampleRecords(n int) []*record.Record {
	var out []*record.Record
	for i := range n {
		out = append(out, &record.Record{
			ID:      fmt.Sprintf("r%d", i),
			Test:    "reading",
			Title:   "Reading Comprehension",
			TakenAt: time.Date(2026, 3, 1+i, 9, 0, 0, 0, time.UTC),
			Assessment: risk.Assessment{
				AccuracyPercent: 75,
				RiskLevel:       risk.Moderate,
			},
		})
	}
	return out
}

func load(t *testing.T, repo *listRepo) *HistoryScreen {
	t.Helper()
	s := New(screens.Deps{Results: repo})
	cmd := s.Init()
	require.NotNil(t, cmd)
	s.Update(cmd())
	return s
}

func TestHistoryScreen_ListsResults(t *testing.T) {
	repo := &listRepo{recs: sampleRecords(2)}
	s := load(t, repo)

	assert.Equal(t, Limit, repo.limit)
	view := s.View(100, 30)
	assert.Contains(t, view, "Reading Comprehension")
	assert.Contains(t, view, "Moderate")
	assert.Contains(t, view, "75.0% accuracy")
}

func TestHistoryScreen_EnterOpensSelected(t *testing.T) {
	s := load(t, &listRepo{recs: sampleRecords(3)})

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 2, s.selected)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &result.ResultScreen{}, push.Screen)
}

func TestHistoryScreen_Empty(t *testing.T) {
	s := load(t, &listRepo{})
	assert.Contains(t, s.View(100, 30), report.NoResults)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestHistoryScreen_MalformedShowsEmpty(t *testing.T) {
	s := load(t, &listRepo{err: fmt.Errorf("decode: %w", record.ErrMalformed)})
	assert.Empty(t, s.errMsg)
	assert.Contains(t, s.View(100, 30), report.NoResults)
}

func TestHistoryScreen_MalformedKeepsReadable(t *testing.T) {
	s := load(t, &listRepo{
		recs: sampleRecords(2),
		err:  fmt.Errorf("skipped 1 unreadable results: %w", record.ErrMalformed),
	})
	assert.Empty(t, s.errMsg)
	view := s.View(100, 30)
	assert.Contains(t, view, "Reading Comprehension")
	assert.NotContains(t, view, report.NoResults)
}

func TestHistoryScreen_Error(t *testing.T) {
	s := load(t, &listRepo{err: errors.New("database is locked")})
	assert.Contains(t, s.View(100, 30), "database is locked")
}

func TestHistoryScreen_EscPops(t *testing.T) {
	s := load(t, &listRepo{})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)
}
