package home

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lexiscreen/internal/assessment"
	"github.com/abhisek/lexiscreen/internal/battery"
	"github.com/abhisek/lexiscreen/internal/record"
	"github.com/abhisek/lexiscreen/internal/risk"
	"github.com/abhisek/lexiscreen/internal/router"
	"github.com/abhisek/lexiscreen/internal/screens"
	"github.com/abhisek/lexiscreen/internal/screens/catalog"
	"github.com/abhisek/lexiscreen/internal/screens/result"
	"github.com/abhisek/lexiscreen/internal/store"
)

type latestRepo struct {
	rec *record.Record
	err error
}

func (r *latestRepo) Save(context.Context, *record.Record) error { return nil }
func (r *latestRepo) Latest(context.Context, string) (*record.Record, error) {
	return r.rec, r.err
}
func (r *latestRepo) List(context.Context, store.QueryOpts) ([]*record.Record, error) {
	return nil, nil
}
func (r *latestRepo) Prune(context.Context, int) error     { return nil }
func (r *latestRepo) Clear(context.Context) (int64, error) { return 0, nil }

func registry(t *testing.T) *battery.Registry {
	t.Helper()
	reg, err := battery.NewRegistry(&battery.Battery{
		ID:     "spelling",
		Family: battery.FamilySpelling,
		Title:  "Spelling",
		Questions: []assessment.Question{{
			Kind:       assessment.KindSpellingBlank,
			Prompt:     "Spell the word",
			AnswerText: "cat",
			Difficulty: assessment.DifficultyEasy,
		}},
	})
	require.NoError(t, err)
	return reg
}

func newHome(t *testing.T, repo *latestRepo) *HomeScreen {
	t.Helper()
	h := New(screens.Deps{Tests: registry(t), Results: repo})
	cmd := h.Init()
	require.NotNil(t, cmd)
	h.Update(cmd())
	return h
}

func enter(h *HomeScreen) tea.Msg {
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestHomeScreen_NoResultsDisablesLatest(t *testing.T) {
	h := newHome(t, &latestRepo{})

	assert.True(t, h.menu.Items[itemLatest].Disabled)
	assert.Contains(t, h.View(100, 30), "No results yet")

	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, itemHistory, h.menu.Selected)
}

func TestHomeScreen_TakeOpensCatalog(t *testing.T) {
	h := newHome(t, &latestRepo{})

	push, ok := enter(h).(router.PushScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &catalog.CatalogScreen{}, push.Screen)
}

func TestHomeScreen_LatestResult(t *testing.T) {
	repo := &latestRepo{rec: &record.Record{
		ID:      "r1",
		Test:    "spelling",
		Title:   "Spelling",
		TakenAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Assessment: risk.Assessment{
			AccuracyPercent: 40,
			RiskLevel:       risk.High,
		},
	}}
	h := newHome(t, repo)

	view := h.View(100, 30)
	assert.Contains(t, view, "High risk")
	assert.Contains(t, view, "40% accuracy")

	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, itemLatest, h.menu.Selected)
	push, ok := enter(h).(router.PushScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &result.ResultScreen{}, push.Screen)
}

func TestHomeScreen_ResumeReloads(t *testing.T) {
	repo := &latestRepo{}
	h := newHome(t, repo)
	require.Nil(t, h.latest)

	repo.rec = &record.Record{ID: "r2", Title: "Spelling"}
	cmd := h.Resume()
	require.NotNil(t, cmd)
	h.Update(cmd())
	assert.NotNil(t, h.latest)
	assert.False(t, h.menu.Items[itemLatest].Disabled)
}

func TestHomeScreen_MalformedLatestIsIgnored(t *testing.T) {
	h := newHome(t, &latestRepo{err: fmt.Errorf("decode: %w", record.ErrMalformed)})
	assert.Nil(t, h.latest)
	assert.Empty(t, h.errMsg)
	assert.Contains(t, h.View(100, 30), "No results yet")
}

func TestHomeScreen_QuitItem(t *testing.T) {
	h := newHome(t, &latestRepo{})
	h.menu.Selected = itemQuit
	_, ok := enter(h).(tea.QuitMsg)
	assert.True(t, ok)
}
