package result

import (
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lexiscreen/internal/record"
	"github.com/abhisek/lexiscreen/internal/report"
	"github.com/abhisek/lexiscreen/internal/risk"
	"github.com/abhisek/lexiscreen/internal/router"
)

func sample() *record.Record {
	return &record.Record{
		ID:      "r1",
		Test:    "spelling",
		Title:   "Spelling",
		AgeBand: "standard",
		TakenAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Assessment: risk.Assessment{
			AccuracyPercent:  40,
			TimeScorePercent: 100,
			RiskFactors:      []string{risk.FactorLowAccuracy},
			RiskLevel:        risk.Moderate,
			CorrectAnswers:   2,
			TotalQuestions:   5,
		},
	}
}

func TestView(t *testing.T) {
	s := New(sample(), "")
	assert.Equal(t, "Spelling", s.Title())

	out := ansi.Strip(s.View(100, 200))
	assert.Contains(t, out, "Moderate Signs of Reading Difficulties")
	assert.Contains(t, out, risk.FactorLowAccuracy)
}

func TestView_Empty(t *testing.T) {
	s := New(nil, "")
	assert.Equal(t, "Results", s.Title())
	assert.Contains(t, ansi.Strip(s.View(80, 20)), report.NoResults)
}

func TestView_Warning(t *testing.T) {
	s := New(sample(), "result could not be saved")
	assert.Contains(t, ansi.Strip(s.View(100, 200)), "result could not be saved")
}

func TestScrollClamped(t *testing.T) {
	s := New(sample(), "")
	for i := 0; i < 500; i++ {
		s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	s.View(100, 10)
	assert.Less(t, s.offset, 500)

	for i := 0; i < 600; i++ {
		s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	}
	assert.Equal(t, 0, s.offset)
}

func TestEnterPops(t *testing.T) {
	s := New(sample(), "")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())
}

func TestHomeKeyPopsToRoot(t *testing.T) {
	s := New(sample(), "")
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'h', Text: "h"})
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopToRootMsg{}, cmd())
}
