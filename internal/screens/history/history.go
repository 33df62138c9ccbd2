package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lexiscreen/internal/record"
	"github.com/abhisek/lexiscreen/internal/report"
	"github.com/abhisek/lexiscreen/internal/router"
	"github.com/abhisek/lexiscreen/internal/screen"
	"github.com/abhisek/lexiscreen/internal/screens"
	"github.com/abhisek/lexiscreen/internal/screens/result"
	"github.com/abhisek/lexiscreen/internal/store"
	"github.com/abhisek/lexiscreen/internal/ui/layout"
	"github.com/abhisek/lexiscreen/internal/ui/theme"
)

// Limit is the number of past results listed.
const Limit = 50

type historyLoadedMsg struct {
	Records []*record.Record
	Err     error
}

// HistoryScreen lists past results, newest first.
type HistoryScreen struct {
	deps     screens.Deps
	records  []*record.Record
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(deps screens.Deps) *HistoryScreen {
	return &HistoryScreen{deps: deps.WithDefaults()}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo, log := s.deps.Results, s.deps.Log
	return func() tea.Msg {
		if repo == nil {
			return historyLoadedMsg{}
		}
		recs, err := repo.List(context.Background(), store.QueryOpts{Limit: Limit})
		if errors.Is(err, record.ErrMalformed) {
			log.Warn("stored results unreadable", "error", err)
			err = nil
		}
		return historyLoadedMsg{Records: recs, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "Past Results"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.records = msg.Records
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.records)-1 {
				s.selected++
			}
		case "enter":
			if s.selected < len(s.records) {
				next := result.New(s.records[s.selected], "")
				return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading results...")
	}
	if len(s.records) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  " + report.NoResults)
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, rec := range s.records {
		prefix := "  "
		if i == s.selected {
			prefix = "▸ "
		}

		level := lipgloss.NewStyle().Foreground(theme.LevelColor(rec.RiskLevel)).Bold(true).
			Render(fmt.Sprintf("%-8s", rec.RiskLevel))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		left := style.Render(fmt.Sprintf("%s%s  %-24s", prefix,
			rec.TakenAt.Local().Format("Jan 02, 2006 15:04"), rec.Title))
		right := style.Render(fmt.Sprintf("  %5.1f%% accuracy", rec.AccuracyPercent))

		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, left+level+right))
		b.WriteString("\n")
	}

	visible, _ := layout.Scroll(b.String(), s.selected-height/2, height)
	return visible
}
