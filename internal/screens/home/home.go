package home

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lexiscreen/internal/record"
	"github.com/abhisek/lexiscreen/internal/router"
	"github.com/abhisek/lexiscreen/internal/screen"
	"github.com/abhisek/lexiscreen/internal/screens"
	"github.com/abhisek/lexiscreen/internal/screens/catalog"
	"github.com/abhisek/lexiscreen/internal/screens/history"
	"github.com/abhisek/lexiscreen/internal/screens/result"
	"github.com/abhisek/lexiscreen/internal/ui/components"
	"github.com/abhisek/lexiscreen/internal/ui/theme"
)

// Menu positions.
const (
	itemTake = iota
	itemLatest
	itemHistory
	itemQuit
)

type latestLoadedMsg struct {
	rec *record.Record
	err error
}

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	deps   screens.Deps
	menu   components.Menu
	latest *record.Record
	errMsg string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps screens.Deps) *HomeScreen {
	h := &HomeScreen{deps: deps.WithDefaults()}
	h.menu = components.NewMenu(h.items())
	return h
}

func (h *HomeScreen) items() []components.MenuItem {
	tests := 0
	if h.deps.Tests != nil {
		tests = len(h.deps.Tests.List())
	}
	return []components.MenuItem{
		itemTake: {
			Label:    "TAKE A TEST",
			Detail:   fmt.Sprintf("%d available", tests),
			Disabled: tests == 0,
			Action:   push(func() screen.Screen { return catalog.New(h.deps) }),
		},
		itemLatest: {
			Label:    "LATEST RESULT",
			Disabled: h.latest == nil,
			Action:   push(func() screen.Screen { return result.New(h.latest, "") }),
		},
		itemHistory: {
			Label:  "PAST RESULTS",
			Action: push(func() screen.Screen { return history.New(h.deps) }),
		},
		itemQuit: {
			Label:  "QUIT",
			Action: func() tea.Cmd { return tea.Quit },
		},
	}
}

func push(build func() screen.Screen) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg { return router.PushScreenMsg{Screen: build()} }
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadLatest()
}

// Resume reloads the latest result after a screen above is popped.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.loadLatest()
}

func (h *HomeScreen) loadLatest() tea.Cmd {
	repo := h.deps.Results
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		rec, err := repo.Latest(context.Background(), "")
		return latestLoadedMsg{rec: rec, err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(latestLoadedMsg); ok {
		h.errMsg = ""
		switch {
		case errors.Is(msg.err, record.ErrMalformed):
			h.deps.Log.Warn("latest result unreadable", "error", msg.err)
			h.latest = nil
		case msg.err != nil:
			h.deps.Log.Error("load latest result", "error", msg.err)
			h.errMsg = "Could not load results."
		default:
			h.latest = msg.rec
		}
		selected := h.menu.Selected
		h.menu = components.NewMenu(h.items())
		if !h.menu.Items[selected].Disabled {
			h.menu.Selected = selected
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	sections := []string{
		theme.Title.Render("Reading and learning screener"),
		components.Panel(h.renderStats(), cw),
		h.menu.View(),
	}

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

// renderStats summarises the most recent result.
func (h *HomeScreen) renderStats() string {
	if h.errMsg != "" {
		return lipgloss.NewStyle().Foreground(theme.Error).Render(h.errMsg)
	}
	if h.latest == nil {
		return theme.Hint.Render("No results yet. Take a test to get started.")
	}
	r := h.latest
	level := lipgloss.NewStyle().Foreground(theme.LevelColor(r.RiskLevel)).Bold(true).
		Render(r.RiskLevel.String() + " risk")
	return fmt.Sprintf("%s  %s  %s\n%s",
		theme.Subtitle.Render("Latest:"),
		theme.Body.Render(r.Title),
		level,
		theme.Subtitle.Render(fmt.Sprintf("%.0f%% accuracy · %s",
			r.AccuracyPercent, r.TakenAt.Local().Format("Jan 02, 2006"))))
}

func (h *HomeScreen) Title() string {
	return "Home"
}
