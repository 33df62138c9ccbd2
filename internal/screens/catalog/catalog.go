package catalog

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lexiscreen/internal/battery"
	"github.com/abhisek/lexiscreen/internal/router"
	"github.com/abhisek/lexiscreen/internal/screen"
	"github.com/abhisek/lexiscreen/internal/screens"
	sessionscreen "github.com/abhisek/lexiscreen/internal/screens/session"
	"github.com/abhisek/lexiscreen/internal/ui/components"
	"github.com/abhisek/lexiscreen/internal/ui/layout"
	"github.com/abhisek/lexiscreen/internal/ui/theme"
)

// CatalogScreen lists the available tests. Enter starts the selected one.
type CatalogScreen struct {
	deps      screens.Deps
	batteries []*battery.Battery
	menu      components.Menu
}

var _ screen.Screen = (*CatalogScreen)(nil)
var _ screen.KeyHintProvider = (*CatalogScreen)(nil)

// New creates a CatalogScreen over every registered test.
func New(deps screens.Deps) *CatalogScreen {
	s := &CatalogScreen{deps: deps}
	if deps.Tests != nil {
		s.batteries = deps.Tests.List()
	}

	items := make([]components.MenuItem, 0, len(s.batteries))
	for _, b := range s.batteries {
		b := b
		items = append(items, components.MenuItem{
			Label:  b.Title,
			Detail: describe(b),
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: sessionscreen.New(deps, b)}
				}
			},
		})
	}
	s.menu = components.NewMenu(items)
	return s
}

func describe(b *battery.Battery) string {
	parts := []string{string(b.Family)}
	if b.AgeBand != "" && b.AgeBand != "standard" {
		parts = append(parts, "ages "+b.AgeBand)
	}
	parts = append(parts, fmt.Sprintf("%d questions", len(b.Questions)))
	if b.Timed() {
		parts = append(parts, "timed")
	}
	return strings.Join(parts, " · ")
}

func (s *CatalogScreen) Init() tea.Cmd {
	return nil
}

func (s *CatalogScreen) Title() string {
	return "Choose a test"
}

func (s *CatalogScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *CatalogScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *CatalogScreen) View(width, height int) string {
	if len(s.batteries) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No tests available.")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.menu.View())

	if sel := s.menu.Selected; sel >= 0 && sel < len(s.batteries) {
		if d := s.batteries[sel].Description; d != "" {
			b.WriteString("\n")
			b.WriteString(theme.Hint.Width(min(width-8, 70)).Render("  " + d))
		}
	}

	visible, _ := layout.Scroll(b.String(), s.menu.Selected-height/2, height)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, visible)
}
