package result

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lexiscreen/internal/record"
	"github.com/abhisek/lexiscreen/internal/report"
	"github.com/abhisek/lexiscreen/internal/router"
	"github.com/abhisek/lexiscreen/internal/screen"
	"github.com/abhisek/lexiscreen/internal/ui/layout"
	"github.com/abhisek/lexiscreen/internal/ui/theme"
)

// maxCardWidth keeps the results card readable on wide terminals.
const maxCardWidth = 90

// ResultScreen shows one stored result with its guidance.
type ResultScreen struct {
	rec     *record.Record
	warning string
	offset  int
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

// New creates a ResultScreen for rec. A nil record shows the "no results"
// notice. A non-empty warning is shown above the card.
func New(rec *record.Record, warning string) *ResultScreen {
	return &ResultScreen{rec: rec, warning: warning}
}

func (s *ResultScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultScreen) Title() string {
	if s.rec == nil {
		return "Results"
	}
	if s.rec.Title != "" {
		return s.rec.Title
	}
	return s.rec.Test
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Enter", Description: "Done"},
		{Key: "H", Description: "Home"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			s.offset++
		case "pgup":
			s.offset = max(0, s.offset-10)
		case "pgdown", "space":
			s.offset += 10
		case "enter", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "h":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *ResultScreen) View(width, height int) string {
	cardWidth := min(width-4, maxCardWidth)

	content := report.Render(s.rec, cardWidth)
	if s.warning != "" {
		content = lipgloss.NewStyle().Foreground(theme.Warning).Render("⚠ "+s.warning) + "\n" + content
	}

	visible, offset := layout.Scroll(content, s.offset, height)
	s.offset = offset
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, visible)
}
