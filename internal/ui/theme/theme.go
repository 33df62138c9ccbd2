package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lexiscreen/internal/risk"
)

// Color palette: calm, high-contrast, readable on dark terminals.
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
	Accent    = lipgloss.Color("#FACC15") // Yellow
	BgDark    = lipgloss.Color("#0F172A") // Navy
	BgCard    = lipgloss.Color("#1E293B") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Heading = lipgloss.NewStyle().
		Bold(true).
		Foreground(Secondary)
)

// Layout
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Border).
	Padding(1, 2)

// States
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Slow = lipgloss.NewStyle().
		Foreground(Warning)
)

// LevelColor returns the color used for a risk level.
func LevelColor(l risk.Level) color.Color {
	switch l {
	case risk.High:
		return Error
	case risk.Moderate:
		return Warning
	default:
		return Success
	}
}

// LevelBadge renders a risk level as a colored badge.
func LevelBadge(l risk.Level) string {
	return lipgloss.NewStyle().
		Foreground(LevelColor(l)).
		Bold(true).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(LevelColor(l)).
		Padding(0, 1).
		Render(l.String() + " risk")
}
