package session

import (
	"fmt"
	"math"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lexiscreen/internal/assessment"
	sess "github.com/abhisek/lexiscreen/internal/session"
	"github.com/abhisek/lexiscreen/internal/ui/components"
	"github.com/abhisek/lexiscreen/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	if s.errMsg != "" {
		return centered(width, lipgloss.NewStyle().Foreground(theme.Error).Render("\n\n"+s.errMsg))
	}
	if s.run == nil || s.saving || s.phase == sess.PhaseComplete {
		return centered(width, theme.Hint.Render("\n\n  Scoring your answers..."))
	}

	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(s.renderInfoLine(cw))
	b.WriteString("\n\n")

	if s.confirmQuit {
		b.WriteString(components.Panel(
			theme.Heading.Render("Stop this test?")+"\n\n"+
				theme.Hint.Render("Answers so far will not be saved."), cw))
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
	}

	switch s.phase {
	case sess.PhasePresenting:
		b.WriteString(s.renderPresentation(cw))
	case sess.PhaseResponding:
		b.WriteString(s.renderResponse(cw))
	default:
		b.WriteString(theme.Hint.Render("..."))
	}

	if s.hint != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Warning).Width(cw).Render(s.hint))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

// renderInfoLine shows the test title and question position.
func (s *SessionScreen) renderInfoLine(cw int) string {
	left := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(s.battery.Title)
	right := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("Question %d of %d", s.index+1, len(s.battery.Questions)))

	line := left
	if pad := cw - lipgloss.Width(left) - lipgloss.Width(right); pad > 0 {
		line += strings.Repeat(" ", pad) + right
	}
	rule := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw))

	p := sess.BuildProgress(s.run)
	bar := components.NewProgressBar("Answered", p.Fraction()*100, false, cw)
	return line + "\n" + rule + "\n" + bar.View()
}

func (s *SessionScreen) renderPresentation(cw int) string {
	var b strings.Builder
	b.WriteString(promptStyle(cw).Render(s.question.Prompt))
	b.WriteString("\n\n")
	if len(s.question.Stimulus) > 0 {
		b.WriteString(components.Stimulus(s.question.Stimulus, cw))
		b.WriteString("\n\n")
	}

	secs := int(math.Ceil(s.remaining().Seconds()))
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
		Render(fmt.Sprintf("%ds", secs)))
	b.WriteString("  ")
	b.WriteString(theme.Hint.Render("Press Enter when you are ready"))
	return b.String()
}

func (s *SessionScreen) renderResponse(cw int) string {
	q := s.question

	var b strings.Builder
	b.WriteString(promptStyle(cw).Render(q.Prompt))
	b.WriteString("\n\n")

	switch q.Kind {
	case assessment.KindSingleChoice:
		b.WriteString(s.choice.View())
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(fmt.Sprintf("Select (1-%d) or use arrows + Enter", min(len(q.Options), 9))))
		return b.String()

	case assessment.KindSpellingBlank:
		if q.Sentence != "" {
			b.WriteString(theme.Body.Width(cw).Render(q.Sentence))
			b.WriteString("\n")
		}
		if q.Hint != "" {
			b.WriteString(theme.Hint.Render("Hint: " + q.Hint))
			b.WriteString("\n")
		}

	case assessment.KindOrderedSequence:
		if len(q.Options) > 0 {
			b.WriteString(theme.Subtitle.Render("Items: " + strings.Join(q.Options, ", ")))
			b.WriteString("\n")
		}
		b.WriteString(theme.Hint.Render("Separate items with commas or spaces."))
		b.WriteString("\n")

	case assessment.KindFreeRecall:
		b.WriteString(theme.Hint.Render("Separate items with commas or spaces."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString("Answer: " + s.input.View())
	return b.String()
}

func promptStyle(cw int) lipgloss.Style {
	return lipgloss.NewStyle().Width(cw).Foreground(theme.Text).Bold(true)
}

func centered(width int, s string) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(s)
}
