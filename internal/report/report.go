// Package report renders stored results for the terminal.
package report

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lexiscreen/internal/record"
	"github.com/abhisek/lexiscreen/internal/ui/components"
	"github.com/abhisek/lexiscreen/internal/ui/theme"
)

// SlowAnswerSeconds marks a single answer as slow in the per-question list.
const SlowAnswerSeconds = 30

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 72

// Render returns the full results card for rec. A nil record renders the
// "no results" notice.
func Render(rec *record.Record, width int) string {
	if rec == nil {
		return RenderEmpty(width)
	}
	if width <= 0 {
		width = DefaultWidth
	}
	inner := width - 6 // card border and padding

	g := GuidanceFor(rec.RiskLevel)
	var b strings.Builder

	// Header.
	title := rec.Title
	if title == "" {
		title = rec.Test
	}
	b.WriteString(theme.Title.Render(title))
	b.WriteString("  ")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%s · %s", rec.AgeBand, rec.TakenAt.Local().Format("2006-01-02 15:04"))))
	b.WriteString("\n\n")

	// Level and guidance.
	b.WriteString(theme.LevelBadge(rec.RiskLevel))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.LevelColor(rec.RiskLevel)).Render(g.Title))
	b.WriteString("\n")
	b.WriteString(theme.Body.Width(inner).Render(g.Message))
	b.WriteString("\n")

	if len(rec.RiskFactors) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Heading.Render("Identified factors"))
		b.WriteString("\n")
		for _, f := range rec.RiskFactors {
			b.WriteString(theme.Body.Render("  • " + f))
			b.WriteString("\n")
		}
	}

	// Metrics.
	b.WriteString("\n")
	b.WriteString(theme.Heading.Render("Performance"))
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar("Accuracy        ", rec.AccuracyPercent, true, inner).View())
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar("Partial credit  ", rec.PartialAccuracyPercent, true, inner).View())
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar("Processing speed", rec.TimeScorePercent, true, inner).View())
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d of %d correct · %.1fs average per question",
		rec.CorrectAnswers, rec.TotalQuestions, rec.AverageTimeSeconds)))
	b.WriteString("\n")

	// Per-question analysis.
	if len(rec.QuestionResults) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Heading.Render("Question by question"))
		b.WriteString("\n")
		for _, qr := range rec.QuestionResults {
			mark := theme.Correct.Render("✓ correct  ")
			if !qr.IsCorrect {
				mark = theme.Incorrect.Render("✗ incorrect")
			}
			pace := theme.Subtitle.Render("good pace")
			if qr.TimeSpentSeconds > SlowAnswerSeconds {
				pace = theme.Slow.Render("slow")
			}
			score := ""
			if qr.MaxScore > 1 {
				score = fmt.Sprintf(" %.1f/%.0f", qr.PartialScore, qr.MaxScore)
			}
			b.WriteString(fmt.Sprintf("  Q%-2d %-6s %s%s  %5.1fs  %s\n",
				qr.QuestionIndex+1, qr.Difficulty, mark, score, qr.TimeSpentSeconds, pace))
		}
	}

	// Next steps.
	if len(g.NextSteps) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Heading.Render("Recommended next steps"))
		b.WriteString("\n")
		for _, s := range g.NextSteps {
			b.WriteString(theme.Body.Render("  • " + s))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(Disclaimer))

	return theme.Card.Width(width).Render(b.String())
}

// RenderEmpty returns the notice shown when no result is available.
func RenderEmpty(width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	return theme.Card.Width(width).Render(theme.Subtitle.Render(NoResults))
}

// RenderHistory returns a compact table of past results, newest first.
func RenderHistory(recs []*record.Record) string {
	if len(recs) == 0 {
		return theme.Subtitle.Render(NoResults)
	}

	var b strings.Builder
	header := fmt.Sprintf("%-16s  %-18s  %-8s  %9s  %9s  %s", "TAKEN", "TEST", "LEVEL", "ACCURACY", "SPEED", "FACTORS")
	b.WriteString(theme.Heading.Render(header))
	b.WriteString("\n")

	for _, r := range recs {
		level := lipgloss.NewStyle().Foreground(theme.LevelColor(r.RiskLevel)).Render(fmt.Sprintf("%-8s", r.RiskLevel))
		b.WriteString(fmt.Sprintf("%-16s  %-18s  %s  %8.1f%%  %8.1f%%  %d\n",
			r.TakenAt.Local().Format("2006-01-02 15:04"),
			truncate(r.Test, 18),
			level,
			r.AccuracyPercent,
			r.TimeScorePercent,
			len(r.RiskFactors)))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
