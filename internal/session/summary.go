package session

import "time"

// Progress holds the running totals displayed while a test is in progress.
type Progress struct {
	Answered int
	Total    int
	Correct  int
	Elapsed  time.Duration
}

// Fraction returns the share of questions answered (0.0–1.0).
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Answered) / float64(p.Total)
}

// BuildProgress creates a Progress snapshot from the session.
func BuildProgress(s *Session) Progress {
	results := s.Results()

	var correct int
	for _, r := range results {
		if r.IsCorrect {
			correct++
		}
	}

	return Progress{
		Answered: len(results),
		Total:    s.Total(),
		Correct:  correct,
		Elapsed:  s.Elapsed(),
	}
}
