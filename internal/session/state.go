package session

import "fmt"

// Phase represents the current phase of a test run.
type Phase int

const (
	PhasePresenting Phase = iota // Showing the question or stimulus
	PhaseResponding              // Accepting exactly one submission
	PhaseGraded                  // Submission graded, waiting to advance
	PhaseComplete                // All questions graded, assessment available
	PhaseAbandoned               // Run discarded before completion
)

func (p Phase) String() string {
	switch p {
	case PhasePresenting:
		return "presenting"
	case PhaseResponding:
		return "responding"
	case PhaseGraded:
		return "graded"
	case PhaseComplete:
		return "complete"
	case PhaseAbandoned:
		return "abandoned"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Terminal reports whether no further transitions are possible.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseAbandoned
}

// Event is emitted on every phase change.
type Event struct {
	Phase         Phase
	QuestionIndex int
}
