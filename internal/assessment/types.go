package assessment

import (
	"fmt"
	"time"
)

// Kind describes how a question is answered and graded.
type Kind string

const (
	KindSingleChoice    Kind = "single-choice"    // pick one option by index
	KindOrderedSequence Kind = "ordered-sequence" // reproduce items in order
	KindFreeRecall      Kind = "free-recall"      // recall items in any order
	KindSpellingBlank   Kind = "spelling-blank"   // type the missing word
)

// Kinds returns every supported question kind.
func Kinds() []Kind {
	return []Kind{KindSingleChoice, KindOrderedSequence, KindFreeRecall, KindSpellingBlank}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindSingleChoice, KindOrderedSequence, KindFreeRecall, KindSpellingBlank:
		return true
	}
	return false
}

// Difficulty is the authored difficulty of a question. It selects the
// response-time threshold used by the risk classifier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is one test item. Questions are static data: built once per
// battery and never mutated.
type Question struct {
	// Kind selects the grading strategy.
	Kind Kind

	// Prompt is the instruction or passage shown to the test taker.
	Prompt string

	// Options are the choices for single-choice questions, or the scrambled
	// items the test taker reorders for ordered-sequence questions.
	Options []string

	// Stimulus is the content shown during the presentation phase of a
	// memorisation question (e.g. digits to remember). Empty otherwise.
	Stimulus []string

	// Hint and Sentence give context for spelling-blank questions.
	Hint     string
	Sentence string

	// AnswerIndex is the expected option index for single-choice questions.
	AnswerIndex int

	// AnswerItems is the expected ordered list (ordered-sequence) or the
	// set of acceptable items (free-recall).
	AnswerItems []string

	// AnswerText is the expected word for spelling-blank questions.
	AnswerText string

	// Difficulty is fixed at authoring time.
	Difficulty Difficulty

	// PresentationDuration is how long the stimulus stays on screen before
	// the response phase opens. Zero means untimed.
	PresentationDuration time.Duration
}

// Timed reports whether the question has a timed presentation phase.
func (q *Question) Timed() bool {
	return q.PresentationDuration > 0
}

// Validate checks that the question is internally consistent.
func (q *Question) Validate() error {
	if !q.Kind.Valid() {
		return fmt.Errorf("%w: unknown question kind %q", ErrInvalidArgument, q.Kind)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidArgument, q.Difficulty)
	}
	if q.PresentationDuration < 0 {
		return fmt.Errorf("%w: negative presentation duration", ErrInvalidArgument)
	}

	switch q.Kind {
	case KindSingleChoice:
		if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Options) {
			return fmt.Errorf("%w: answer index %d out of range for %d options",
				ErrInvalidArgument, q.AnswerIndex, len(q.Options))
		}
	case KindOrderedSequence, KindFreeRecall:
		if len(q.AnswerItems) == 0 {
			return fmt.Errorf("%w: %s question has no expected items", ErrInvalidArgument, q.Kind)
		}
	case KindSpellingBlank:
		if q.AnswerText == "" {
			return fmt.Errorf("%w: spelling question has no expected word", ErrInvalidArgument)
		}
	}
	return nil
}

// Submission is the raw answer for one question. Which fields are read
// depends on the question kind; the zero value is an empty submission.
type Submission struct {
	Choice int  // selected option index (single-choice)
	Chosen bool // true when Choice holds a selection

	Items []string // entered items (ordered-sequence, free-recall)
	Text  string   // typed word (spelling-blank)
}

// ChoiceAnswer builds a single-choice submission.
func ChoiceAnswer(index int) Submission {
	return Submission{Choice: index, Chosen: true}
}

// ItemsAnswer builds an ordered-sequence or free-recall submission.
func ItemsAnswer(items ...string) Submission {
	return Submission{Items: items}
}

// TextAnswer builds a spelling-blank submission.
func TextAnswer(text string) Submission {
	return Submission{Text: text}
}

// QuestionResult is one graded attempt. It is created exactly once by the
// session, right after grading, and never changed.
type QuestionResult struct {
	QuestionIndex    int        `json:"questionIndex"`
	Kind             Kind       `json:"kind"`
	IsCorrect        bool       `json:"isCorrect"`
	PartialScore     float64    `json:"partialScore"`
	MaxScore         float64    `json:"maxScore"`
	TimeSpentSeconds float64    `json:"timeSpentSeconds"`
	Difficulty       Difficulty `json:"difficulty"`
}
