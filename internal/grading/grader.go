package grading

import (
	"fmt"
	"strings"

	"github.com/abhisek/lexiscreen/internal/assessment"
)

const (
	// DefaultSequencePassRatio is the minimum partial/max ratio for an
	// ordered-sequence answer to count as correct.
	DefaultSequencePassRatio = 0.7

	// DefaultRecallPassRatio is the minimum partial/max ratio for a
	// free-recall answer to count as correct.
	DefaultRecallPassRatio = 0.6

	// displacedCredit is awarded for an item that is present but out of place.
	displacedCredit = 0.5
)

// Config holds the pass cutoffs for partially scored kinds.
type Config struct {
	SequencePassRatio float64
	RecallPassRatio   float64
}

// DefaultConfig returns the standard pass cutoffs.
func DefaultConfig() Config {
	return Config{
		SequencePassRatio: DefaultSequencePassRatio,
		RecallPassRatio:   DefaultRecallPassRatio,
	}
}

// Verdict is the outcome of grading one submission.
type Verdict struct {
	IsCorrect    bool
	PartialScore float64
	MaxScore     float64
}

// Grader scores submissions. It has no state beyond its configuration and
// is safe for concurrent use.
type Grader struct {
	cfg Config
}

// New creates a Grader with the given cutoffs.
func New(cfg Config) *Grader {
	return &Grader{cfg: cfg}
}

// Grade scores sub against q with the default cutoffs.
func Grade(q *assessment.Question, sub assessment.Submission) (Verdict, error) {
	return New(DefaultConfig()).Grade(q, sub)
}

// Grade scores sub against q.
//
// Normalization rules for string items:
// - Whitespace is trimmed
// - Comparison is case-insensitive
// - Blank entries are discarded before scoring
//
// Empty submissions score zero and are not an error. An unknown question
// kind returns ErrInvalidArgument.
func (g *Grader) Grade(q *assessment.Question, sub assessment.Submission) (Verdict, error) {
	switch q.Kind {
	case assessment.KindSingleChoice:
		return gradeChoice(q, sub), nil
	case assessment.KindOrderedSequence:
		return g.gradeSequence(q, sub)
	case assessment.KindFreeRecall:
		return g.gradeRecall(q, sub)
	case assessment.KindSpellingBlank:
		return gradeSpelling(q, sub), nil
	default:
		return Verdict{}, fmt.Errorf("%w: cannot grade question kind %q", assessment.ErrInvalidArgument, q.Kind)
	}
}

func gradeChoice(q *assessment.Question, sub assessment.Submission) Verdict {
	grade := Verdict{MaxScore: 1}
	if sub.Chosen && sub.Choice == q.AnswerIndex {
		grade.IsCorrect = true
		grade.PartialScore = 1
	}
	return grade
}

// gradeSequence awards one point per item in its expected position and half
// a point per remaining item found elsewhere in the expected list. Each
// expected item can be consumed once, so duplicates are not double counted.
func (g *Grader) gradeSequence(q *assessment.Question, sub assessment.Submission) (Verdict, error) {
	expected := normalizeAll(q.AnswerItems)
	if len(expected) == 0 {
		return Verdict{}, fmt.Errorf("%w: ordered-sequence question has no expected items", assessment.ErrInvalidArgument)
	}
	submitted := normalizeAll(sub.Items)

	var positional int
	matched := make([]bool, len(submitted))
	remaining := make(map[string]int)
	for i, want := range expected {
		if i < len(submitted) && submitted[i] == want {
			positional++
			matched[i] = true
			continue
		}
		remaining[want]++
	}

	var displaced int
	for i, got := range submitted {
		if matched[i] {
			continue
		}
		if remaining[got] > 0 {
			remaining[got]--
			displaced++
		}
	}

	grade := Verdict{
		PartialScore: float64(positional) + displacedCredit*float64(displaced),
		MaxScore:     float64(len(expected)),
	}
	grade.IsCorrect = grade.PartialScore/grade.MaxScore >= g.cfg.SequencePassRatio
	return grade, nil
}

// gradeRecall counts distinct expected items present in the submission.
func (g *Grader) gradeRecall(q *assessment.Question, sub assessment.Submission) (Verdict, error) {
	expected := normalizeAll(q.AnswerItems)
	if len(expected) == 0 {
		return Verdict{}, fmt.Errorf("%w: free-recall question has no expected items", assessment.ErrInvalidArgument)
	}

	remaining := make(map[string]int, len(expected))
	for _, want := range expected {
		remaining[want]++
	}

	var found int
	for _, got := range normalizeAll(sub.Items) {
		if remaining[got] > 0 {
			remaining[got]--
			found++
		}
	}

	grade := Verdict{
		PartialScore: float64(found),
		MaxScore:     float64(len(expected)),
	}
	grade.IsCorrect = grade.PartialScore/grade.MaxScore >= g.cfg.RecallPassRatio
	return grade, nil
}

func gradeSpelling(q *assessment.Question, sub assessment.Submission) Verdict {
	grade := Verdict{MaxScore: 1}
	got := normalize(sub.Text)
	if got != "" && got == normalize(q.AnswerText) {
		grade.IsCorrect = true
		grade.PartialScore = 1
	}
	return grade
}

// normalize trims and case-folds an answer item.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeAll normalizes items and drops blank entries.
func normalizeAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if n := normalize(it); n != "" {
			out = append(out, n)
		}
	}
	return out
}
