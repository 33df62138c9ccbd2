package risk

import (
	"github.com/abhisek/lexiscreen/internal/assessment"
)

// Standard risk factor descriptions.
const (
	FactorLowAccuracy      = "significant difficulty with task accuracy"
	FactorSlowProcessing   = "slower than expected processing speed"
	FactorEasyItemErrors   = "difficulty with basic/easy items"
	FactorSequenceOrder    = "difficulty maintaining sequence order"
	FactorComplexItems     = "significant difficulty with complex items"
	FactorExtendedResponse = "extended processing time per question"
)

// Rule is a predicate over a result summary. When it holds, Evaluate
// returns the risk factor to record and true.
type Rule interface {
	Name() string
	Evaluate(s *Summary) (string, bool)
}

// DefaultRules returns the rules every battery evaluates, in order.
func DefaultRules() []Rule {
	return []Rule{
		&AccuracyRule{Below: 60, Factor: FactorLowAccuracy},
		&TimeScoreRule{Below: 60, Factor: FactorSlowProcessing},
		&EasyErrorRule{MinErrors: 1, Factor: FactorEasyItemErrors},
	}
}

// AccuracyRule fires when partial-credit accuracy is strictly below Below.
type AccuracyRule struct {
	Below  float64
	Factor string
}

func (r *AccuracyRule) Name() string { return "accuracy" }

func (r *AccuracyRule) Evaluate(s *Summary) (string, bool) {
	return r.Factor, s.PartialAccuracyPercent < r.Below
}

// TimeScoreRule fires when the share of answers within their time
// threshold is strictly below Below.
type TimeScoreRule struct {
	Below  float64
	Factor string
}

func (r *TimeScoreRule) Name() string { return "time-score" }

func (r *TimeScoreRule) Evaluate(s *Summary) (string, bool) {
	return r.Factor, s.TimeScorePercent < r.Below
}

// EasyErrorRule fires once when at least MinErrors easy questions were
// answered incorrectly.
type EasyErrorRule struct {
	MinErrors int
	Factor    string
}

func (r *EasyErrorRule) Name() string { return "easy-errors" }

func (r *EasyErrorRule) Evaluate(s *Summary) (string, bool) {
	need := r.MinErrors
	if need < 1 {
		need = 1
	}
	var errs int
	for _, res := range s.Results {
		if res.Difficulty == assessment.DifficultyEasy && !res.IsCorrect {
			errs++
		}
	}
	return r.Factor, errs >= need
}

// KindAccuracyRule fires when partial-credit accuracy over the questions of
// one kind is strictly below Below. It never fires when the battery has no
// questions of that kind.
type KindAccuracyRule struct {
	Kind   assessment.Kind
	Below  float64
	Factor string
}

func (r *KindAccuracyRule) Name() string { return "kind-accuracy:" + string(r.Kind) }

func (r *KindAccuracyRule) Evaluate(s *Summary) (string, bool) {
	pct, ok := partialPercent(s.Results, func(res assessment.QuestionResult) bool {
		return res.Kind == r.Kind
	})
	return r.Factor, ok && pct < r.Below
}

// DifficultyAccuracyRule fires when partial-credit accuracy over the given
// difficulties is strictly below Below.
type DifficultyAccuracyRule struct {
	Difficulties []assessment.Difficulty
	Below        float64
	Factor       string
}

func (r *DifficultyAccuracyRule) Name() string { return "difficulty-accuracy" }

func (r *DifficultyAccuracyRule) Evaluate(s *Summary) (string, bool) {
	pct, ok := partialPercent(s.Results, func(res assessment.QuestionResult) bool {
		for _, d := range r.Difficulties {
			if res.Difficulty == d {
				return true
			}
		}
		return false
	})
	return r.Factor, ok && pct < r.Below
}

// AverageTimeRule fires when the mean response time is strictly above
// AboveSeconds.
type AverageTimeRule struct {
	AboveSeconds float64
	Factor       string
}

func (r *AverageTimeRule) Name() string { return "average-time" }

func (r *AverageTimeRule) Evaluate(s *Summary) (string, bool) {
	return r.Factor, s.AverageTimeSeconds > r.AboveSeconds
}

// partialPercent returns 100 × summed partial credit / summed max credit
// over the results accepted by keep. ok is false when nothing matched.
func partialPercent(results []assessment.QuestionResult, keep func(assessment.QuestionResult) bool) (float64, bool) {
	var partial, total float64
	for _, res := range results {
		if !keep(res) {
			continue
		}
		partial += res.PartialScore
		total += res.MaxScore
	}
	if total == 0 {
		return 0, false
	}
	return 100 * partial / total, true
}
