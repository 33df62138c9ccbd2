package risk

import (
	"fmt"

	"github.com/abhisek/lexiscreen/internal/assessment"
)

// Thresholds are the per-difficulty response-time limits, in seconds. An
// answer is within threshold when its time does not exceed the limit.
type Thresholds struct {
	Easy   float64 `yaml:"easy" json:"easy"`
	Medium float64 `yaml:"medium" json:"medium"`
	Hard   float64 `yaml:"hard" json:"hard"`
}

// DefaultThresholds returns the baseline limits (15s / 25s / 40s).
func DefaultThresholds() Thresholds {
	return Thresholds{Easy: 15, Medium: 25, Hard: 40}
}

// For returns the limit for d. Unknown difficulties use the hard limit.
func (t Thresholds) For(d assessment.Difficulty) float64 {
	switch d {
	case assessment.DifficultyEasy:
		return t.Easy
	case assessment.DifficultyMedium:
		return t.Medium
	default:
		return t.Hard
	}
}

// Cutoffs map factor counts and aggregate scores to a level. Levels are
// evaluated High first, then Moderate, else Low.
type Cutoffs struct {
	HighFactors            int
	HighAccuracyBelow      float64
	ModerateFactors        int
	ModerateAccuracyBelow  float64
	ModerateTimeScoreBelow float64
}

// DefaultCutoffs returns the standard level cutoffs.
func DefaultCutoffs() Cutoffs {
	return Cutoffs{
		HighFactors:            3,
		HighAccuracyBelow:      40,
		ModerateFactors:        2,
		ModerateAccuracyBelow:  60,
		ModerateTimeScoreBelow: 60,
	}
}

// Config configures a Classifier.
type Config struct {
	Thresholds Thresholds
	Rules      []Rule
	Cutoffs    Cutoffs
}

// DefaultConfig returns the baseline thresholds, rules and cutoffs.
func DefaultConfig() Config {
	return Config{
		Thresholds: DefaultThresholds(),
		Rules:      DefaultRules(),
		Cutoffs:    DefaultCutoffs(),
	}
}

// Summary holds the aggregate statistics that rules evaluate.
type Summary struct {
	Results []assessment.QuestionResult

	TotalQuestions         int
	CorrectAnswers         int
	AccuracyPercent        float64
	PartialAccuracyPercent float64
	AverageTimeSeconds     float64
	TimeScorePercent       float64
}

// Assessment is the outcome of classifying a completed test.
type Assessment struct {
	AccuracyPercent        float64  `json:"accuracyPercent"`
	PartialAccuracyPercent float64  `json:"partialAccuracyPercent"`
	AverageTimeSeconds     float64  `json:"averageTimeSeconds"`
	TimeScorePercent       float64  `json:"timeScorePercent"`
	RiskFactors            []string `json:"riskFactors"`
	RiskLevel              Level    `json:"riskLevel"`
	CorrectAnswers         int      `json:"correctAnswers"`
	TotalQuestions         int      `json:"totalQuestions"`
}

// Classifier turns question results into an Assessment. It holds no
// mutable state, so the same input always yields the same output.
type Classifier struct {
	cfg Config
}

// New creates a Classifier.
func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify runs the default classifier.
func Classify(results []assessment.QuestionResult) (*Assessment, error) {
	return New(DefaultConfig()).Classify(results)
}

// Summarize computes the aggregate statistics for results using the
// classifier's time thresholds.
func (c *Classifier) Summarize(results []assessment.QuestionResult) (*Summary, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no question results to classify", assessment.ErrInvalidArgument)
	}

	s := &Summary{
		Results:        results,
		TotalQuestions: len(results),
	}

	var partial, maxScore, totalTime float64
	var within int
	for _, r := range results {
		if r.IsCorrect {
			s.CorrectAnswers++
		}
		partial += r.PartialScore
		maxScore += r.MaxScore
		totalTime += r.TimeSpentSeconds
		if r.TimeSpentSeconds <= c.cfg.Thresholds.For(r.Difficulty) {
			within++
		}
	}
	if maxScore <= 0 {
		return nil, fmt.Errorf("%w: question results carry no score", assessment.ErrInvalidArgument)
	}

	n := float64(len(results))
	s.AccuracyPercent = 100 * float64(s.CorrectAnswers) / n
	s.PartialAccuracyPercent = 100 * partial / maxScore
	s.AverageTimeSeconds = totalTime / n
	s.TimeScorePercent = 100 * float64(within) / n
	return s, nil
}

// Classify computes the summary, evaluates every rule in order, and derives
// the risk level. It fails with ErrInvalidArgument on empty input.
func (c *Classifier) Classify(results []assessment.QuestionResult) (*Assessment, error) {
	s, err := c.Summarize(results)
	if err != nil {
		return nil, err
	}

	factors := []string{}
	for _, rule := range c.cfg.Rules {
		if factor, ok := rule.Evaluate(s); ok {
			factors = append(factors, factor)
		}
	}

	return &Assessment{
		AccuracyPercent:        s.AccuracyPercent,
		PartialAccuracyPercent: s.PartialAccuracyPercent,
		AverageTimeSeconds:     s.AverageTimeSeconds,
		TimeScorePercent:       s.TimeScorePercent,
		RiskFactors:            factors,
		RiskLevel:              c.level(s, len(factors)),
		CorrectAnswers:         s.CorrectAnswers,
		TotalQuestions:         s.TotalQuestions,
	}, nil
}

func (c *Classifier) level(s *Summary, factors int) Level {
	cut := c.cfg.Cutoffs
	switch {
	case factors >= cut.HighFactors || s.PartialAccuracyPercent < cut.HighAccuracyBelow:
		return High
	case factors >= cut.ModerateFactors ||
		s.PartialAccuracyPercent < cut.ModerateAccuracyBelow ||
		s.TimeScorePercent < cut.ModerateTimeScoreBelow:
		return Moderate
	default:
		return Low
	}
}
