package battery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/lexiscreen/internal/assessment"
	"github.com/abhisek/lexiscreen/internal/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_LoadsAllBatteries(t *testing.T) {
	r, err := Builtin()
	require.NoError(t, err)

	ids := make([]string, 0)
	for _, b := range r.List() {
		ids = append(ids, b.ID)
		assert.NotEmpty(t, b.Title, b.ID)
		assert.NotEmpty(t, b.Questions, b.ID)
	}
	assert.ElementsMatch(t, []string{
		"reading", "reading-6to9", "reading-9to12",
		"phonological", "phonological-6to9",
		"memory", "memory-6to9",
		"sequencing", "spelling",
	}, ids)
}

func TestBuiltin_MemoryBattery(t *testing.T) {
	r, err := Builtin()
	require.NoError(t, err)

	b, err := r.Get("memory")
	require.NoError(t, err)
	assert.Equal(t, FamilyMemory, b.Family)
	assert.Equal(t, risk.Thresholds{Easy: 20, Medium: 35, Hard: 50}, b.Thresholds)
	assert.True(t, b.Timed())
	require.Len(t, b.Questions, 4)

	reverse := b.Questions[2]
	assert.Equal(t, assessment.KindOrderedSequence, reverse.Kind)
	assert.Equal(t, []string{"5", "9", "3", "1", "6"}, reverse.Stimulus)
	assert.Equal(t, []string{"6", "1", "3", "9", "5"}, reverse.AnswerItems)
	assert.Equal(t, 6*time.Second, reverse.PresentationDuration)

	recall := b.Questions[3]
	assert.Equal(t, assessment.KindFreeRecall, recall.Kind)
	assert.Equal(t, assessment.DifficultyHard, recall.Difficulty)
	assert.Len(t, recall.AnswerItems, 7)
}

func TestBuiltin_Spelling(t *testing.T) {
	r, err := Builtin()
	require.NoError(t, err)

	b, err := r.Get("spelling")
	require.NoError(t, err)
	assert.False(t, b.Timed())

	var words []string
	for _, q := range b.Questions {
		assert.Equal(t, assessment.KindSpellingBlank, q.Kind)
		assert.Contains(t, q.Sentence, "_____")
		words = append(words, q.AnswerText)
	}
	assert.Equal(t, []string{"because", "beautiful", "definitely", "necessary", "rhythm", "psychologist"}, words)
}

func TestBuiltin_GetUnknown(t *testing.T) {
	r, err := Builtin()
	require.NoError(t, err)

	_, err = r.Get("arithmetic")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_Family(t *testing.T) {
	r, err := Builtin()
	require.NoError(t, err)

	reading := r.Family(FamilyReading)
	require.Len(t, reading, 3)
	assert.Equal(t, "reading", reading[0].ID)
	assert.Equal(t, "reading-6to9", reading[1].ID)
}

func TestRegistry_DuplicateID(t *testing.T) {
	a := &Battery{ID: "x"}
	_, err := NewRegistry(a, &Battery{ID: "x"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "duplicate battery id", verr.Message)
}

func TestSequencingRules(t *testing.T) {
	r, err := Builtin()
	require.NoError(t, err)
	b, err := r.Get("sequencing")
	require.NoError(t, err)

	// Every ordered answer scrambled but fast.
	var results []assessment.QuestionResult
	for i, q := range b.Questions {
		results = append(results, assessment.QuestionResult{
			QuestionIndex:    i,
			Kind:             q.Kind,
			PartialScore:     1,
			MaxScore:         float64(len(q.AnswerItems)),
			TimeSpentSeconds: 2,
			Difficulty:       q.Difficulty,
		})
	}

	a, err := b.Classifier().Classify(results)
	require.NoError(t, err)
	assert.Equal(t, []string{
		risk.FactorLowAccuracy,
		risk.FactorEasyItemErrors,
		risk.FactorSequenceOrder,
		risk.FactorComplexItems,
	}, a.RiskFactors)
	assert.Equal(t, risk.High, a.RiskLevel)
}

func TestReadingAverageTimeRule(t *testing.T) {
	r, err := Builtin()
	require.NoError(t, err)
	b, err := r.Get("reading")
	require.NoError(t, err)

	results := []assessment.QuestionResult{
		{Kind: assessment.KindSingleChoice, IsCorrect: true, PartialScore: 1, MaxScore: 1, TimeSpentSeconds: 35, Difficulty: assessment.DifficultyHard},
		{Kind: assessment.KindSingleChoice, IsCorrect: true, PartialScore: 1, MaxScore: 1, TimeSpentSeconds: 38, Difficulty: assessment.DifficultyHard},
	}
	a, err := b.Classifier().Classify(results)
	require.NoError(t, err)
	assert.Equal(t, []string{risk.FactorExtendedResponse}, a.RiskFactors)
	assert.Equal(t, risk.Low, a.RiskLevel)
}

const customYAML = `
id: animals
family: custom
title: Animal Words
thresholds: {easy: 10, medium: 20, hard: 30}
questions:
  - kind: single-choice
    prompt: "Which one barks?"
    options: ["Cat", "Dog"]
    answerIndex: 1
    difficulty: easy
  - kind: free-recall
    prompt: "Name the animals you saw"
    stimulus: ["cow", "pig"]
    answerItems: ["cow", "pig"]
    difficulty: medium
    presentSeconds: 2.5
`

func TestParse_Custom(t *testing.T) {
	b, err := Parse([]byte(customYAML), "animals.yaml")
	require.NoError(t, err)

	assert.Equal(t, "animals", b.ID)
	assert.Equal(t, FamilyCustom, b.Family)
	assert.Equal(t, "standard", b.AgeBand)
	assert.Equal(t, 10.0, b.Thresholds.Easy)
	assert.Empty(t, b.Rules)
	require.Len(t, b.Questions, 2)
	assert.Equal(t, 1, b.Questions[0].AnswerIndex)
	assert.Equal(t, 2500*time.Millisecond, b.Questions[1].PresentationDuration)
}

func TestParse_DefaultThresholds(t *testing.T) {
	doc := `
id: tiny
family: custom
title: Tiny
questions:
  - kind: spelling-blank
    prompt: "Spell it"
    answerText: cat
    difficulty: easy
`
	b, err := Parse([]byte(doc), "tiny.yaml")
	require.NoError(t, err)
	assert.Equal(t, risk.DefaultThresholds(), b.Thresholds)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		message string
	}{
		{
			name:    "not yaml",
			doc:     "id: [unterminated",
			message: "invalid YAML",
		},
		{
			name:    "missing questions",
			doc:     "id: a\nfamily: custom\ntitle: A\n",
			message: "schema validation failed",
		},
		{
			name: "unknown kind",
			doc: `id: a
family: custom
title: A
questions:
  - kind: essay
    prompt: Write
    difficulty: easy
`,
			message: "schema validation failed",
		},
		{
			name: "unknown field",
			doc: `id: a
family: custom
title: A
colour: blue
questions:
  - kind: spelling-blank
    prompt: Spell
    answerText: cat
    difficulty: easy
`,
			message: "schema validation failed",
		},
		{
			name: "single choice without answer",
			doc: `id: a
family: custom
title: A
questions:
  - kind: single-choice
    prompt: Pick
    options: [x, y]
    difficulty: easy
`,
			message: "question 0",
		},
		{
			name: "answer index out of range",
			doc: `id: a
family: custom
title: A
questions:
  - kind: single-choice
    prompt: Pick
    options: [x, y]
    answerIndex: 2
    difficulty: easy
`,
			message: "question 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "bad.yaml")
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %T: %v", err, err)
			assert.Equal(t, "bad.yaml", verr.Source)
			assert.Equal(t, tt.message, verr.Message)
		})
	}
}

func TestParse_InvalidQuestionWrapsSentinel(t *testing.T) {
	doc := `id: a
family: custom
title: A
questions:
  - kind: ordered-sequence
    prompt: Order
    difficulty: easy
`
	_, err := Parse([]byte(doc), "a.yaml")
	assert.ErrorIs(t, err, assessment.ErrInvalidArgument)
}

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "animals.yaml")
	require.NoError(t, os.WriteFile(p, []byte(customYAML), 0o644))

	b, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "Animal Words", b.Title)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
