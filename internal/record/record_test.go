package record

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/abhisek/lexiscreen/internal/assessment"
	"github.com/abhisek/lexiscreen/internal/battery"
	"github.com/abhisek/lexiscreen/internal/risk"
	"github.com/abhisek/lexiscreen/internal/session"
	"github.com/abhisek/lexiscreen/internal/timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 4, 2, 15, 30, 0, 0, time.UTC)

func spellingBattery() *battery.Battery {
	return &battery.Battery{
		ID:         "spelling",
		Family:     battery.FamilySpelling,
		Title:      "Spelling",
		AgeBand:    "standard",
		Thresholds: risk.Thresholds{Easy: 15, Medium: 25, Hard: 35},
		Questions: []assessment.Question{
			{Kind: assessment.KindSpellingBlank, Prompt: "Fill in", AnswerText: "because", Difficulty: assessment.DifficultyEasy},
			{Kind: assessment.KindSpellingBlank, Prompt: "Fill in", AnswerText: "rhythm", Difficulty: assessment.DifficultyHard},
		},
	}
}

func completedSession(t *testing.T, b *battery.Battery, answers ...string) *session.Session {
	t.Helper()
	clock := timing.NewFakeClock(start)
	s, err := session.New(b.Questions, session.Options{Clock: clock, Classifier: b.Classifier()})
	require.NoError(t, err)

	for _, a := range answers {
		require.NoError(t, s.BeginResponse())
		clock.Advance(4 * time.Second)
		_, err := s.Submit(assessment.TextAnswer(a))
		require.NoError(t, err)
		require.NoError(t, s.Advance())
	}
	return s
}

func TestFromSession(t *testing.T) {
	b := spellingBattery()
	s := completedSession(t, b, "Because ", "rythm")

	r, err := FromSession(b, s)
	require.NoError(t, err)

	assert.Equal(t, s.ID(), r.ID)
	assert.Equal(t, "spelling", r.Test)
	assert.Equal(t, "Spelling", r.Title)
	assert.Equal(t, start, r.TakenAt)
	assert.Equal(t, 50.0, r.AccuracyPercent)
	assert.Equal(t, 1, r.CorrectAnswers)
	assert.Equal(t, 2, r.TotalQuestions)
	require.Len(t, r.QuestionResults, 2)
	assert.False(t, r.QuestionResults[1].IsCorrect)
}

func TestFromSession_Incomplete(t *testing.T) {
	b := spellingBattery()
	s := completedSession(t, b, "because")

	_, err := FromSession(b, s)
	assert.ErrorIs(t, err, assessment.ErrInvalidState)
}

func TestEncode_Shape(t *testing.T) {
	b := spellingBattery()
	r, err := FromSession(b, completedSession(t, b, "because", "rhythm"))
	require.NoError(t, err)

	data, err := Encode(r)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{
		"id", "test", "title", "ageBand", "takenAt",
		"accuracyPercent", "partialAccuracyPercent", "averageTimeSeconds", "timeScorePercent",
		"riskFactors", "riskLevel", "correctAnswers", "totalQuestions", "questionResults",
	} {
		assert.Contains(t, m, key)
	}
	assert.Equal(t, "Low", m["riskLevel"])
	assert.Equal(t, []any{}, m["riskFactors"])

	back, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, r.Assessment, back.Assessment)
	assert.Equal(t, r.QuestionResults, back.QuestionResults)
	assert.True(t, r.TakenAt.Equal(back.TakenAt))
}

func TestDecode_Malformed(t *testing.T) {
	valid := map[string]any{
		"id":                     "abc",
		"test":                   "reading",
		"takenAt":                "2025-04-02T15:30:00Z",
		"accuracyPercent":        50,
		"partialAccuracyPercent": 50,
		"averageTimeSeconds":     4,
		"timeScorePercent":       100,
		"riskFactors":            []any{},
		"riskLevel":              "Moderate",
		"correctAnswers":         1,
		"totalQuestions":         2,
		"questionResults":        []any{},
	}

	raw, err := json.Marshal(valid)
	require.NoError(t, err)
	r, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, risk.Moderate, r.RiskLevel)

	tests := []struct {
		name   string
		mutate func(m map[string]any)
	}{
		{"missing level", func(m map[string]any) { delete(m, "riskLevel") }},
		{"unknown level", func(m map[string]any) { m["riskLevel"] = "Severe" }},
		{"percent out of range", func(m map[string]any) { m["accuracyPercent"] = 150 }},
		{"factors not a list", func(m map[string]any) { m["riskFactors"] = "slow" }},
		{"zero questions", func(m map[string]any) { m["totalQuestions"] = 0 }},
		{"bad result difficulty", func(m map[string]any) {
			m["questionResults"] = []any{map[string]any{
				"questionIndex": 0, "isCorrect": true, "partialScore": 1,
				"maxScore": 1, "timeSpentSeconds": 2, "difficulty": "trivial",
			}}
		}},
		{"bad timestamp", func(m map[string]any) { m["takenAt"] = "yesterday" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := make(map[string]any, len(valid))
			for k, v := range valid {
				m[k] = v
			}
			tt.mutate(m)
			data, err := json.Marshal(m)
			require.NoError(t, err)

			_, err = Decode(data)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}

	_, err = Decode([]byte("{not json"))
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = Decode(nil)
	assert.ErrorIs(t, err, ErrMalformed)
}
