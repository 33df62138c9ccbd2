package runner

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lexiscreen/internal/assessment"
	"github.com/abhisek/lexiscreen/internal/battery"
	"github.com/abhisek/lexiscreen/internal/risk"
	"github.com/abhisek/lexiscreen/internal/store"
	"github.com/abhisek/lexiscreen/internal/timing"
)

var start = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func choiceBattery() *battery.Battery {
	return &battery.Battery{
		ID:         "tiny",
		Family:     battery.FamilyCustom,
		Title:      "Tiny Test",
		AgeBand:    "standard",
		Thresholds: risk.DefaultThresholds(),
		Questions: []assessment.Question{
			{Kind: assessment.KindSingleChoice, Prompt: "Pick cat", Options: []string{"dog", "cat", "cow"}, AnswerIndex: 1, Difficulty: assessment.DifficultyEasy},
			{Kind: assessment.KindSpellingBlank, Prompt: "Spell it", Sentence: "The ___ barked.", Hint: "a pet", AnswerText: "dog", Difficulty: assessment.DifficultyEasy},
		},
	}
}

func timedBattery() *battery.Battery {
	return &battery.Battery{
		ID:         "recall",
		Family:     battery.FamilyMemory,
		Title:      "Recall",
		AgeBand:    "standard",
		Thresholds: risk.DefaultThresholds(),
		Questions: []assessment.Question{{
			Kind:                 assessment.KindOrderedSequence,
			Prompt:               "Repeat the digits",
			Stimulus:             []string{"3", "7", "2"},
			AnswerItems:          []string{"3", "7", "2"},
			Difficulty:           assessment.DifficultyEasy,
			PresentationDuration: 5 * time.Second,
		}},
	}
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "runner.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRun_CompletesAndSaves(t *testing.T) {
	st := openStore(t)
	var out bytes.Buffer
	r := New(Options{
		In:      strings.NewReader("9\n2\n DOG \n"),
		Out:     &out,
		Clock:   timing.NewFakeClock(start),
		Results: st.ResultRepo(),
		Events:  st.EventRepo(),
	})

	rec, err := r.Run(context.Background(), choiceBattery())
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "tiny", rec.Test)
	assert.Equal(t, 2, rec.CorrectAnswers)
	assert.Equal(t, risk.Low, rec.RiskLevel)
	assert.Len(t, rec.QuestionResults, 2)

	text := ansi.Strip(out.String())
	assert.Contains(t, text, "Tiny Test")
	assert.Contains(t, text, "Question 1 of 2")
	assert.Contains(t, text, "2) cat")
	assert.Contains(t, text, "choose a number from 1 to 3")
	assert.Contains(t, text, "The ___ barked.")
	assert.Contains(t, text, "Hint: a pet")

	latest, err := st.ResultRepo().Latest(context.Background(), "tiny")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, rec.ID, latest.ID)

	events, err := st.EventRepo().SessionEvents(context.Background(), rec.ID)
	require.NoError(t, err)
	var phases []string
	for _, ev := range events {
		phases = append(phases, ev.Phase)
	}
	assert.Equal(t, []string{
		"presenting", "responding", "graded",
		"presenting", "responding", "graded",
		"complete",
	}, phases)
}

func TestRun_InputClosedAbandons(t *testing.T) {
	st := openStore(t)
	r := New(Options{
		In:      strings.NewReader("2\n"),
		Out:     io.Discard,
		Clock:   timing.NewFakeClock(start),
		Results: st.ResultRepo(),
	})

	rec, err := r.Run(context.Background(), choiceBattery())
	assert.ErrorIs(t, err, ErrInputClosed)
	assert.Nil(t, rec)

	latest, err := st.ResultRepo().Latest(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestRun_EnterSkipsCountdown(t *testing.T) {
	clock := timing.NewFakeClock(start)
	var out bytes.Buffer
	r := New(Options{
		In:    strings.NewReader("\n3, 7, 2\n"),
		Out:   &out,
		Clock: clock,
	})

	rec, err := r.Run(context.Background(), timedBattery())
	require.NoError(t, err)
	assert.Equal(t, 1, rec.CorrectAnswers)
	assert.Equal(t, 0, clock.Pending())

	text := ansi.Strip(out.String())
	assert.Contains(t, text, "3  7  2")
	assert.NotContains(t, text, "Time is up.")
}

func TestRun_CountdownOpensResponse(t *testing.T) {
	clock := timing.NewFakeClock(start)
	pr, pw := io.Pipe()
	var out bytes.Buffer
	r := New(Options{In: pr, Out: &out, Clock: clock})

	type result struct {
		correct int
		err     error
	}
	done := make(chan result, 1)
	go func() {
		rec, err := r.Run(context.Background(), timedBattery())
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{correct: rec.CorrectAnswers}
	}()

	require.Eventually(t, func() bool { return clock.Pending() == 1 }, time.Second, time.Millisecond)
	clock.Advance(5 * time.Second)

	_, err := io.WriteString(pw, "3 2 7\n")
	require.NoError(t, err)
	pw.Close()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Equal(t, 0, res.correct)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not finish")
	}
	assert.Contains(t, ansi.Strip(out.String()), "Time is up.")
}

// A line typed while the countdown event is still queued answers the
// question instead of being dropped.
func TestRun_LineAfterCountdownAnswers(t *testing.T) {
	for i := range 25 {
		clock := timing.NewFakeClock(start)
		pr, pw := io.Pipe()
		r := New(Options{In: pr, Out: io.Discard, Clock: clock})

		type result struct {
			correct int
			err     error
		}
		done := make(chan result, 1)
		go func() {
			rec, err := r.Run(context.Background(), timedBattery())
			if err != nil {
				done <- result{err: err}
				return
			}
			done <- result{correct: rec.CorrectAnswers}
		}()

		require.Eventually(t, func() bool { return clock.Pending() == 1 }, time.Second, time.Millisecond)
		clock.Advance(5 * time.Second)
		_, err := io.WriteString(pw, "3 7 2\n")
		require.NoError(t, err)
		pw.Close()

		select {
		case res := <-done:
			require.NoError(t, res.err, "iteration %d", i)
			assert.Equal(t, 1, res.correct, "iteration %d", i)
		case <-time.After(2 * time.Second):
			t.Fatalf("iteration %d: runner did not finish", i)
		}
		r.Close()
	}
}

type endlessLines struct{}

func (endlessLines) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = '\n'
	}
	return len(p), nil
}

func TestClose_StopsReader(t *testing.T) {
	r := New(Options{In: endlessLines{}, Out: io.Discard, Clock: timing.NewFakeClock(start)})
	r.Close()
	r.Close()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-r.lines:
			return !ok
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}

func TestRun_ContextCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	r := New(Options{In: pr, Out: io.Discard, Clock: timing.NewFakeClock(start)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, choiceBattery())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseAnswer(t *testing.T) {
	choice := &assessment.Question{Kind: assessment.KindSingleChoice, Options: []string{"red", "blue"}}
	seq := &assessment.Question{Kind: assessment.KindOrderedSequence}
	spell := &assessment.Question{Kind: assessment.KindSpellingBlank}

	tests := []struct {
		name    string
		q       *assessment.Question
		line    string
		want    assessment.Submission
		wantErr bool
	}{
		{"choice by number", choice, "2", assessment.ChoiceAnswer(1), false},
		{"choice by text", choice, " Blue ", assessment.ChoiceAnswer(1), false},
		{"choice out of range", choice, "3", assessment.Submission{}, true},
		{"choice unknown text", choice, "green", assessment.Submission{}, true},
		{"choice empty", choice, "", assessment.Submission{}, true},
		{"items by comma", seq, "big cat, dog ,,", assessment.ItemsAnswer("big cat", "dog"), false},
		{"items by space", seq, "3  7 2", assessment.ItemsAnswer("3", "7", "2"), false},
		{"items empty", seq, "  ", assessment.Submission{Items: []string{}}, false},
		{"spelling", spell, "  house ", assessment.TextAnswer("house"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAnswer(tt.q, tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
