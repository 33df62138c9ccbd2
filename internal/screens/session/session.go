package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lexiscreen/internal/assessment"
	"github.com/abhisek/lexiscreen/internal/battery"
	"github.com/abhisek/lexiscreen/internal/record"
	"github.com/abhisek/lexiscreen/internal/router"
	"github.com/abhisek/lexiscreen/internal/runner"
	"github.com/abhisek/lexiscreen/internal/screen"
	"github.com/abhisek/lexiscreen/internal/screens"
	"github.com/abhisek/lexiscreen/internal/screens/result"
	sess "github.com/abhisek/lexiscreen/internal/session"
	"github.com/abhisek/lexiscreen/internal/store"
	"github.com/abhisek/lexiscreen/internal/ui/components"
	"github.com/abhisek/lexiscreen/internal/ui/layout"
)

// SessionScreen runs one test inside the TUI.
type SessionScreen struct {
	deps    screens.Deps
	battery *battery.Battery

	run    *sess.Session
	phases chan sess.Event

	phase       sess.Phase
	index       int
	question    assessment.Question
	presentedAt time.Time

	choice       components.Choice
	input        components.TextInput
	confirmEmpty bool // an empty answer was entered once; Enter again submits it
	hint         string

	confirmQuit bool
	saving      bool
	errMsg      string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.BackHandler = (*SessionScreen)(nil)

// New creates a SessionScreen for b. The run starts when the screen is
// pushed.
func New(deps screens.Deps, b *battery.Battery) *SessionScreen {
	return &SessionScreen{
		deps:    deps.WithDefaults(),
		battery: b,
		input:   components.NewTextInput("Type your answer...", 120),
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	// At most four phase changes per question plus the final one.
	s.phases = make(chan sess.Event, 4*len(s.battery.Questions)+4)
	run, err := sess.New(s.battery.Questions, sess.Options{
		Clock:      s.deps.Clock,
		Classifier: s.battery.Classifier(),
		OnPhase:    func(ev sess.Event) { s.phases <- ev },
	})
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.run = run
	s.deps.Log.Info("test started", "test", s.battery.ID, "session", run.ID())
	return s.waitPhase()
}

func (s *SessionScreen) Title() string {
	return s.battery.Title
}

// HandlesBack reports whether Esc should go to this screen rather than
// pop it.
func (s *SessionScreen) HandlesBack() bool {
	return s.run != nil && !s.phase.Terminal() && s.errMsg == ""
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "Stop test"},
			{Key: "N", Description: "Keep going"},
		}
	case s.phase == sess.PhasePresenting:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Ready"},
			{Key: "Esc", Description: "Stop"},
		}
	case s.phase == sess.PhaseResponding && s.question.Kind == assessment.KindSingleChoice:
		return []layout.KeyHint{
			{Key: "1-9", Description: "Answer"},
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Stop"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Stop"},
	}
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case phaseMsg:
		return s.handlePhase(sess.Event(msg))

	case countdownMsg:
		if s.phase == sess.PhasePresenting && msg.index == s.index {
			return s, countdown(s.index)
		}
		return s, nil

	case savedMsg:
		return s.handleSaved(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.phase == sess.PhaseResponding && s.question.Kind != assessment.KindSingleChoice {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// waitPhase delivers the next phase change as a message.
func (s *SessionScreen) waitPhase() tea.Cmd {
	ch := s.phases
	return func() tea.Msg {
		return phaseMsg(<-ch)
	}
}

func (s *SessionScreen) handlePhase(ev sess.Event) (screen.Screen, tea.Cmd) {
	s.recordPhase(ev)
	s.phase = ev.Phase
	s.index = ev.QuestionIndex

	switch ev.Phase {
	case sess.PhasePresenting:
		s.question = s.run.Question()
		s.presentedAt = s.deps.Clock.Now()
		s.hint = ""
		if s.question.Timed() {
			return s, tea.Batch(s.waitPhase(), countdown(s.index))
		}
		if err := s.run.BeginResponse(); err != nil {
			return s.fail(err)
		}
		return s, s.waitPhase()

	case sess.PhaseResponding:
		s.confirmEmpty = false
		if s.question.Kind == assessment.KindSingleChoice {
			s.choice = components.NewChoice(s.question.Options)
			return s, s.waitPhase()
		}
		s.input = components.NewTextInput(placeholder(s.question.Kind), 120)
		return s, tea.Batch(s.waitPhase(), s.input.Init())

	case sess.PhaseGraded:
		if err := s.run.Advance(); err != nil {
			return s.fail(err)
		}
		return s, s.waitPhase()

	case sess.PhaseComplete:
		s.saving = true
		return s, s.save()

	case sess.PhaseAbandoned:
		s.deps.Log.Info("test abandoned", "test", s.battery.ID, "session", s.run.ID(), "question", ev.QuestionIndex)
		if s.errMsg != "" {
			// Keep the error on screen; the next key pops.
			return s, nil
		}
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, s.waitPhase()
}

// save builds and stores the record off the UI goroutine.
func (s *SessionScreen) save() tea.Cmd {
	run, b, repo, log := s.run, s.battery, s.deps.Results, s.deps.Log
	return func() tea.Msg {
		rec, err := record.FromSession(b, run)
		if err != nil {
			return savedMsg{err: err}
		}
		log.Info("test completed", "test", b.ID, "session", run.ID(),
			"level", rec.RiskLevel.String(), "accuracy", rec.AccuracyPercent)
		if repo != nil {
			if err := repo.Save(context.Background(), rec); err != nil {
				return savedMsg{rec: rec, err: err}
			}
		}
		return savedMsg{rec: rec}
	}
}

func (s *SessionScreen) handleSaved(msg savedMsg) (screen.Screen, tea.Cmd) {
	s.saving = false
	if msg.rec == nil {
		return s.fail(msg.err)
	}
	warning := ""
	if msg.err != nil {
		s.deps.Log.Error("save result", "test", s.battery.ID, "error", msg.err)
		warning = "This result could not be saved."
	}
	next := result.New(msg.rec, warning)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.run == nil || s.saving {
		return s, nil
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			s.run.Abandon()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if key == "esc" {
		s.confirmQuit = true
		return s, nil
	}

	switch s.phase {
	case sess.PhasePresenting:
		if key == "enter" {
			// The countdown may already have ended; its event is queued.
			if err := s.run.BeginResponse(); err != nil && !errors.Is(err, assessment.ErrInvalidState) {
				return s.fail(err)
			}
		}
		return s, nil

	case sess.PhaseResponding:
		if s.question.Kind == assessment.KindSingleChoice {
			var cmd tea.Cmd
			s.choice, cmd = s.choice.Update(msg)
			if s.choice.Submitted {
				return s.submit(assessment.ChoiceAnswer(s.choice.Selected))
			}
			return s, cmd
		}
		if key == "enter" {
			return s.submitTyped()
		}
		s.confirmEmpty = false
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SessionScreen) submitTyped() (screen.Screen, tea.Cmd) {
	value := s.input.Value()
	sub, err := runner.ParseAnswer(&s.question, value)
	if err != nil {
		s.hint = err.Error()
		return s, nil
	}
	if isEmpty(sub) && !s.confirmEmpty {
		s.confirmEmpty = true
		s.hint = "Nothing typed. Press Enter again to skip this question."
		return s, nil
	}
	return s.submit(sub)
}

func (s *SessionScreen) submit(sub assessment.Submission) (screen.Screen, tea.Cmd) {
	res, err := s.run.Submit(sub)
	if err != nil {
		if errors.Is(err, assessment.ErrInvalidState) {
			return s, nil
		}
		return s.fail(err)
	}
	s.hint = ""
	s.deps.Log.Debug("answer graded", "test", s.battery.ID, "question", res.QuestionIndex,
		"correct", res.IsCorrect, "seconds", res.TimeSpentSeconds)
	return s, nil
}

func (s *SessionScreen) fail(err error) (screen.Screen, tea.Cmd) {
	s.deps.Log.Error("test failed", "test", s.battery.ID, "error", err)
	if s.run != nil {
		s.run.Abandon()
	}
	s.errMsg = fmt.Sprintf("Something went wrong: %v", err)
	return s, nil
}

func (s *SessionScreen) recordPhase(ev sess.Event) {
	if s.deps.Events == nil || s.run == nil {
		return
	}
	err := s.deps.Events.AppendPhaseEvent(context.Background(), store.PhaseEventData{
		SessionID:     s.run.ID(),
		Test:          s.battery.ID,
		Phase:         ev.Phase.String(),
		QuestionIndex: ev.QuestionIndex,
		At:            s.deps.Clock.Now(),
	})
	if err != nil {
		s.deps.Log.Warn("record phase event", "phase", ev.Phase.String(), "error", err)
	}
}

// remaining returns how long the current stimulus stays on screen.
func (s *SessionScreen) remaining() time.Duration {
	left := s.question.PresentationDuration - s.deps.Clock.Now().Sub(s.presentedAt)
	return max(left, 0)
}

func isEmpty(sub assessment.Submission) bool {
	return !sub.Chosen && len(sub.Items) == 0 && sub.Text == ""
}

func placeholder(k assessment.Kind) string {
	switch k {
	case assessment.KindSpellingBlank:
		return "Type the missing word..."
	case assessment.KindOrderedSequence:
		return "Type the items in order..."
	case assessment.KindFreeRecall:
		return "Type every item you remember..."
	}
	return "Type your answer..."
}

func countdown(index int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return countdownMsg{index: index}
	})
}
