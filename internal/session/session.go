package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/lexiscreen/internal/assessment"
	"github.com/abhisek/lexiscreen/internal/grading"
	"github.com/abhisek/lexiscreen/internal/risk"
	"github.com/abhisek/lexiscreen/internal/timing"
	"github.com/google/uuid"
)

// Options configures a Session. Zero values select defaults.
type Options struct {
	// Clock drives response timing and presentation timers.
	Clock timing.Clock

	// Grader scores submissions (default cutoffs when nil).
	Grader *grading.Grader

	// Classifier produces the final assessment (default config when nil).
	Classifier *risk.Classifier

	// OnPhase is called after every phase change, outside the session lock.
	// Timed presentations end on a timer goroutine, so OnPhase may be
	// called from a goroutine other than the caller's.
	OnPhase func(Event)
}

// Session runs one test: it walks the questions in order, times and grades
// each response, and classifies the results once the last one is graded.
//
// A Session is owned by a single test run and must not be reused. Its
// methods are safe to call while a presentation timer is pending.
type Session struct {
	mu sync.Mutex

	id         string
	questions  []assessment.Question
	index      int
	phase      Phase
	results    []assessment.QuestionResult
	assessment *risk.Assessment

	clock      timing.Clock
	recorder   *timing.Recorder
	grader     *grading.Grader
	classifier *risk.Classifier
	onPhase    func(Event)

	// timerGen identifies the live presentation timer. A timer whose
	// generation no longer matches has been superseded and does nothing.
	timerGen  uint64
	stopTimer func() bool

	startedAt   time.Time
	completedAt time.Time
}

// New validates the questions and starts the run by presenting the first
// question. Timed questions move to the response phase on their own once
// their presentation duration elapses.
func New(questions []assessment.Question, opts Options) (*Session, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: session needs at least one question", assessment.ErrInvalidArgument)
	}
	for i := range questions {
		if err := questions[i].Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
	}

	if opts.Clock == nil {
		opts.Clock = timing.SystemClock{}
	}
	if opts.Grader == nil {
		opts.Grader = grading.New(grading.DefaultConfig())
	}
	if opts.Classifier == nil {
		opts.Classifier = risk.New(risk.DefaultConfig())
	}

	s := &Session{
		id:         uuid.New().String(),
		questions:  append([]assessment.Question(nil), questions...),
		clock:      opts.Clock,
		recorder:   timing.NewRecorder(opts.Clock),
		grader:     opts.Grader,
		classifier: opts.Classifier,
		onPhase:    opts.OnPhase,
		results:    make([]assessment.QuestionResult, 0, len(questions)),
	}

	s.mu.Lock()
	s.startedAt = s.clock.Now()
	ev := s.presentLocked(0)
	s.mu.Unlock()

	s.emit(ev)
	return s, nil
}

// ID returns the unique run identifier.
func (s *Session) ID() string { return s.id }

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Index returns the position of the current question.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Total returns the number of questions in the run.
func (s *Session) Total() int { return len(s.questions) }

// Question returns a copy of the current question.
func (s *Session) Question() assessment.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questions[s.index]
}

// Results returns a copy of the results recorded so far.
func (s *Session) Results() []assessment.QuestionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]assessment.QuestionResult(nil), s.results...)
}

// BeginResponse opens the response phase for the current question. For a
// timed question this skips the rest of the countdown.
func (s *Session) BeginResponse() error {
	s.mu.Lock()
	if s.phase != PhasePresenting {
		phase := s.phase
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot begin response while %s", assessment.ErrInvalidState, phase)
	}
	s.cancelTimerLocked()
	ev := s.respondLocked()
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// Submit grades the answer to the current question and records the result.
// It is accepted exactly once per question, during the response phase;
// any other call fails with ErrInvalidState.
func (s *Session) Submit(sub assessment.Submission) (assessment.QuestionResult, error) {
	s.mu.Lock()
	if s.phase != PhaseResponding {
		phase := s.phase
		s.mu.Unlock()
		return assessment.QuestionResult{}, fmt.Errorf("%w: cannot submit while %s", assessment.ErrInvalidState, phase)
	}

	q := &s.questions[s.index]
	verdict, err := s.grader.Grade(q, sub)
	if err != nil {
		s.mu.Unlock()
		return assessment.QuestionResult{}, fmt.Errorf("grade question %d: %w", s.index, err)
	}
	secs, err := s.recorder.Stop()
	if err != nil {
		s.mu.Unlock()
		return assessment.QuestionResult{}, fmt.Errorf("time question %d: %w", s.index, err)
	}

	result := assessment.QuestionResult{
		QuestionIndex:    s.index,
		Kind:             q.Kind,
		IsCorrect:        verdict.IsCorrect,
		PartialScore:     verdict.PartialScore,
		MaxScore:         verdict.MaxScore,
		TimeSpentSeconds: secs,
		Difficulty:       q.Difficulty,
	}
	s.results = append(s.results, result)
	s.phase = PhaseGraded
	ev := Event{Phase: PhaseGraded, QuestionIndex: s.index}
	s.mu.Unlock()

	s.emit(ev)
	return result, nil
}

// Advance moves past a graded question: to the next question's presentation,
// or to completion after the last one. Completion runs the classifier.
func (s *Session) Advance() error {
	s.mu.Lock()
	if s.phase != PhaseGraded {
		phase := s.phase
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot advance while %s", assessment.ErrInvalidState, phase)
	}

	if s.index+1 < len(s.questions) {
		ev := s.presentLocked(s.index + 1)
		s.mu.Unlock()
		s.emit(ev)
		return nil
	}

	a, err := s.classifier.Classify(s.results)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("classify results: %w", err)
	}
	s.assessment = a
	s.phase = PhaseComplete
	s.completedAt = s.clock.Now()
	ev := Event{Phase: PhaseComplete, QuestionIndex: s.index}
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// Assessment returns the classification of a completed run.
func (s *Session) Assessment() (*risk.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseComplete {
		return nil, fmt.Errorf("%w: assessment unavailable while %s", assessment.ErrInvalidState, s.phase)
	}
	return s.assessment, nil
}

// Abandon discards an unfinished run and cancels any pending presentation
// timer. Abandoning a finished run has no effect.
func (s *Session) Abandon() {
	s.mu.Lock()
	if s.phase.Terminal() {
		s.mu.Unlock()
		return
	}
	s.cancelTimerLocked()
	s.phase = PhaseAbandoned
	ev := Event{Phase: PhaseAbandoned, QuestionIndex: s.index}
	s.mu.Unlock()

	s.emit(ev)
}

// Elapsed returns the wall time from start to completion, or to now for a
// run still in progress.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseComplete {
		return s.completedAt.Sub(s.startedAt)
	}
	return s.clock.Now().Sub(s.startedAt)
}

// StartedAt returns when the run began.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// presentLocked enters the presentation phase for question i and arms the
// presentation timer when the question is timed.
func (s *Session) presentLocked(i int) Event {
	s.index = i
	s.phase = PhasePresenting

	if q := &s.questions[i]; q.Timed() {
		s.timerGen++
		gen := s.timerGen
		s.stopTimer = s.clock.AfterFunc(q.PresentationDuration, func() {
			s.presentationElapsed(gen)
		})
	}
	return Event{Phase: PhasePresenting, QuestionIndex: i}
}

// respondLocked enters the response phase and starts timing.
func (s *Session) respondLocked() Event {
	s.phase = PhaseResponding
	s.recorder.Start()
	return Event{Phase: PhaseResponding, QuestionIndex: s.index}
}

// presentationElapsed is the timer callback for timed presentations.
func (s *Session) presentationElapsed(gen uint64) {
	s.mu.Lock()
	if gen != s.timerGen || s.phase != PhasePresenting {
		s.mu.Unlock()
		return
	}
	s.stopTimer = nil
	ev := s.respondLocked()
	s.mu.Unlock()

	s.emit(ev)
}

func (s *Session) cancelTimerLocked() {
	s.timerGen++
	if s.stopTimer != nil {
		s.stopTimer()
		s.stopTimer = nil
	}
}

func (s *Session) emit(ev Event) {
	if s.onPhase != nil {
		s.onPhase(ev)
	}
}
