// Package runner drives a test session over a line-oriented terminal.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/abhisek/lexiscreen/internal/assessment"
	"github.com/abhisek/lexiscreen/internal/battery"
	"github.com/abhisek/lexiscreen/internal/logger"
	"github.com/abhisek/lexiscreen/internal/record"
	"github.com/abhisek/lexiscreen/internal/session"
	"github.com/abhisek/lexiscreen/internal/store"
	"github.com/abhisek/lexiscreen/internal/timing"
	"github.com/abhisek/lexiscreen/internal/ui/components"
	"github.com/abhisek/lexiscreen/internal/ui/theme"
)

// ErrInputClosed is returned when input ends before the last answer.
var ErrInputClosed = errors.New("input closed before the test finished")

// Options configures a Runner. In and Out are required.
type Options struct {
	In  io.Reader
	Out io.Writer

	Clock   timing.Clock
	Results store.ResultRepo // completed records are saved here when set
	Events  store.EventRepo  // phase changes are recorded here when set
	Log     *logger.Logger
	Width   int
}

// Runner asks the questions of a battery one at a time and collects the
// answers typed by the test taker.
type Runner struct {
	lines   <-chan string
	done    chan struct{}
	once    sync.Once
	out     io.Writer
	clock   timing.Clock
	results store.ResultRepo
	events  store.EventRepo
	log     *logger.Logger
	width   int
}

// New creates a Runner and starts reading lines from opts.In.
func New(opts Options) *Runner {
	if opts.Clock == nil {
		opts.Clock = timing.SystemClock{}
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Width <= 0 {
		opts.Width = 60
	}

	lines := make(chan string)
	done := make(chan struct{})
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(opts.In)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
	}()

	return &Runner{
		lines:   lines,
		done:    done,
		out:     opts.Out,
		clock:   opts.Clock,
		results: opts.Results,
		events:  opts.Events,
		log:     opts.Log,
		width:   opts.Width,
	}
}

// Close stops the goroutine reading opts.In once its current read returns.
// A read blocked on an open terminal is not interrupted. Close is safe to
// call more than once; Run must not be called afterwards.
func (r *Runner) Close() {
	r.once.Do(func() { close(r.done) })
}

// Run takes b from the first question to the last and returns the stored
// record. Cancelling ctx abandons the run.
func (r *Runner) Run(ctx context.Context, b *battery.Battery) (*record.Record, error) {
	// At most four phase changes per question plus the final one.
	phases := make(chan session.Event, 4*len(b.Questions)+4)
	s, err := session.New(b.Questions, session.Options{
		Clock:      r.clock,
		Classifier: b.Classifier(),
		OnPhase:    func(ev session.Event) { phases <- ev },
	})
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", b.ID, err)
	}

	log := r.log.With("test", b.ID, "session", s.ID())
	log.Info("test started", "questions", s.Total())

	t := &turn{Runner: r, ctx: ctx, b: b, s: s, phases: phases, log: log}
	if err := t.run(); err != nil {
		s.Abandon()
		t.drain()
		log.Warn("test abandoned", "question", s.Index(), "error", err)
		return nil, err
	}

	rec, err := record.FromSession(b, s)
	if err != nil {
		return nil, err
	}
	log.Info("test completed",
		"level", rec.RiskLevel.String(),
		"accuracy", rec.AccuracyPercent,
		"factors", len(rec.RiskFactors),
	)

	if r.results != nil {
		if err := r.results.Save(ctx, rec); err != nil {
			return rec, fmt.Errorf("save result: %w", err)
		}
	}
	return rec, nil
}

// turn holds the state of one Run call.
type turn struct {
	*Runner
	ctx    context.Context
	b      *battery.Battery
	s      *session.Session
	phases chan session.Event
	log    *logger.Logger

	// carried is a line typed after the stimulus timer fired but before
	// its phase change was seen. It is the first answer candidate.
	carried *string
}

func (t *turn) run() error {
	r := t.Runner
	fmt.Fprintln(r.out, theme.Title.Render(t.b.Title))
	if t.b.Description != "" {
		fmt.Fprintln(r.out, theme.Hint.Render(t.b.Description))
	}

	for {
		t.drain()
		if t.s.Phase() == session.PhaseComplete {
			return nil
		}

		q := t.s.Question()
		t.showHeader(q)

		if q.Timed() {
			if err := t.present(q); err != nil {
				return err
			}
		} else if err := t.s.BeginResponse(); err != nil {
			return err
		}
		t.drain()

		if err := t.answer(q); err != nil {
			return err
		}
		if err := t.s.Advance(); err != nil {
			return err
		}
	}
}

// present shows a timed stimulus until its countdown ends or the test
// taker presses Enter.
func (t *turn) present(q assessment.Question) error {
	r := t.Runner
	fmt.Fprintln(r.out, theme.Card.Render(theme.Heading.Render(strings.Join(q.Stimulus, "  "))))
	fmt.Fprintln(r.out, theme.Hint.Render(fmt.Sprintf(
		"Memorise this. It disappears after %s, or press Enter when ready.", q.PresentationDuration)))

	skipped := false
	for {
		select {
		case ev := <-t.phases:
			t.recordPhase(ev)
			if ev.Phase == session.PhaseResponding {
				if !skipped {
					fmt.Fprintln(r.out, theme.Hint.Render("Time is up."))
				}
				return nil
			}
		case line, ok := <-r.lines:
			if !ok {
				return ErrInputClosed
			}
			err := t.s.BeginResponse()
			switch {
			case err == nil:
				skipped = true
			case errors.Is(err, assessment.ErrInvalidState):
				// The timer fired first and its event is still queued, so the
				// line answers the question rather than skipping the stimulus.
				fmt.Fprintln(r.out, theme.Hint.Render("Time is up."))
				if strings.TrimSpace(line) != "" {
					t.carried = &line
				}
				return nil
			default:
				return err
			}
		case <-t.ctx.Done():
			return t.ctx.Err()
		}
	}
}

// answer reads lines until one parses as a submission for q, then submits
// it.
func (t *turn) answer(q assessment.Question) error {
	r := t.Runner
	for {
		fmt.Fprint(r.out, theme.Subtitle.Render("> "))
		line, err := t.readLine()
		if err != nil {
			return err
		}

		sub, perr := ParseAnswer(&q, line)
		if perr != nil {
			fmt.Fprintln(r.out, theme.Incorrect.Render(perr.Error()))
			continue
		}

		res, err := t.s.Submit(sub)
		if err != nil {
			return err
		}
		t.log.Debug("answer graded",
			"question", res.QuestionIndex,
			"correct", res.IsCorrect,
			"partial", res.PartialScore,
			"seconds", res.TimeSpentSeconds,
		)
		return nil
	}
}

func (t *turn) readLine() (string, error) {
	if t.carried != nil {
		line := *t.carried
		t.carried = nil
		fmt.Fprintln(t.out, line)
		return line, nil
	}
	for {
		select {
		case ev := <-t.phases:
			t.recordPhase(ev)
		case line, ok := <-t.lines:
			if !ok {
				return "", ErrInputClosed
			}
			return line, nil
		case <-t.ctx.Done():
			return "", t.ctx.Err()
		}
	}
}

func (t *turn) showHeader(q assessment.Question) {
	r := t.Runner
	p := session.BuildProgress(t.s)
	bar := components.NewProgressBar(
		fmt.Sprintf("Question %d of %d", t.s.Index()+1, p.Total),
		p.Fraction()*100, false, r.width)

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, bar.View())
	fmt.Fprintln(r.out, theme.Body.Render(q.Prompt))
	if q.Sentence != "" {
		fmt.Fprintln(r.out, theme.Body.Render(q.Sentence))
	}
	if q.Hint != "" {
		fmt.Fprintln(r.out, theme.Hint.Render("Hint: "+q.Hint))
	}

	switch q.Kind {
	case assessment.KindSingleChoice:
		for i, o := range q.Options {
			fmt.Fprintf(r.out, "  %d) %s\n", i+1, o)
		}
		fmt.Fprintln(r.out, theme.Hint.Render("Type the number of your answer."))
	case assessment.KindOrderedSequence:
		if len(q.Options) > 0 {
			fmt.Fprintln(r.out, "  "+strings.Join(q.Options, "  "))
		}
		fmt.Fprintln(r.out, theme.Hint.Render("Type the items in order, separated by commas or spaces."))
	case assessment.KindFreeRecall:
		fmt.Fprintln(r.out, theme.Hint.Render("Type every item you remember, separated by commas or spaces."))
	case assessment.KindSpellingBlank:
		fmt.Fprintln(r.out, theme.Hint.Render("Type the missing word."))
	}
}

// drain records every queued phase change without blocking.
func (t *turn) drain() {
	for {
		select {
		case ev := <-t.phases:
			t.recordPhase(ev)
		default:
			return
		}
	}
}

func (t *turn) recordPhase(ev session.Event) {
	if t.events == nil {
		return
	}
	err := t.events.AppendPhaseEvent(t.ctx, store.PhaseEventData{
		SessionID:     t.s.ID(),
		Test:          t.b.ID,
		Phase:         ev.Phase.String(),
		QuestionIndex: ev.QuestionIndex,
		At:            t.clock.Now(),
	})
	if err != nil {
		t.log.Warn("record phase event", "phase", ev.Phase.String(), "error", err)
	}
}

// ParseAnswer turns one input line into a submission for q. An error means
// the line should be asked for again; nothing has been submitted.
func ParseAnswer(q *assessment.Question, line string) (assessment.Submission, error) {
	line = strings.TrimSpace(line)

	switch q.Kind {
	case assessment.KindSingleChoice:
		if n, err := strconv.Atoi(line); err == nil {
			if n < 1 || n > len(q.Options) {
				return assessment.Submission{}, fmt.Errorf("choose a number from 1 to %d", len(q.Options))
			}
			return assessment.ChoiceAnswer(n - 1), nil
		}
		for i, o := range q.Options {
			if line != "" && strings.EqualFold(o, line) {
				return assessment.ChoiceAnswer(i), nil
			}
		}
		return assessment.Submission{}, fmt.Errorf("choose a number from 1 to %d", len(q.Options))

	case assessment.KindOrderedSequence, assessment.KindFreeRecall:
		return assessment.ItemsAnswer(splitItems(line)...), nil

	case assessment.KindSpellingBlank:
		return assessment.TextAnswer(line), nil
	}
	return assessment.Submission{}, fmt.Errorf("%w: unknown question kind %q", assessment.ErrInvalidArgument, q.Kind)
}

// splitItems splits on commas when present, otherwise on whitespace.
func splitItems(line string) []string {
	var parts []string
	if strings.Contains(line, ",") {
		parts = strings.Split(line, ",")
	} else {
		parts = strings.Fields(line)
	}

	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}
