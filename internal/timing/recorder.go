package timing

import (
	"fmt"
	"time"

	"github.com/abhisek/lexiscreen/internal/assessment"
)

// Clock supplies the current time and schedules callbacks.
//
// time.Now readings carry a monotonic clock component and Time.Sub uses it
// when both operands have one, so elapsed times measured through SystemClock
// are immune to wall-clock adjustments.
type Clock interface {
	Now() time.Time
	// AfterFunc runs f once after d elapses. The returned function cancels
	// the callback and reports whether it was stopped before firing.
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

// SystemClock is the real clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Recorder measures the time between the start of a response phase and the
// submission. It is not safe for concurrent use.
type Recorder struct {
	clock   Clock
	started time.Time
	running bool
}

// NewRecorder creates a Recorder. A nil clock uses SystemClock.
func NewRecorder(clock Clock) *Recorder {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Recorder{clock: clock}
}

// Start marks the beginning of a measurement. Calling Start again resets
// the start point.
func (r *Recorder) Start() {
	r.started = r.clock.Now()
	r.running = true
}

// Stop ends the measurement and returns the elapsed seconds. It fails with
// ErrInvalidState when Start was not called first.
func (r *Recorder) Stop() (float64, error) {
	if !r.running {
		return 0, fmt.Errorf("%w: timing stopped without start", assessment.ErrInvalidState)
	}
	r.running = false

	elapsed := r.clock.Now().Sub(r.started)
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed.Seconds(), nil
}

// Running reports whether a measurement is in progress.
func (r *Recorder) Running() bool {
	return r.running
}
