// Package screens holds the dependencies shared by the TUI screens.
package screens

import (
	"github.com/abhisek/lexiscreen/internal/battery"
	"github.com/abhisek/lexiscreen/internal/logger"
	"github.com/abhisek/lexiscreen/internal/store"
	"github.com/abhisek/lexiscreen/internal/timing"
)

// Deps are the services screens read from and write to. Results and
// Events may be nil, in which case nothing is persisted.
type Deps struct {
	Tests   *battery.Registry
	Results store.ResultRepo
	Events  store.EventRepo
	Log     *logger.Logger
	Clock   timing.Clock
}

// WithDefaults fills unset optional fields.
func (d Deps) WithDefaults() Deps {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Clock == nil {
		d.Clock = timing.SystemClock{}
	}
	return d
}
