package battery

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no battery has the requested ID.
var ErrNotFound = errors.New("battery not found")

// ValidationError describes why a battery definition was rejected.
type ValidationError struct {
	Source  string // file name or embedded path
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("battery %s: %s: %v", e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("battery %s: %s", e.Source, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
