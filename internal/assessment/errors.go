package assessment

import "errors"

var (
	// ErrInvalidArgument reports a contract violation in the input: an
	// unknown question kind, an empty result list, a malformed question.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState reports an operation attempted in the wrong phase,
	// such as a submission outside the response phase.
	ErrInvalidState = errors.New("invalid state")
)
