package session

import (
	"github.com/abhisek/lexiscreen/internal/record"
	sess "github.com/abhisek/lexiscreen/internal/session"
)

// phaseMsg carries a phase change from the running session.
type phaseMsg sess.Event

// countdownMsg refreshes the remaining presentation time of question index.
type countdownMsg struct {
	index int
}

// savedMsg is sent once the completed record has been persisted.
type savedMsg struct {
	rec *record.Record
	err error
}
