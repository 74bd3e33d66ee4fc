package status

import (
	"time"

	"github.com/killallgit/liftchat/pkg/process"
)

// StartMsg marks the beginning of an exchange
type StartMsg struct {
	State process.State
}

// SetStateMsg moves the bar to another state of the current exchange
type SetStateMsg struct {
	State process.State
}

// StopMsg ends the exchange; a failed one leaves the failure visible
type StopMsg struct {
	Failed bool
}

// SessionMsg sets the session shown at the right of the bar
type SessionMsg struct {
	SessionID string
}

// TickMsg updates the timer
type TickMsg time.Time
