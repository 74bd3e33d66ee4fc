package process

// State represents where the current exchange is in its lifecycle
type State string

const (
	// StateIdle indicates no exchange is in flight
	StateIdle State = ""

	// StateSending indicates an attempt is connecting to a candidate
	StateSending State = "sending"

	// StateThinking indicates the request was accepted and no content has arrived yet
	StateThinking State = "thinking"

	// StateReceiving indicates reply content is arriving
	StateReceiving State = "receiving"

	// StateFailed indicates every candidate was exhausted
	StateFailed State = "failed"
)

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// GetIcon returns the appropriate icon for a given process state
func (s State) GetIcon() string {
	switch s {
	case StateSending:
		return "↑"
	case StateReceiving:
		return "↓"
	case StateThinking:
		return "🤔"
	case StateFailed:
		return "✗"
	default:
		return ""
	}
}

// GetDisplayName returns a human-readable name for the state
func (s State) GetDisplayName() string {
	switch s {
	case StateSending:
		return "Connecting"
	case StateReceiving:
		return "Receiving"
	case StateThinking:
		return "Thinking"
	case StateFailed:
		return "Failed"
	case StateIdle:
		return "Idle"
	default:
		return ""
	}
}

// IsActive reports whether an exchange is in flight
func (s State) IsActive() bool {
	return s == StateSending || s == StateThinking || s == StateReceiving
}
