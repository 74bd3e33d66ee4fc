package chat

import (
	"context"
	"fmt"
)

// Mode selects how a candidate delivers its reply
type Mode int

const (
	ModeStreaming Mode = iota
	ModeBuffered
)

func (m Mode) String() string {
	switch m {
	case ModeStreaming:
		return "streaming"
	case ModeBuffered:
		return "buffered"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Candidate is one (base URL, mode) pair the fallback loop may try
type Candidate struct {
	BaseURL string
	Mode    Mode
}

func (c Candidate) String() string {
	return c.Mode.String() + " " + c.BaseURL
}

// Query is the payload sent to the backend for one exchange
type Query struct {
	Text      string `json:"query"`
	SessionID string `json:"session_id"`
}

// Sender identifies who authored a message
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one entry of the conversation as shown to the user
type Message struct {
	Sender  Sender   `json:"sender"`
	Text    string   `json:"text"`
	Sources []Source `json:"sources,omitempty"`
}

// Source is a document cited by a reply
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Reply is a complete answer from the buffered endpoint
type Reply struct {
	Text string
	// Sources is nil when the backend sent no structured list
	Sources []Source
}

// EventKind classifies a streaming event
type EventKind int

const (
	// EventOpen fires once when the response headers arrive
	EventOpen EventKind = iota
	EventData
	EventDone
	EventHeartbeat
	// EventError is an error event sent by the server
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventData:
		return "data"
	case EventDone:
		return "done"
	case EventHeartbeat:
		return "heartbeat"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// StreamEvent is one decoded event of a streaming reply
type StreamEvent struct {
	Kind EventKind
	Data string
	ID   string
}

// Transport performs single attempts against one base URL. Implementations
// must honour ctx cancellation and report context.Cause(ctx) when cut short.
type Transport interface {
	// Buffered sends q and waits for the complete reply
	Buffered(ctx context.Context, baseURL string, q Query) (Reply, error)
	// Stream sends q and calls handle for every event in order. It returns
	// nil only after a done event; a non-nil error from handle stops the
	// stream and is returned.
	Stream(ctx context.Context, baseURL string, q Query, handle func(StreamEvent) error) error
}
