package chat

import (
	"sync"
	"time"

	"github.com/killallgit/liftchat/pkg/process"
)

// NoSourcesPlaceholder is shown in place of an empty source list
const NoSourcesPlaceholder = "No sources"

// View is the presentation the controller keeps in sync with an exchange.
// UpdateThinking is called from the ticker goroutine while the controller
// makes its own calls, so implementations must be safe for concurrent use.
type View interface {
	// AddMessage appends a complete message
	AddMessage(msg Message)

	// ShowThinking displays the placeholder shown before any content arrives
	ShowThinking()
	// UpdateThinking refreshes the placeholder with the time spent waiting
	UpdateThinking(elapsed time.Duration)
	// RemoveThinking removes the placeholder if it is shown
	RemoveThinking()

	// BeginAssistant starts an empty assistant message that streams in
	BeginAssistant()
	// UpdateAssistant replaces the streaming message with the full text so far
	UpdateAssistant(text string)
	// FinishAssistant marks the streaming message complete with its final text
	FinishAssistant(text string)

	// DisplaySources replaces the source list; an empty list shows the
	// placeholder
	DisplaySources(sources []Source)

	SetState(state process.State)
}

// Transcript is an in-memory View. It records the conversation the way a
// screen would show it and counts the calls that matter for an exchange.
type Transcript struct {
	mu sync.Mutex

	messages  []Message
	sources   []Source
	thinking  bool
	streaming bool
	state     process.State
	states    []process.State

	// Render counters
	thinkingUpdates  int
	assistantUpdates int
	terminalReplies  int
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) AddMessage(msg Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
	if msg.Sender == SenderBot {
		t.terminalReplies++
	}
}

func (t *Transcript) ShowThinking() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.thinking = true
}

func (t *Transcript) UpdateThinking(time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.thinking {
		t.thinkingUpdates++
	}
}

func (t *Transcript) RemoveThinking() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.thinking = false
}

func (t *Transcript) BeginAssistant() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, Message{Sender: SenderBot})
	t.streaming = true
}

func (t *Transcript) UpdateAssistant(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.streaming {
		return
	}
	t.messages[len(t.messages)-1].Text = text
	t.assistantUpdates++
}

func (t *Transcript) FinishAssistant(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.streaming {
		t.messages = append(t.messages, Message{Sender: SenderBot})
	}
	t.messages[len(t.messages)-1].Text = text
	t.streaming = false
	t.terminalReplies++
}

func (t *Transcript) DisplaySources(sources []Source) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sources = append([]Source(nil), sources...)
	if n := len(t.messages); n > 0 && t.messages[n-1].Sender == SenderBot {
		t.messages[n-1].Sources = t.sources
	}
}

func (t *Transcript) SetState(state process.State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
	t.states = append(t.states, state)
}

// Messages returns a copy of the conversation
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Message(nil), t.messages...)
}

// Sources returns the current source list
func (t *Transcript) Sources() []Source {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Source(nil), t.sources...)
}

// SourcesText is what a source panel shows: titles or the placeholder
func (t *Transcript) SourcesText() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.sources) == 0 {
		return []string{NoSourcesPlaceholder}
	}
	titles := make([]string, 0, len(t.sources))
	for _, s := range t.sources {
		titles = append(titles, s.Title)
	}
	return titles
}

// LastReply returns the most recent bot message
func (t *Transcript) LastReply() (Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Sender == SenderBot {
			return t.messages[i], true
		}
	}
	return Message{}, false
}

func (t *Transcript) Thinking() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.thinking
}

func (t *Transcript) State() process.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// States returns every state the view was put in, in order
func (t *Transcript) States() []process.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]process.State(nil), t.states...)
}

// TerminalReplies counts finished assistant messages, replies and errors alike
func (t *Transcript) TerminalReplies() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.terminalReplies
}

func (t *Transcript) AssistantUpdates() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.assistantUpdates
}

func (t *Transcript) ThinkingUpdates() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.thinkingUpdates
}

var _ View = (*Transcript)(nil)
