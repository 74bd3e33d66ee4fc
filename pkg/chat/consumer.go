package chat

import (
	"encoding/json"
	"strings"

	"github.com/killallgit/liftchat/pkg/process"
	"go.uber.org/zap"
)

// streamChunk is the JSON payload of a data event
type streamChunk struct {
	Content string `json:"content"`
}

// streamConsumer accumulates one streaming attempt and mirrors it into the
// view. It is owned by a single attempt.
type streamConsumer struct {
	view         View
	stopThinking func()
	log          *zap.SugaredLogger

	content    strings.Builder
	started    bool
	chunkCount int
	skipped    int
}

func newStreamConsumer(view View, stopThinking func(), log *zap.SugaredLogger) *streamConsumer {
	return &streamConsumer{view: view, stopThinking: stopThinking, log: log}
}

// handle processes one event. It never fails the stream: bad frames are
// skipped and terminal events are acted on by the transport.
func (c *streamConsumer) handle(event StreamEvent) error {
	switch event.Kind {
	case EventOpen:
		c.view.SetState(process.StateThinking)
	case EventData:
		c.addChunk(event.Data)
	case EventError:
		c.log.Warnw("server error event", "message", event.Data, "content_length", c.content.Len())
	case EventHeartbeat, EventDone:
	}
	return nil
}

func (c *streamConsumer) addChunk(data string) {
	var chunk streamChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		c.skipped++
		c.log.Debugw("skipping malformed chunk", "error", err, "data", data)
		return
	}
	if chunk.Content == "" {
		return
	}

	if !c.started {
		c.stopThinking()
		c.view.RemoveThinking()
		c.view.BeginAssistant()
		c.view.SetState(process.StateReceiving)
		c.started = true
	}

	c.content.WriteString(chunk.Content)
	c.chunkCount++
	c.view.UpdateAssistant(Present(c.content.String()).Text)
}

// hasContent reports whether any content reached the view
func (c *streamConsumer) hasContent() bool {
	return c.started
}

func (c *streamConsumer) raw() string {
	return c.content.String()
}
