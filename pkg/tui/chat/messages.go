package chat

import (
	"time"

	core "github.com/killallgit/liftchat/pkg/chat"
	"github.com/killallgit/liftchat/pkg/process"
)

// Messages sent by ProgramView from the exchange goroutine into the event
// loop. Each one mirrors a chat.View call.
type (
	addMessageMsg struct {
		message core.Message
	}
	showThinkingMsg    struct{}
	thinkingElapsedMsg struct {
		elapsed time.Duration
	}
	removeThinkingMsg struct{}
	beginAssistantMsg struct{}
	updateAssistantMsg struct {
		text string
	}
	finishAssistantMsg struct {
		text string
	}
	sourcesMsg struct {
		sources []core.Source
	}
	stateMsg struct {
		state process.State
	}

	// exchangeDoneMsg is returned by the command running the exchange
	exchangeDoneMsg struct {
		result *core.Result
		err    error
	}
)

// nodeKind identifies how a transcript entry is drawn
type nodeKind int

const (
	nodeUser nodeKind = iota
	nodeAssistant
	nodeThinking
	nodeError
)

// messageNode is one entry of the transcript
type messageNode struct {
	kind      nodeKind
	text      string
	streaming bool
	elapsed   time.Duration
}
