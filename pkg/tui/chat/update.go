package chat

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	core "github.com/killallgit/liftchat/pkg/chat"
	"github.com/killallgit/liftchat/pkg/logger"
	"github.com/killallgit/liftchat/pkg/process"
	"github.com/killallgit/liftchat/pkg/tui/chat/status"
)

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowResize(msg.Width, msg.Height)
		m.statusBar, _ = m.statusBar.Update(msg)
		return m, nil

	case tea.KeyMsg:
		// All key handling happens in handleKeyMsg
		return handleKeyMsg(m, msg)

	case addMessageMsg:
		node := messageNode{kind: nodeAssistant, text: msg.message.Text}
		switch {
		case msg.message.Sender == core.SenderUser:
			node.kind = nodeUser
		case isFailureText(msg.message.Text):
			node.kind = nodeError
		}
		m.nodes = append(m.nodes, node)
		m.updateViewportContent()
		return m, nil

	case showThinkingMsg:
		m.nodes = append(m.nodes, messageNode{kind: nodeThinking})
		m.updateViewportContent()
		return m, nil

	case thinkingElapsedMsg:
		if i := m.lastNode(nodeThinking); i >= 0 {
			m.nodes[i].elapsed = msg.elapsed
			m.updateViewportContent()
		}
		return m, nil

	case removeThinkingMsg:
		if i := m.lastNode(nodeThinking); i >= 0 {
			m.nodes = append(m.nodes[:i], m.nodes[i+1:]...)
			m.updateViewportContent()
		}
		return m, nil

	case beginAssistantMsg:
		m.nodes = append(m.nodes, messageNode{kind: nodeAssistant, streaming: true})
		m.updateViewportContent()
		return m, nil

	case updateAssistantMsg:
		if i := m.streamingNode(); i >= 0 {
			m.nodes[i].text = msg.text
			m.updateViewportContent()
		}
		return m, nil

	case finishAssistantMsg:
		if i := m.streamingNode(); i >= 0 {
			m.nodes[i].text = msg.text
			m.nodes[i].streaming = false
		} else {
			m.nodes = append(m.nodes, messageNode{kind: nodeAssistant, text: msg.text})
		}
		m.updateViewportContent()
		return m, nil

	case sourcesMsg:
		m.sources = msg.sources
		m.hasSources = true
		m.updateViewportContent()
		return m, nil

	case stateMsg:
		switch msg.state {
		case process.StateIdle:
		case process.StateFailed:
			m.statusBar, _ = m.statusBar.Update(status.StopMsg{Failed: true})
		default:
			m.statusBar, _ = m.statusBar.Update(status.SetStateMsg{State: msg.state})
		}
		return m, nil

	case exchangeDoneMsg:
		m.busy = false
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		var exhausted *core.ExhaustedError
		failed := errors.As(msg.err, &exhausted)
		m.statusBar, _ = m.statusBar.Update(status.StopMsg{Failed: failed})
		if errors.Is(msg.err, core.ErrBusy) {
			m.notice = "Still waiting for the previous reply"
		}
		if msg.err != nil {
			logger.WithComponent("tui").Infow("exchange ended with error", "error", msg.err)
		}
		return m, nil

	default:
		// Update status bar (spinner and timer ticks)
		var statusCmd tea.Cmd
		m.statusBar, statusCmd = m.statusBar.Update(msg)
		cmds = append(cmds, statusCmd)

		// Update textarea for other messages (like blink cursor)
		var tiCmd tea.Cmd
		m.textarea, tiCmd = m.textarea.Update(msg)
		cmds = append(cmds, tiCmd)

		// Update viewport for other messages
		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		cmds = append(cmds, vpCmd)
	}

	return m, tea.Batch(cmds...)
}

// submit starts an exchange for text. The model tracks its own busy flag so
// a second Enter while waiting never reaches the controller.
func (m chatModel) submit(text string) (chatModel, tea.Cmd) {
	if m.busy {
		m.notice = "Still waiting for the previous reply"
		return m, nil
	}
	if m.sender == nil {
		m.notice = "Not connected"
		return m, nil
	}

	m.busy = true
	m.notice = ""
	m.textarea.Reset()
	m.textarea.SetHeight(1)
	m.updateViewportHeight()

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	sender := m.sender

	var startCmd tea.Cmd
	m.statusBar, startCmd = m.statusBar.Update(status.StartMsg{State: process.StateSending})

	run := func() tea.Msg {
		result, err := sender.Send(ctx, text)
		return exchangeDoneMsg{result: result, err: err}
	}
	return m, tea.Batch(startCmd, run)
}

func (m chatModel) lastNode(kind nodeKind) int {
	for i := len(m.nodes) - 1; i >= 0; i-- {
		if m.nodes[i].kind == kind {
			return i
		}
	}
	return -1
}

func (m chatModel) streamingNode() int {
	for i := len(m.nodes) - 1; i >= 0; i-- {
		if m.nodes[i].streaming {
			return i
		}
	}
	return -1
}

func isFailureText(text string) bool {
	switch text {
	case core.ConnectionErrorMessage, core.RateLimitMessage, core.TooComplexMessage, core.CancelledMessage:
		return true
	}
	return false
}
