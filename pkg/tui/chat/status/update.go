package status

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/killallgit/liftchat/pkg/process"
)

func (m StatusModel) Update(msg tea.Msg) (StatusModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.isActive {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StartMsg:
		wasActive := m.isActive
		m.isActive = true
		m.startTime = time.Now()
		m.timer = 0
		m.state = msg.State
		if wasActive {
			return m, nil
		}
		return m, tea.Batch(m.spinner.Tick, tickEvery())

	case SetStateMsg:
		m.state = msg.State
		return m, nil

	case StopMsg:
		m.isActive = false
		m.timer = 0
		if msg.Failed {
			m.state = process.StateFailed
		} else {
			m.state = process.StateIdle
		}
		return m, nil

	case SessionMsg:
		m.session = msg.SessionID
		return m, nil

	case TickMsg:
		if m.isActive {
			m.timer = time.Since(m.startTime)
			return m, tickEvery()
		}
		return m, nil
	}

	return m, nil
}

// tickEvery returns a command that sends a tick message every second
func tickEvery() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
