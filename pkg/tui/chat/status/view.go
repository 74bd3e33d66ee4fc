package status

import (
	"fmt"
	"strings"

	"github.com/killallgit/liftchat/pkg/process"
)

// View renders a single line: spinner, state, timer and icon while an
// exchange runs, and the session otherwise
func (m StatusModel) View() string {
	if m.width == 0 {
		return ""
	}

	var components []string

	if m.isActive {
		components = append(components, m.spinner.View())
	}

	if name := m.state.GetDisplayName(); name != "" && (m.isActive || m.state == process.StateFailed) {
		text := m.styles.StatusText.Render(name)
		if !m.isActive {
			text = m.styles.ErrorMessage.Render(name)
		}
		components = append(components, text)
	}

	if m.isActive && m.timer > 0 {
		minutes := int(m.timer.Minutes())
		seconds := int(m.timer.Seconds()) % 60
		components = append(components, m.styles.StatusTimer.Render(fmt.Sprintf("%02d:%02d", minutes, seconds)))
	}

	if icon := m.state.GetIcon(); icon != "" {
		components = append(components, m.styles.StatusIcon.Render(icon))
	}

	if m.session != "" {
		components = append(components, m.styles.StatusTimer.Render("session "+shortID(m.session)))
	}

	separator := m.styles.Separator.Render(" | ")
	return m.styles.StatusBar.Width(m.width).Render(strings.Join(components, separator))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
