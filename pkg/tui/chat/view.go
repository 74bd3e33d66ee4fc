package chat

import "strings"

func (m chatModel) View() string {
	notice := ""
	if m.notice != "" {
		notice = m.styles.Notice.Render(m.notice)
	}

	return strings.Join([]string{
		m.viewport.View(),
		notice,
		m.statusBar.View(),
		m.styles.InputBorder.Render(m.textarea.View()),
	}, "\n")
}
