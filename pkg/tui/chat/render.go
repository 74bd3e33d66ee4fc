package chat

import (
	"fmt"
	"strings"

	core "github.com/killallgit/liftchat/pkg/chat"
)

func (m chatModel) renderNodes() string {
	// Calculate available width for wrapping
	availableWidth := m.viewport.Width
	if availableWidth <= 0 {
		availableWidth = 80 // Default fallback
	}

	rendered := make([]string, 0, len(m.nodes)+1)
	for _, node := range m.nodes {
		rendered = append(rendered, m.renderNode(node, availableWidth))
	}
	if m.hasSources {
		rendered = append(rendered, m.renderSources(availableWidth))
	}
	return strings.Join(rendered, "\n\n")
}

func (m chatModel) renderNode(node messageNode, width int) string {
	switch node.kind {
	case nodeUser:
		// User text is shown literally, never as Markdown
		label := m.styles.UserLabel.Render("You")
		return label + "\n" + m.styles.UserMessage.Width(width).Render(node.text)

	case nodeThinking:
		text := "Thinking..."
		if m.opts.ShowElapsed && node.elapsed > 0 {
			text = fmt.Sprintf("Thinking... %ds", int(node.elapsed.Seconds()))
		}
		return m.styles.ThinkingMessage.Render(text)

	case nodeError:
		return m.styles.ErrorMessage.Width(width).Render(node.text)

	default:
		label := m.styles.AssistantLabel.Render("LiftChat")
		if node.streaming {
			label += m.styles.ThinkingMessage.Render(" ...")
		}
		return label + "\n" + m.renderMarkdown(node.text, width)
	}
}

func (m chatModel) renderMarkdown(text string, width int) string {
	if m.renderer == nil {
		return m.styles.AssistantMessage.Width(width).Render(text)
	}
	return m.renderer.Markdown(text)
}

func (m chatModel) renderSources(width int) string {
	title := m.styles.SourcesTitle.Render("Sources")
	if len(m.sources) == 0 {
		return title + "\n" + m.styles.SourcesPlaceholder.Render(core.NoSourcesPlaceholder)
	}

	lines := make([]string, 0, len(m.sources)+1)
	lines = append(lines, title)
	for _, s := range m.sources {
		line := "• " + m.styles.SourceTitle.Render(s.Title) + " " + m.styles.SourceURL.Render(s.URL)
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *chatModel) updateViewportContent() {
	m.viewport.SetContent(m.renderNodes())
	m.viewport.GotoBottom()
}
