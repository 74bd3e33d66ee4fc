package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/killallgit/liftchat/pkg/chat"
	"github.com/killallgit/liftchat/pkg/logger"
)

var (
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f5b761")).Bold(true)
	sourceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#61afaf"))
	urlStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5c5044")).Underline(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5c5044")).Italic(true)
)

// Terminal renders bot Markdown with glamour and styles everything else
// with lipgloss
type Terminal struct {
	renderer *glamour.TermRenderer
	width    int
}

// NewTerminal creates a terminal renderer
func NewTerminal(opts Options) (*Terminal, error) {
	width := opts.WordWrap
	if width <= 0 {
		width = 80
	}

	style := glamour.WithAutoStyle()
	if opts.Style != "" && opts.Style != "auto" {
		style = glamour.WithStylePath(opts.Style)
	}

	renderer, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Terminal{renderer: renderer, width: width}, nil
}

// Width is the word wrap width in use
func (t *Terminal) Width() int {
	return t.width
}

// SetWidth rebuilds the renderer for a new wrap width
func (t *Terminal) SetWidth(width int, style string) error {
	if width <= 0 || width == t.width {
		return nil
	}
	next, err := NewTerminal(Options{Style: style, WordWrap: width})
	if err != nil {
		return err
	}
	*t = *next
	return nil
}

func (t *Terminal) Message(msg chat.Message) string {
	if msg.Sender == chat.SenderUser {
		return userStyle.Render(msg.Text)
	}
	return t.Markdown(msg.Text)
}

// Markdown renders text, falling back to the raw text if glamour fails
func (t *Terminal) Markdown(text string) string {
	rendered, err := t.renderer.Render(text)
	if err != nil {
		logger.WithComponent("render").Warnw("markdown rendering failed", "error", err)
		return text
	}
	return strings.Trim(rendered, "\n")
}

func (t *Terminal) Sources(sources []chat.Source) string {
	if len(sources) == 0 {
		return mutedStyle.Render(chat.NoSourcesPlaceholder)
	}
	lines := make([]string, 0, len(sources))
	for _, s := range sources {
		lines = append(lines, "• "+sourceStyle.Render(s.Title)+" "+urlStyle.Render(s.URL))
	}
	return strings.Join(lines, "\n")
}
