// Package render turns chat messages and source lists into text for a given
// output format.
package render

import (
	"fmt"

	"github.com/killallgit/liftchat/pkg/chat"
)

// Output formats
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Renderer formats messages and source lists. User text is always rendered
// literally; bot text is treated as Markdown where the format supports it.
type Renderer interface {
	Message(msg chat.Message) string
	Sources(sources []chat.Source) string
}

// Options tunes the terminal renderer
type Options struct {
	// Style is a glamour style name, a style file path, or "auto"
	Style    string
	WordWrap int
}

// New returns the renderer for format
func New(format string, opts Options) (Renderer, error) {
	switch format {
	case FormatText, "":
		return NewPlain(), nil
	case FormatMarkdown:
		return NewTerminal(opts)
	case FormatHTML:
		return NewHTML(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
