package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	core "github.com/killallgit/liftchat/pkg/chat"
	"github.com/killallgit/liftchat/pkg/render"
	"github.com/killallgit/liftchat/pkg/tui/chat/status"
	"github.com/killallgit/liftchat/pkg/tui/theme"
)

// Sender runs one exchange; *chat.Controller satisfies it
type Sender interface {
	Send(ctx context.Context, text string) (*core.Result, error)
}

// Options configures the chat view
type Options struct {
	SessionID   string
	Style       string
	WordWrap    int
	ShowElapsed bool
}

type chatModel struct {
	ctx       context.Context
	sender    Sender
	opts      Options
	viewport  viewport.Model
	textarea  textarea.Model
	statusBar status.StatusModel
	renderer  *render.Terminal
	styles    *theme.Styles

	nodes   []messageNode
	sources []core.Source
	// hasSources is false until the first reply has displayed its sources
	hasSources bool

	busy        bool
	cancel      context.CancelFunc
	notice      string
	numEscPress int
	width       int
	height      int
}

// NewChatModel creates the chat view. The renderer may be nil, in which case
// bot messages are shown as plain text.
func NewChatModel(ctx context.Context, sender Sender, renderer *render.Terminal, opts Options) chatModel {
	ta := textarea.New()
	ta.Focus()
	ta.Placeholder = "Ask about training, nutrition or technique..."
	ta.CharLimit = 0
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")

	styles := theme.DefaultStyles()
	statusBar := status.NewStatusModel(styles)
	statusBar, _ = statusBar.Update(status.SessionMsg{SessionID: opts.SessionID})

	return chatModel{
		ctx:       ctx,
		sender:    sender,
		opts:      opts,
		textarea:  ta,
		viewport:  viewport.New(80, 20),
		statusBar: statusBar,
		renderer:  renderer,
		styles:    styles,
	}
}
