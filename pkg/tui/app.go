package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/killallgit/liftchat/pkg/logger"
	"github.com/killallgit/liftchat/pkg/render"
	"github.com/killallgit/liftchat/pkg/tui/chat"
)

// AppOptions carries what the interactive client needs from the caller
type AppOptions struct {
	// View must be the view the Sender's controller reports to
	View        *chat.ProgramView
	Sender      chat.Sender
	SessionID   string
	Style       string
	WordWrap    int
	ShowElapsed bool
}

// Run starts the full screen client and blocks until the user quits
func Run(ctx context.Context, opts AppOptions) error {
	if opts.View == nil || opts.Sender == nil {
		return errors.New("tui: view and sender are required")
	}
	log := logger.WithComponent("tui")

	renderer, err := render.NewTerminal(render.Options{Style: opts.Style, WordWrap: opts.WordWrap})
	if err != nil {
		// Plain text beats refusing to start
		log.Warnw("markdown renderer unavailable", "error", err)
		renderer = nil
	}

	chatView := chat.NewChatModel(ctx, opts.Sender, renderer, chat.Options{
		SessionID:   opts.SessionID,
		Style:       opts.Style,
		WordWrap:    opts.WordWrap,
		ShowElapsed: opts.ShowElapsed,
	})

	root := NewRootModel(ctx, chatView)
	p := tea.NewProgram(root, tea.WithContext(ctx), tea.WithAltScreen())
	opts.View.Attach(p)

	log.Infow("starting interactive session", "session_id", opts.SessionID)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
