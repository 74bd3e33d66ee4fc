package tui

import "github.com/charmbracelet/bubbles/key"

type global struct {
	Quit key.Binding
}

// q is ordinary input in a chat box, so only ctrl+c quits
var keys = global{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
}
