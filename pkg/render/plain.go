package render

import (
	"strings"

	"github.com/killallgit/liftchat/pkg/chat"
)

// Plain writes messages as they are, for pipes and logs
type Plain struct{}

func NewPlain() *Plain {
	return &Plain{}
}

func (p *Plain) Message(msg chat.Message) string {
	return msg.Text
}

func (p *Plain) Sources(sources []chat.Source) string {
	if len(sources) == 0 {
		return chat.NoSourcesPlaceholder
	}
	var b strings.Builder
	b.WriteString("Sources:")
	for _, s := range sources {
		b.WriteString("\n- ")
		b.WriteString(s.Title)
		b.WriteString(" <")
		b.WriteString(s.URL)
		b.WriteString(">")
	}
	return b.String()
}
