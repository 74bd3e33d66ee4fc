package render

import (
	"bytes"
	"html"
	"net/url"
	"strings"

	"github.com/killallgit/liftchat/pkg/chat"
	"github.com/killallgit/liftchat/pkg/logger"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"
)

// HTML renders fragments for embedding in a page. Bot Markdown goes through
// goldmark and is then sanitized; user text is escaped.
type HTML struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

func NewHTML() *HTML {
	policy := bluemonday.UGCPolicy()
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &HTML{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(goldhtml.WithHardWraps()),
		),
		policy: policy,
	}
}

func (h *HTML) Message(msg chat.Message) string {
	class := "message " + string(msg.Sender) + "-message"

	if msg.Sender == chat.SenderUser {
		return `<div class="` + class + `"><p>` + html.EscapeString(msg.Text) + `</p></div>`
	}
	return `<div class="` + class + `">` + h.Markdown(msg.Text) + `</div>`
}

// Markdown converts text to sanitized HTML
func (h *HTML) Markdown(text string) string {
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(text), &buf); err != nil {
		logger.WithComponent("render").Warnw("markdown conversion failed", "error", err)
		return "<p>" + html.EscapeString(text) + "</p>"
	}
	return strings.TrimSpace(string(h.policy.SanitizeBytes(buf.Bytes())))
}

func (h *HTML) Sources(sources []chat.Source) string {
	if len(sources) == 0 {
		return `<div class="source no-sources">` + chat.NoSourcesPlaceholder + `</div>`
	}

	var b strings.Builder
	for i, s := range sources {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(`<div class="source"><a href="`)
		b.WriteString(html.EscapeString(safeURL(s.URL)))
		b.WriteString(`" target="_blank" rel="noopener noreferrer">`)
		b.WriteString(html.EscapeString(s.Title))
		b.WriteString(`</a></div>`)
	}
	return b.String()
}

// safeURL keeps only web links; anything else becomes an inert anchor
func safeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "#"
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.String()
	default:
		return "#"
	}
}
