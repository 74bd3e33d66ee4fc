package headless

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/killallgit/liftchat/pkg/chat"
	"github.com/killallgit/liftchat/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole(t *testing.T, format string, showSources bool) (*Console, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, status bytes.Buffer
	c, err := NewConsole(ConsoleOptions{
		Out:         &out,
		Status:      &status,
		Format:      format,
		Render:      render.Options{Style: "notty", WordWrap: 80},
		ShowSources: showSources,
	})
	require.NoError(t, err)
	return c, &out, &status
}

func TestConsoleStreamsStableText(t *testing.T) {
	c, out, status := newTestConsole(t, render.FormatText, true)

	raw := ""
	c.ShowThinking()
	c.RemoveThinking()
	c.BeginAssistant()
	for _, chunk := range []string{"Brace ", "hard. Sour", "ces:\n[Doc1](http://x)"} {
		raw += chunk
		c.UpdateAssistant(chat.Present(raw).Text)
	}
	final := chat.Present(raw)
	c.FinishAssistant(final.Text)
	c.DisplaySources(final.Sources)

	assert.Equal(t, "Brace hard.\n\nSources:\n- Doc1 <http://x>\n", out.String())
	assert.Empty(t, status.String(), "status is not a terminal")
}

func TestConsoleNeverPrintsPartialMarker(t *testing.T) {
	c, out, _ := newTestConsole(t, render.FormatText, false)

	c.BeginAssistant()
	c.UpdateAssistant("Lift S")
	assert.Equal(t, "Lift", out.String())

	c.UpdateAssistant("Lift Safely")
	assert.Equal(t, "Lift Safely", out.String())

	c.FinishAssistant("Lift Safely")
	assert.Equal(t, "Lift Safely\n", out.String())
}

func TestConsoleRendersOnceForHTML(t *testing.T) {
	c, out, _ := newTestConsole(t, render.FormatHTML, true)

	c.BeginAssistant()
	c.UpdateAssistant("**Bold")
	assert.Empty(t, out.String())

	c.FinishAssistant("**Bold** move")
	c.DisplaySources(nil)

	assert.Contains(t, out.String(), `<div class="message bot-message"><p><strong>Bold</strong> move</p></div>`)
	assert.Contains(t, out.String(), `<div class="source no-sources">No sources</div>`)
}

func TestConsolePrintsBotMessagesOnly(t *testing.T) {
	c, out, _ := newTestConsole(t, render.FormatText, false)

	c.AddMessage(chat.Message{Sender: chat.SenderUser, Text: "question"})
	c.AddMessage(chat.Message{Sender: chat.SenderBot, Text: chat.ConnectionErrorMessage})

	assert.Equal(t, chat.ConnectionErrorMessage+"\n", out.String())
}

func TestNewConsoleRejectsUnknownFormat(t *testing.T) {
	_, err := NewConsole(ConsoleOptions{Format: "yaml"})
	assert.Error(t, err)
}

type scriptedTransport struct {
	chunks []string
	fail   bool
}

func (s scriptedTransport) Stream(ctx context.Context, base string, q chat.Query, handle func(chat.StreamEvent) error) error {
	if s.fail {
		return errors.New("refused")
	}
	handle(chat.StreamEvent{Kind: chat.EventOpen})
	for _, c := range s.chunks {
		handle(chat.StreamEvent{Kind: chat.EventData, Data: `{"content":"` + c + `"}`})
	}
	return handle(chat.StreamEvent{Kind: chat.EventDone})
}

func (s scriptedTransport) Buffered(ctx context.Context, base string, q chat.Query) (chat.Reply, error) {
	return chat.Reply{}, errors.New("refused")
}

func TestRun(t *testing.T) {
	t.Run("should print the streamed reply", func(t *testing.T) {
		c, out, _ := newTestConsole(t, render.FormatText, false)
		ctrl, err := chat.NewController(scriptedTransport{chunks: []string{"Eat ", "protein."}}, c, "s", chat.Options{
			BaseURLs: []string{"http://a"},
		})
		require.NoError(t, err)

		require.NoError(t, Run(context.Background(), ctrl, "diet?"))
		assert.Equal(t, "Eat protein.\n", out.String())
	})

	t.Run("should print the failure wording and return an error", func(t *testing.T) {
		c, out, _ := newTestConsole(t, render.FormatText, false)
		ctrl, err := chat.NewController(scriptedTransport{fail: true}, c, "s", chat.Options{
			BaseURLs: []string{"http://a"},
		})
		require.NoError(t, err)

		err = Run(context.Background(), ctrl, "diet?")
		var exhausted *chat.ExhaustedError
		assert.True(t, errors.As(err, &exhausted))
		assert.Equal(t, chat.ConnectionErrorMessage, strings.TrimSpace(out.String()))
	})

	t.Run("should reject an empty prompt", func(t *testing.T) {
		c, _, _ := newTestConsole(t, render.FormatText, false)
		ctrl, err := chat.NewController(scriptedTransport{}, c, "s", chat.Options{BaseURLs: []string{"http://a"}})
		require.NoError(t, err)

		assert.Error(t, Run(context.Background(), ctrl, " "))
	})
}
