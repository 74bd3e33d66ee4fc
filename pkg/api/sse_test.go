package api

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/killallgit/liftchat/pkg/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, input string) []frame {
	t.Helper()
	fr := newFrameReader(strings.NewReader(input))
	var frames []frame
	for {
		f, err := fr.next()
		if errors.Is(err, io.EOF) {
			return frames
		}
		require.NoError(t, err)
		frames = append(frames, f)
	}
}

func TestFrameReader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []frame
	}{
		{
			name:     "single data frame",
			input:    "data: {\"content\":\"A\"}\n\n",
			expected: []frame{{Data: `{"content":"A"}`}},
		},
		{
			name:     "named event without data",
			input:    "event: done\n\n",
			expected: []frame{{Event: "done"}},
		},
		{
			name:     "multi-line data is joined",
			input:    "data: one\ndata: two\n\n",
			expected: []frame{{Data: "one\ntwo"}},
		},
		{
			name:     "comments and blank runs are skipped",
			input:    ": keepalive\n\n\n\ndata: x\n\n",
			expected: []frame{{Data: "x"}},
		},
		{
			name:     "crlf line endings",
			input:    "event: ping\r\ndata: \r\n\r\n",
			expected: []frame{{Event: "ping", Data: ""}},
		},
		{
			name:     "id persists across frames",
			input:    "id: 7\ndata: a\n\ndata: b\n\n",
			expected: []frame{{Data: "a", ID: "7"}, {Data: "b", ID: "7"}},
		},
		{
			name:     "value without leading space",
			input:    "data:tight\n\n",
			expected: []frame{{Data: "tight"}},
		},
		{
			name:     "unterminated trailing frame is dropped",
			input:    "data: a\n\ndata: partial",
			expected: []frame{{Data: "a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, readAll(t, tt.input))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		in       frame
		expected chat.EventKind
	}{
		{"plain data", frame{Data: `{"content":"x"}`}, chat.EventData},
		{"message event", frame{Event: "message", Data: "x"}, chat.EventData},
		{"done event", frame{Event: "done"}, chat.EventDone},
		{"done sentinel", frame{Data: "[DONE]"}, chat.EventDone},
		{"heartbeat", frame{Event: "heartbeat"}, chat.EventHeartbeat},
		{"ping", frame{Event: "ping"}, chat.EventHeartbeat},
		{"error", frame{Event: "error", Data: "boom"}, chat.EventError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classify(tt.in).Kind)
		})
	}
}
