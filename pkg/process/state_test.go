package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateString(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected string
	}{
		{"idle state", StateIdle, ""},
		{"sending state", StateSending, "sending"},
		{"thinking state", StateThinking, "thinking"},
		{"receiving state", StateReceiving, "receiving"},
		{"failed state", StateFailed, "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}

func TestStateGetIcon(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected string
	}{
		{"idle icon", StateIdle, ""},
		{"sending icon", StateSending, "↑"},
		{"receiving icon", StateReceiving, "↓"},
		{"thinking icon", StateThinking, "🤔"},
		{"failed icon", StateFailed, "✗"},
		{"unknown state", State("unknown"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.GetIcon())
		})
	}
}

func TestStateGetDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected string
	}{
		{"idle display", StateIdle, "Idle"},
		{"sending display", StateSending, "Connecting"},
		{"receiving display", StateReceiving, "Receiving"},
		{"thinking display", StateThinking, "Thinking"},
		{"failed display", StateFailed, "Failed"},
		{"unknown state", State("unknown"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.GetDisplayName())
		})
	}
}

func TestStateIsActive(t *testing.T) {
	assert.False(t, StateIdle.IsActive())
	assert.True(t, StateSending.IsActive())
	assert.True(t, StateThinking.IsActive())
	assert.True(t, StateReceiving.IsActive())
	assert.False(t, StateFailed.IsActive())
}
