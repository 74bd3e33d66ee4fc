package chat

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) StatusCode() int { return int(e) }

func TestFailureWording(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, ConnectionErrorMessage},
		{"network", errors.New("dial tcp: connection refused"), ConnectionErrorMessage},
		{"timeout", fmt.Errorf("%w: no reply", ErrAttemptTimeout), ConnectionErrorMessage},
		{"rate limited", statusErr(429), RateLimitMessage},
		{"wrapped rate limit", fmt.Errorf("attempt: %w", statusErr(429)), RateLimitMessage},
		{"gateway timeout", statusErr(504), TooComplexMessage},
		{"server error", statusErr(500), ConnectionErrorMessage},
		{"not found", statusErr(404), ConnectionErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FailureWording(tt.err))
		})
	}
}
