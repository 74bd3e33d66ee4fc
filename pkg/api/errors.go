package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrStreamEnded means the event stream closed before its done event
var ErrStreamEnded = errors.New("stream ended before done")

// HTTPError is a non-2xx response from the backend
type HTTPError struct {
	Code   int
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("backend returned status %d", e.Code)
}

// StatusCode lets callers classify the failure without importing this package
func (e *HTTPError) StatusCode() int {
	return e.Code
}

// ServerEventError is an error event sent inside an otherwise healthy stream
type ServerEventError struct {
	Message string
}

func (e *ServerEventError) Error() string {
	if e.Message == "" {
		return "server sent an error event"
	}
	return "server sent an error event: " + e.Message
}

// newHTTPError reads a bounded amount of the body looking for a detail field
func newHTTPError(resp *http.Response) *HTTPError {
	herr := &HTTPError{Code: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return herr
	}
	var payload struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return herr
	}
	herr.Detail = DetailMessage(payload.Detail)
	return herr
}

// DetailMessage turns a decoded detail field into display text. Strings are
// returned as is; validation errors arrive as structured detail and are
// returned as compact JSON.
func DetailMessage(detail any) string {
	switch d := detail.(type) {
	case string:
		return d
	case nil:
		return ""
	default:
		raw, err := json.Marshal(d)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
