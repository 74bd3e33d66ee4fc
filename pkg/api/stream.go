package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/killallgit/liftchat/pkg/chat"
	"github.com/killallgit/liftchat/pkg/logger"
)

// doneSentinel is the data payload some backends use instead of a done event
const doneSentinel = "[DONE]"

// Stream opens {base}/chat/stream and feeds decoded events to handle until
// the done event, an error event, or the end of the body
func (c *Client) Stream(ctx context.Context, baseURL string, q chat.Query, handle func(chat.StreamEvent) error) error {
	log := logger.WithComponent("api")

	req, err := c.streamRequest(ctx, baseURL, q)
	if err != nil {
		return err
	}
	c.decorate(ctx, req)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	log.Debugw("stream request", "method", req.Method, "url", req.URL.Redacted())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(ctx, "stream request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		herr := newHTTPError(resp)
		log.Warnw("stream request rejected", "status_code", herr.Code, "detail", herr.Detail)
		return herr
	}

	if err := handle(chat.StreamEvent{Kind: chat.EventOpen}); err != nil {
		return err
	}

	frames := newFrameReader(resp.Body)
	for {
		f, err := frames.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if ctx.Err() != nil {
					return c.transportError(ctx, "stream interrupted", ctx.Err())
				}
				return ErrStreamEnded
			}
			return c.transportError(ctx, "stream interrupted", err)
		}

		event := classify(f)
		if err := handle(event); err != nil {
			return err
		}

		switch event.Kind {
		case chat.EventDone:
			return nil
		case chat.EventError:
			return &ServerEventError{Message: event.Data}
		}
	}
}

func (c *Client) streamRequest(ctx context.Context, baseURL string, q chat.Query) (*http.Request, error) {
	endpoint := joinURL(baseURL, "/chat/stream")

	if c.streamMethod == "post" {
		body, err := json.Marshal(q)
		if err != nil {
			return nil, fmt.Errorf("failed to encode query: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create stream request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	params := url.Values{}
	params.Set("query", q.Text)
	params.Set("session_id", q.SessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}
	return req, nil
}

// classify maps a raw frame to the event kinds the consumer understands
func classify(f frame) chat.StreamEvent {
	event := chat.StreamEvent{Data: f.Data, ID: f.ID}

	switch f.Event {
	case "done":
		event.Kind = chat.EventDone
	case "heartbeat", "ping":
		event.Kind = chat.EventHeartbeat
	case "error":
		event.Kind = chat.EventError
	default:
		if f.Data == doneSentinel {
			event.Kind = chat.EventDone
		} else {
			event.Kind = chat.EventData
		}
	}
	return event
}
