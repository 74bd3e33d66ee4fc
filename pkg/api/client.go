// Package api is the HTTP transport to the chat backend: the buffered chat
// endpoint, the event stream endpoint and a reachability probe.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/killallgit/liftchat/pkg/chat"
	"github.com/killallgit/liftchat/pkg/logger"
)

// TokenSource returns the current access token, or "" for none
type TokenSource func(ctx context.Context) string

// Options configures a Client
type Options struct {
	UserAgent string
	// StreamMethod is "get" (query string) or "post" (JSON body)
	StreamMethod string
	Token        TokenSource
	HTTPClient   *http.Client
}

// Client talks to any of the configured backends; the base URL is chosen
// per call by the fallback loop. It has no overall timeout because attempt
// deadlines are carried by the request context.
type Client struct {
	httpClient   *http.Client
	userAgent    string
	streamMethod string
	token        TokenSource
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	method := strings.ToLower(opts.StreamMethod)
	if method == "" {
		method = "get"
	}
	return &Client{
		httpClient:   httpClient,
		userAgent:    opts.UserAgent,
		streamMethod: method,
		token:        opts.Token,
	}
}

type bufferedResponse struct {
	Response *string       `json:"response"`
	Sources  []chat.Source `json:"sources"`
}

// Buffered posts the query to {base}/chat and decodes the whole reply
func (c *Client) Buffered(ctx context.Context, baseURL string, q chat.Query) (chat.Reply, error) {
	log := logger.WithComponent("api")

	body, err := json.Marshal(q)
	if err != nil {
		return chat.Reply{}, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(baseURL, "/chat"), bytes.NewReader(body))
	if err != nil {
		return chat.Reply{}, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.decorate(ctx, req)

	log.Debugw("buffered request", "url", req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chat.Reply{}, c.transportError(ctx, "chat request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		herr := newHTTPError(resp)
		log.Warnw("buffered request rejected", "status_code", herr.Code, "detail", herr.Detail)
		return chat.Reply{}, herr
	}

	var decoded bufferedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return chat.Reply{}, c.transportError(ctx, "failed to decode chat response", err)
	}
	if decoded.Response == nil {
		return chat.Reply{}, errors.New("chat response has no response field")
	}

	return chat.Reply{Text: *decoded.Response, Sources: decoded.Sources}, nil
}

// decorate sets the headers shared by every chat request
func (c *Client) decorate(ctx context.Context, req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token == nil {
		return
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// transportError prefers the context's cancellation cause so attempt
// timeouts surface as themselves rather than as generic read errors
func (c *Client) transportError(ctx context.Context, msg string, err error) error {
	if ctx.Err() != nil {
		if cause := context.Cause(ctx); cause != nil {
			return fmt.Errorf("%s: %w", msg, cause)
		}
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%s: connection closed early: %w", msg, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func joinURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + path
}

var _ chat.Transport = (*Client)(nil)
