package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/killallgit/liftchat/pkg/logger"
)

// HealthStatus describes whether a backend answered at all
type HealthStatus struct {
	BaseURL    string
	Available  bool
	StatusCode int
	Latency    time.Duration
	Error      error
}

// CheckHealth sends a GET to the base URL. Any response below 500
// means something is listening; probing the chat endpoints would spend a
// real query.
func (c *Client) CheckHealth(ctx context.Context, baseURL string) *HealthStatus {
	log := logger.WithComponent("api_health")
	log.Debugw("checking backend", "base_url", baseURL)

	status := &HealthStatus{BaseURL: baseURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, joinURL(baseURL, "/"), nil)
	if err != nil {
		status.Error = err
		return status
	}
	c.decorate(ctx, req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	status.Latency = time.Since(start)
	if err != nil {
		log.Warnw("backend unreachable", "base_url", baseURL, "error", err)
		status.Error = fmt.Errorf("cannot connect to %s: %w", baseURL, err)
		return status
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	status.StatusCode = resp.StatusCode
	if resp.StatusCode >= http.StatusInternalServerError {
		status.Error = fmt.Errorf("backend returned status %d", resp.StatusCode)
		log.Warnw("backend unhealthy", "base_url", baseURL, "status_code", resp.StatusCode)
		return status
	}

	status.Available = true
	log.Debugw("backend reachable", "base_url", baseURL, "status_code", resp.StatusCode, "latency", status.Latency)
	return status
}
