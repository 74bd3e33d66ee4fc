// Package auth exchanges user credentials for an access token and inspects
// stored tokens.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/killallgit/liftchat/pkg/api"
	"github.com/killallgit/liftchat/pkg/logger"
)

// defaultLoginMessage is shown when the backend gives no detail
const defaultLoginMessage = "Login failed"

// LoginError carries the backend's reason for rejecting credentials
type LoginError struct {
	StatusCode int
	Message    string
}

func (e *LoginError) Error() string {
	return e.Message
}

// Token is an access token plus what could be read from it without a key
type Token struct {
	AccessToken string
	// ExpiresAt is zero when the token is not a JWT or carries no exp claim
	ExpiresAt time.Time
	Subject   string
}

// Expired reports whether the token has a known expiry in the past
func (t Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a login client for the backend at baseURL
func NewClient(baseURL, userAgent string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Detail      any    `json:"detail"`
}

// Login posts the credentials as an OAuth2 password form and returns the
// issued token. A rejected login is a *LoginError.
func (c *Client) Login(ctx context.Context, username, password string) (Token, error) {
	log := logger.WithComponent("auth")

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("failed to reach login endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Token{}, fmt.Errorf("failed to read login response: %w", err)
	}

	var parsed tokenResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := defaultLoginMessage
		if decodeErr == nil {
			if detail := api.DetailMessage(parsed.Detail); detail != "" {
				message = detail
			}
		}
		log.Warnw("login rejected", "status_code", resp.StatusCode, "detail", message)
		return Token{}, &LoginError{StatusCode: resp.StatusCode, Message: message}
	}

	if decodeErr != nil {
		return Token{}, fmt.Errorf("failed to decode login response: %w", decodeErr)
	}
	if parsed.AccessToken == "" {
		return Token{}, &LoginError{StatusCode: resp.StatusCode, Message: defaultLoginMessage}
	}

	token := Inspect(parsed.AccessToken)
	log.Infow("login succeeded", "subject", token.Subject, "expires_at", token.ExpiresAt)
	return token, nil
}

// Inspect reads the claims of a JWT access token without verifying its
// signature. The key belongs to the backend; the client only wants to show
// when the token runs out. Opaque tokens yield a Token with no claims.
func Inspect(accessToken string) Token {
	token := Token{AccessToken: accessToken}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return token
	}
	if claims.ExpiresAt != nil {
		token.ExpiresAt = claims.ExpiresAt.Time
	}
	token.Subject = claims.Subject
	return token
}
