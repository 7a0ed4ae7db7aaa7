// Package api wraps the storefront REST backend. Every call resolves to
// either a decoded payload or an *Error; nothing here panics or leaks raw
// transport errors past the package boundary. Authentication rejections are
// handled once, in do, rather than at each call site.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger

	// token reports the current credential, empty in guest mode.
	token func() string
	// onAuthRejected runs once per 401 response, before the error returns.
	onAuthRejected func()
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log:   log,
		token: func() string { return "" },
	}
}

// SetTokenSource installs the session read used to fill the Authorization
// header on every request.
func (c *Client) SetTokenSource(fn func() string) {
	c.token = fn
}

// OnAuthRejected installs the cross-cutting 401 side effect (session clear
// plus forced return to the anonymous state).
func (c *Client) OnAuthRejected(fn func()) {
	c.onAuthRejected = fn
}

// do performs one request and decodes the success payload into out (skipped
// when out is nil). All failures come back as *Error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: "encode request: " + err.Error(), cause: err}
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return &Error{Message: "create request: " + err.Error(), cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Token "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("backend unreachable", "method", method, "path", path, "error", err)
		return &Error{Message: "cannot reach the store, check your connection", cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: "read response: " + err.Error(), cause: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Info("authentication rejected", "method", method, "path", path)
		if c.onAuthRejected != nil {
			c.onAuthRejected()
		}
		e := decodeError(resp.StatusCode, raw)
		if e.Message == genericMessage(resp.StatusCode) {
			e.Message = "session expired, please log in again"
		}
		return e
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &Error{Status: resp.StatusCode, Message: "unexpected response from server", cause: err}
		}
	}
	return nil
}
