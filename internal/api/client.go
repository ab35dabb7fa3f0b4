// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/securechat-tui/internal/auth"
	"github.com/jeranaias/securechat-tui/internal/logger"
)

// Configuration constants.
const (
	// DefaultTimeout bounds non-streaming requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize caps non-streaming response bodies.
	MaxResponseSize = 10 * 1024 * 1024

	// UserAgent is sent with every request.
	UserAgent = "securechat/0.3.0"

	// ChatIDHeader carries the session id on chat endpoints.
	ChatIDHeader = "Chat-Id"
)

// sharedTransport pools connections for every Client in the process.
var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotConfigured indicates no base URL was set.
	ErrNotConfigured = errors.New("api base URL not configured")

	// ErrMalformedPayload marks a stream line whose JSON could not be parsed.
	// Streams keep going after it.
	ErrMalformedPayload = errors.New("malformed stream payload")
)

// HTTPError is a non-2xx response from the backend.
type HTTPError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Body)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

// IsUnauthorized reports whether err is a 401 or 403 from the backend.
func IsUnauthorized(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status == http.StatusUnauthorized || httpErr.Status == http.StatusForbidden
	}
	return false
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the chat backend.
type Client struct {
	baseURL      string
	tokens       auth.TokenSource
	httpClient   *http.Client
	streamClient *http.Client
}

// NewClient creates a client for baseURL. tokens may be nil for an
// unauthenticated client.
func NewClient(baseURL string, tokens auth.TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Transport: sharedTransport,
			Timeout:   DefaultTimeout,
		},
		// Streams are bounded only by the caller's context.
		streamClient: &http.Client{
			Transport: sharedTransport,
		},
	}
}

// WithTimeout sets the timeout for non-streaming requests.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.httpClient.Timeout = d
	return c
}

// WithHTTPClient replaces both underlying HTTP clients. Used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	c.streamClient = hc
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUEST INTERCEPTOR
// =============================================================================

// token fetches the bearer credential, or auth.ErrNoToken when none is configured.
func (c *Client) token(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", auth.ErrNoToken
	}
	return c.tokens.Token(ctx)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	return req, nil
}

// do attaches the bearer token when one is available, sends the request and
// logs it. A credential failure is logged and the request goes out without
// Authorization.
func (c *Client) do(hc *http.Client, req *http.Request) (*http.Response, error) {
	tok, err := c.token(req.Context())
	switch {
	case err == nil:
		req.Header.Set("Authorization", "Bearer "+tok)
	case errors.Is(err, auth.ErrNoToken):
	default:
		logger.Logger.Warn().Err(err).Str("path", req.URL.Path).Msg("TOKEN_UNAVAILABLE")
	}

	start := time.Now()
	logRequest(req)
	resp, err := hc.Do(req)

	// Keep the credential out of anything that might log the request later.
	req.Header.Del("Authorization")

	if err != nil {
		logger.Logger.Warn().Err(err).Str("path", req.URL.Path).Msg("API_REQUEST_FAILED")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	logResponse(req, resp, time.Since(start))
	return resp, nil
}

// postJSON sends body as JSON and decodes a 2xx response into out (if non-nil).
func (c *Client) postJSON(ctx context.Context, path string, header http.Header, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.do(c.httpClient, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := readResponse(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newHTTPError(resp.StatusCode, respBody)
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

func newHTTPError(status int, body []byte) *HTTPError {
	text := strings.TrimSpace(string(body))
	if len(text) > 512 {
		text = text[:512]
	}
	return &HTTPError{Status: status, Body: text}
}

func chatHeader(chatID string) http.Header {
	h := http.Header{}
	if chatID != "" {
		h.Set(ChatIDHeader, chatID)
	}
	return h
}

// logRequest records method and path only. Headers carry the credential and
// bodies carry user content.
func logRequest(req *http.Request) {
	logger.Logger.Debug().Str("method", req.Method).Str("path", req.URL.Path).Msg("API_REQUEST")
}

func logResponse(req *http.Request, resp *http.Response, d time.Duration) {
	logger.Logger.Debug().
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", d).
		Msg("API_RESPONSE")
}
