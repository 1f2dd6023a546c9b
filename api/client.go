// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is used when ClientConfig.BaseURL is empty. Matches
// the backend's development default.
const DefaultBaseURL = "http://localhost:8000"

// maxResponseSize caps how much of a response body the client reads.
// One-shot responses (sessions, papers, results) are small; this is a
// guard against a misbehaving server, not a tuning knob.
const maxResponseSize = 8 * 1024 * 1024

// TokenSource supplies the bearer token attached to authenticated
// requests. An empty token means the request goes out unauthenticated.
// account.Manager implements this; tests can use a literal.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed-value TokenSource, useful in tests and for
// callers that manage token lifecycle themselves.
type StaticToken string

// Token returns the static token value.
func (t StaticToken) Token() string { return string(t) }

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func() string

// Token calls f.
func (f TokenSourceFunc) Token() string { return f() }

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the backend base address (e.g., "http://localhost:8000").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used. The client sets no timeouts of its own; a hung
	// connection is bounded only by the caller's context.
	HTTPClient *http.Client

	// TokenSource supplies the bearer token for authenticated calls.
	// If nil, all requests are sent unauthenticated.
	TokenSource TokenSource

	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client talks to the ResearchAgent backend. All methods are safe for
// concurrent use; the client holds no per-session state beyond the
// token source it was constructed with.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource TokenSource
	logger      *slog.Logger
}

// NewClient creates a backend client from config.
func NewClient(config ClientConfig) (*Client, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("api: invalid base URL %q: %w", baseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  httpClient,
		tokenSource: config.TokenSource,
		logger:      logger,
	}, nil
}

// BaseURL returns the configured backend base address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is a non-2xx response from the backend. The message carries
// both the numeric status and the raw body text so failures like
// "404 - session not found" surface verbatim to the user.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %d - %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is an *APIError with status 404.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// doRequest performs a one-shot JSON request and returns the response
// body. On 2xx the body is returned as-is; on any other status the
// body is read as text and wrapped in *APIError. The bearer token from
// the client's TokenSource (when present) is attached to every
// request.
func (c *Client) doRequest(ctx context.Context, method, path string, requestBody any, query url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("api: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("api: creating request: %w", err)
	}

	request.Header.Set("Content-Type", "application/json")
	c.authorize(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("api: reading response from %s %s: %w", method, path, err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	return nil, &APIError{
		StatusCode: response.StatusCode,
		Body:       string(responseBody),
	}
}

// doJSON performs a one-shot request and decodes the 2xx response body
// into result. Pass nil for endpoints with no response body.
func (c *Client) doJSON(ctx context.Context, method, path string, requestBody any, query url.Values, result any) error {
	body, err := c.doRequest(ctx, method, path, requestBody, query)
	if err != nil {
		return err
	}
	if result == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("api: decoding response from %s %s: %w", method, path, err)
	}
	return nil
}

// authorize attaches the bearer token to a request when the client has
// a token source with a non-empty token.
func (c *Client) authorize(request *http.Request) {
	if c.tokenSource == nil {
		return
	}
	if token := c.tokenSource.Token(); token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
}
