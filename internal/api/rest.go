package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	apperrors "roadfix/internal/errors"
)

// maxErrorBody caps how much of an error response is read for its message.
const maxErrorBody = 64 << 10

// TokenSource returns the current bearer token, or "" when anonymous.
type TokenSource func() string

// Client talks to the road-complaint REST API.
//
// Thread-safety:
//   - Client is immutable after New and safe for concurrent use
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	debug   bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the shared pooled client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithDebug logs every request line and mutation body.
func WithDebug(debug bool) Option {
	return func(c *Client) { c.debug = debug }
}

// New creates a client for the API rooted at baseURL.
//
// Parameters:
//   - baseURL: e.g. "http://localhost:5000", without the /api suffix
//   - token: read before every authenticated call, may be nil
func New(baseURL string, token TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    GetHTTPClient(),
		token:   token,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.token == nil {
		c.token = func() string { return "" }
	}
	return c
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PhotoURL resolves a complaint photo path against the API root.
func (c *Client) PhotoURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// errorBody is the error envelope the server uses for every failure.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// newRequest builds a request with the bearer token attached when present.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

// do sends req and decodes a 2xx JSON body into out (skipped when out is nil).
//
// Returns:
//   - *errors.APIError for any non-2xx status
//   - *errors.DecodeError when a 2xx body is not the expected JSON
//   - a wrapped transport error when the server is unreachable
func (c *Client) do(req *http.Request, out interface{}) error {
	path := req.URL.Path
	if c.debug {
		log.Printf("  🐛 %s %s\n", req.Method, req.URL.String())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &apperrors.APIError{Method: req.Method, Path: path, Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Message = eb.Error
			if apiErr.Message == "" {
				apiErr.Message = eb.Message
			}
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &apperrors.DecodeError{Method: req.Method, Path: path, Err: err}
	}
	return nil
}

// getJSON issues an authenticated GET.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// sendJSON issues an authenticated request with a JSON body.
func (c *Client) sendJSON(ctx context.Context, method, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", method, path, err)
	}
	if c.debug {
		log.Printf("  🐛 body: %s\n", redact(payload))
	}
	req, err := c.newRequest(ctx, method, path, bytes.NewReader(payload), "application/json")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// redact hides password fields from debug logs.
func redact(payload []byte) string {
	var m map[string]interface{}
	if json.Unmarshal(payload, &m) != nil {
		return string(payload)
	}
	for k := range m {
		if strings.Contains(strings.ToLower(k), "password") {
			m[k] = "***"
		}
	}
	out, _ := json.Marshal(m)
	return string(out)
}
