// Package api provides the HTTP client for the road-complaint service.
//
// This package implements:
//   - A shared, connection-pooled http.Client
//   - Typed wrappers for every REST endpoint the client uses
//   - Mapping of non-2xx responses to *errors.APIError
//
// Every authenticated request carries "Authorization: Bearer <token>",
// where the token is read from a TokenSource at request time so a logout
// takes effect on the very next call.
package api

import (
	"net/http"
	"time"
)

// sharedClient is the singleton HTTP client used throughout the application.
//
// Thread-safety:
//   - http.Client is safe for concurrent use by multiple goroutines
//   - No additional locking needed
var sharedClient *http.Client

func init() {
	sharedClient = NewHTTPClient(30*time.Second, 100)
}

// GetHTTPClient returns the shared HTTP client instance.
//
// Used by the API client and the Telegram relay so both share one pool.
func GetHTTPClient() *http.Client {
	return sharedClient
}

// NewHTTPClient creates a new HTTP client with connection pooling.
//
// Connection pool configuration:
//   - MaxIdleConns: maxConns, across all hosts
//   - MaxIdleConnsPerHost: 10
//   - IdleConnTimeout: 90 seconds
//
// Parameters:
//   - timeout: Maximum time for a complete request, including reading the body
//   - maxConns: Idle connection pool size
//
// Returns:
//   - *http.Client: Configured HTTP client
func NewHTTPClient(timeout time.Duration, maxConns int) *http.Client {
	if maxConns < 1 {
		maxConns = 100
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        maxConns,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}

// SetHTTPClient allows overriding the shared client.
//
// main calls this once with the configured timeout; tests use it to inject
// a client pointed at httptest servers.
func SetHTTPClient(client *http.Client) {
	sharedClient = client
}
