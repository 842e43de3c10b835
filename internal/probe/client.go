// Package probe provides the pooled HTTP client behind the default Prober.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxDrainSize bounds how much of a response body is read. Bodies are
// drained (and discarded) so connections can be reused, but a probe never
// needs the payload itself.
const maxDrainSize = 1 << 20 // 1MB

// connection pooling limits to prevent resource exhaustion when probing many endpoints
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second // conservative: matches common ALB defaults
)

// Response holds the result of one HTTP request made by [Client].
type Response struct {
	// StatusCode is the HTTP status code (e.g., 200, 404, 500).
	// Zero if the request failed before receiving a response.
	StatusCode int

	// FinalURL is the effective request URL after any redirects.
	// Equal to the requested URL if the request never left the client.
	FinalURL string

	// Latency is the total time taken for the request.
	Latency time.Duration

	// Err contains any network error that occurred during the request.
	// nil indicates a completed HTTP exchange, whatever its status code.
	Err error
}

// Client is an HTTP client wrapper optimized for probing health endpoints.
//
// Client uses per-request timeouts via context rather than a global timeout,
// and bounds its connection pool so a large task set cannot exhaust file
// descriptors. Response bodies are drained up to 1MB and discarded.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new probing [Client].
//
// Connection pooling configuration:
//   - MaxIdleConns: 100 total idle connections
//   - MaxIdleConnsPerHost: 10 idle connections per host
//   - MaxConnsPerHost: 10 concurrent connections per host
//   - IdleConnTimeout: 60 seconds before closing idle connections
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
				DisableKeepAlives:   false, // explicitly enable connection reuse
			},
		},
	}
}

// Do performs one HTTP request and returns a structured [Response].
//
// The timeout is applied via context cancellation. If method is empty, GET
// is used. Do always returns a Response; network failures are captured in
// the Err field rather than returned separately, which lets the scheduler
// treat a failed probe as an ordinary result.
func (c *Client) Do(ctx context.Context, method, url string, headers map[string]string, timeout time.Duration) Response {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return Response{
			FinalURL: url,
			Latency:  time.Since(start),
			Err:      fmt.Errorf("failed to create request: %w", err),
		}
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{
			FinalURL: url,
			Latency:  time.Since(start),
			Err:      fmt.Errorf("request failed: %w", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	// drain the body so the connection can be reused; the payload itself
	// is irrelevant to a probe
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainSize))

	// resp.Request reflects the last request in any redirect chain
	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return Response{
		StatusCode: resp.StatusCode,
		FinalURL:   finalURL,
		Latency:    time.Since(start),
	}
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times. After Close, the client remains usable but
// new connections will be established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
