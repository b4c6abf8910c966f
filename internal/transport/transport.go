// Package transport provides the HTTP transport for the file client with:
// - Request marshaling (JSON or raw byte bodies)
// - Retries with exponential backoff on retryable statuses
// - Circuit breaking
//
// Completed HTTP exchanges always yield a *Response, whatever the status
// code; only requests that never complete (DNS, connect, timeout) surface as
// transport errors. Callers own the interpretation of non-200 statuses.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"gemfiles/core"
	"gemfiles/internal/httpclient"
)

// Config holds configuration for the transport
type Config struct {
	// BaseURL is the API base URL, prepended to request endpoints
	BaseURL string

	// Retry configuration
	MaxRetries     int           // Maximum number of retry attempts (default: 3)
	InitialBackoff time.Duration // Initial backoff duration (default: 1s)
	MaxBackoff     time.Duration // Maximum backoff duration (default: 30s)
	BackoffFactor  float64       // Backoff multiplier (default: 2.0)

	// Circuit breaker configuration (nil disables circuit breaking)
	CircuitBreaker *CircuitBreakerConfig
}

// DefaultConfig returns default transport configuration
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
		CircuitBreaker: &CircuitBreakerConfig{
			FailureThreshold: 5,
			SuccessThreshold: 2,
			Timeout:          30 * time.Second,
		},
	}
}

// Client is the HTTP transport for the file client
type Client struct {
	httpClient     *http.Client
	config         Config
	circuitBreaker *circuitBreaker
}

// New creates a new transport with the given configuration
func New(config Config) *Client {
	return NewWithHTTPClient(httpclient.NewDefault(), config)
}

// NewWithHTTPClient creates a new transport with a custom HTTP client
func NewWithHTTPClient(httpClient *http.Client, config Config) *Client {
	c := &Client{
		httpClient: httpClient,
		config:     config,
	}

	if config.CircuitBreaker != nil {
		c.circuitBreaker = newCircuitBreaker(
			config.CircuitBreaker.FailureThreshold,
			config.CircuitBreaker.SuccessThreshold,
			config.CircuitBreaker.Timeout,
		)
	}

	return c
}

// Request represents an HTTP request to be made
type Request struct {
	Method   string
	Endpoint string // joined to the configured base URL
	URL      string // absolute URL; overrides BaseURL+Endpoint when set
	Query    url.Values
	Body     interface{} // JSON marshaled if not nil
	RawBody  []byte      // raw byte body; takes precedence over Body
	Headers  map[string]string
}

// Response represents a completed HTTP exchange
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Do executes a request with retries and circuit breaking. Retryable
// statuses (429, 502, 503, 504) are retried up to MaxRetries; the last
// response is returned once attempts are exhausted.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.circuitBreaker != nil && !c.circuitBreaker.Allow() {
		return nil, core.NewTransportError("circuit breaker is open - service temporarily unavailable", nil)
	}

	var lastResp *Response
	var lastErr error
	maxAttempts := c.config.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return nil, core.NewTransportError("request cancelled during backoff", ctx.Err())
			case <-time.After(backoff):
			}
		}

		resp, err := c.doRequest(ctx, req)
		if err != nil {
			lastErr = err
			if c.circuitBreaker != nil {
				c.circuitBreaker.RecordFailure()
			}
			continue
		}

		if isRetryable(resp.StatusCode) {
			if c.circuitBreaker != nil {
				c.circuitBreaker.RecordFailure()
			}
			lastResp = resp
			lastErr = nil
			continue
		}

		c.recordOutcome(resp.StatusCode)
		return resp, nil
	}

	if lastResp != nil {
		return lastResp, nil
	}
	return nil, lastErr
}

// DoOnce executes a request with a single attempt and no retries. Used for
// non-idempotent requests such as byte transfers against a single-use upload
// URL, where a retry could resend data the service already consumed.
func (c *Client) DoOnce(ctx context.Context, req Request) (*Response, error) {
	if c.circuitBreaker != nil && !c.circuitBreaker.Allow() {
		return nil, core.NewTransportError("circuit breaker is open - service temporarily unavailable", nil)
	}

	resp, err := c.doRequest(ctx, req)
	if err != nil {
		if c.circuitBreaker != nil {
			c.circuitBreaker.RecordFailure()
		}
		return nil, err
	}

	c.recordOutcome(resp.StatusCode)
	return resp, nil
}

// doRequest executes a single HTTP request without retries
func (c *Client) doRequest(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, core.NewTransportError("failed to send request: "+err.Error(), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewTransportError("failed to read response: "+err.Error(), err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// buildRequest creates an HTTP request from a Request
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := req.URL
	if target == "" {
		target = c.config.BaseURL + req.Endpoint
	}

	var bodyReader io.Reader
	contentType := ""
	switch {
	case req.RawBody != nil:
		bodyReader = bytes.NewReader(req.RawBody)
	case req.Body != nil:
		bodyBytes, err := json.Marshal(req.Body)
		if err != nil {
			return nil, core.NewTransportError("failed to marshal request body", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return nil, core.NewTransportError("failed to create request", err)
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for key, values := range req.Query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}

func (c *Client) recordOutcome(statusCode int) {
	if c.circuitBreaker == nil {
		return
	}
	if statusCode >= 500 {
		c.circuitBreaker.RecordFailure()
		return
	}
	c.circuitBreaker.RecordSuccess()
}

// calculateBackoff calculates the backoff duration for a given attempt
func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := float64(c.config.InitialBackoff) * math.Pow(c.config.BackoffFactor, float64(attempt-1))
	if backoff > float64(c.config.MaxBackoff) {
		backoff = float64(c.config.MaxBackoff)
	}
	return time.Duration(backoff)
}

// isRetryable returns true if the status code indicates a retryable error
func isRetryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests ||
		statusCode == http.StatusServiceUnavailable ||
		statusCode == http.StatusBadGateway ||
		statusCode == http.StatusGatewayTimeout
}
