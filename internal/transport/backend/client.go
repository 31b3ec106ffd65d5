// Package backend is the retrying HTTP transport shared by every operation.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sunbird/internal/domain"
	"github.com/kailas-cloud/sunbird/internal/metrics"
)

// maxBodyBytes bounds how much of a backend response is read.
const maxBodyBytes = 10 << 20

// Response is a completed backend exchange with a non-error status.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client issues outbound calls under a RetryPolicy. It holds no per-call
// state; the underlying http.Client only shares its connection pool.
type Client struct {
	http      *http.Client
	policy    RetryPolicy
	userAgent string
	logger    *zap.Logger
}

// Config holds transport settings.
type Config struct {
	Policy     RetryPolicy
	HTTPClient *http.Client // optional; a pooled client is built when nil
	UserAgent  string
	Logger     *zap.Logger
}

// New creates a transport client.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:      hc,
		policy:    cfg.Policy.withDefaults(),
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// Policy returns the effective retry policy.
func (c *Client) Policy() RetryPolicy { return c.policy }

type callOptions struct {
	endpoint    string
	maxAttempts int
	header      http.Header
}

// CallOption customizes a single Call.
type CallOption func(*callOptions)

// Endpoint names the call for metrics and logs. URLs with identifiers in
// their path must not be used as labels.
func Endpoint(name string) CallOption {
	return func(o *callOptions) { o.endpoint = name }
}

// MaxAttempts overrides the policy's attempt budget for one call.
func MaxAttempts(n int) CallOption {
	return func(o *callOptions) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// Header adds a request header.
func Header(key, value string) CallOption {
	return func(o *callOptions) { o.header.Set(key, value) }
}

// Call sends payload (nil, []byte, or any JSON-encodable value) to url.
// Timeouts, connection failures and 5xx responses are retried with
// increasing backoff; 4xx responses fail immediately. The returned error is
// always a *domain.TransportError.
func (c *Client) Call(ctx context.Context, method, url string, payload any, opts ...CallOption) (*Response, error) {
	o := callOptions{endpoint: "unknown", maxAttempts: c.policy.MaxAttempts, header: make(http.Header)}
	for _, opt := range opts {
		opt(&o)
	}

	body, err := encodePayload(payload)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}

	start := time.Now()
	resp, err := c.callWithRetry(ctx, method, url, body, &o)
	metrics.BackendRequestDuration.WithLabelValues(o.endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(o.endpoint, "error").Inc()
		return nil, err
	}
	metrics.BackendRequestsTotal.WithLabelValues(o.endpoint, "success").Inc()
	return resp, nil
}

func (c *Client) callWithRetry(
	ctx context.Context, method, url string, body []byte, o *callOptions,
) (*Response, error) {
	var (
		lastErr    error
		lastStatus int
	)

	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.policy.Backoff(attempt - 1)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, &domain.TransportError{Attempts: attempt - 1, StatusCode: lastStatus, Err: ctx.Err()}
			case <-timer.C:
			}
		}

		resp, err := c.attempt(ctx, method, url, body, o.header)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				// Caller cancelled: abandon without further retries.
				metrics.BackendAttemptsTotal.WithLabelValues(o.endpoint, "cancelled").Inc()
				return nil, &domain.TransportError{Attempts: attempt, Err: ctx.Err()}
			}
			metrics.BackendAttemptsTotal.WithLabelValues(o.endpoint, "network_error").Inc()
			lastErr, lastStatus = err, 0
		case resp.StatusCode >= http.StatusInternalServerError:
			metrics.BackendAttemptsTotal.WithLabelValues(o.endpoint, "retryable").Inc()
			lastErr, lastStatus = errors.New(snippet(resp.Body)), resp.StatusCode
		case resp.StatusCode >= http.StatusBadRequest:
			metrics.BackendAttemptsTotal.WithLabelValues(o.endpoint, "client_error").Inc()
			return nil, &domain.TransportError{
				Attempts:   attempt,
				StatusCode: resp.StatusCode,
				Err:        errors.New(snippet(resp.Body)),
			}
		default:
			metrics.BackendAttemptsTotal.WithLabelValues(o.endpoint, "success").Inc()
			return resp, nil
		}

		if attempt < o.maxAttempts {
			c.logger.Debug("backend: retrying",
				zap.String("endpoint", o.endpoint),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", o.maxAttempts),
				zap.Int("status", lastStatus),
				zap.Error(lastErr),
			)
		}
	}

	c.logger.Warn("backend: retry budget exhausted",
		zap.String("endpoint", o.endpoint),
		zap.Int("attempts", o.maxAttempts),
		zap.Int("status", lastStatus),
		zap.Error(lastErr),
	)
	return nil, &domain.TransportError{Attempts: o.maxAttempts, StatusCode: lastStatus, Err: lastErr}
}

// attempt performs one request under its own timeout.
func (c *Client) attempt(
	ctx context.Context, method, url string, body []byte, extra http.Header,
) (*Response, error) {
	actx, cancel := context.WithTimeout(ctx, c.policy.AttemptTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(actx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func encodePayload(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case []byte:
		return p, nil
	case json.RawMessage:
		return p, nil
	default:
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		return data, nil
	}
}

// snippet returns a short, single-line excerpt of a response body.
func snippet(body []byte) string {
	const maxLen = 256
	s := string(bytes.TrimSpace(body))
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	if s == "" {
		return "empty response body"
	}
	return s
}
