// Package httpx is the shared HTTP layer for the API-backed connector
// clients (twitter, gnews, gtrends, youtube captions). It combines the
// per-client rate limiter, the retry policy, and the status-code mapping
// into the connector error taxonomy.
package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/signalhouse/connectors"
	"github.com/signalhouse/connectors/internal/ratelimit"
	"github.com/signalhouse/connectors/internal/retry"
)

const defaultMaxBodySize = 10 << 20 // 10 MiB

type Client struct {
	provider    string
	hc          *http.Client
	limiter     *ratelimit.Limiter
	retry       retry.Config
	userAgent   string
	maxBodySize int64
}

type Options struct {
	Timeout   time.Duration
	RateLimit int // requests per minute, 0 = unlimited
	Retry     retry.Config
	UserAgent string
}

func New(provider string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "signalhouse-connectors/0.1"
	}
	rc := opts.Retry
	if rc.Attempts <= 0 {
		rc = retry.Default
	}
	return &Client{
		provider:    provider,
		hc:          &http.Client{Timeout: timeout},
		limiter:     ratelimit.PerMinute(opts.RateLimit),
		retry:       rc,
		userAgent:   userAgent,
		maxBodySize: defaultMaxBodySize,
	}
}

// Get performs a rate-limited GET with retries and returns the response
// body. Each attempt acquires a rate-limit token before hitting the wire.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, headers map[string]string) ([]byte, error) {
	var body []byte
	err := retry.Do(ctx, c.retry, func() error {
		if err := c.limiter.Acquire(ctx); err != nil {
			return err
		}

		target := rawURL
		if len(params) > 0 {
			sep := "?"
			if strings.Contains(rawURL, "?") {
				sep = "&"
			}
			target = rawURL + sep + params.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return connectors.Permanent(c.provider, "build request", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			return connectors.Transient(c.provider, "request", err)
		}
		defer resp.Body.Close()

		limited := io.LimitReader(resp.Body, c.maxBodySize+1)
		data, err := io.ReadAll(limited)
		if err != nil {
			return connectors.Transient(c.provider, "read body", err)
		}
		if int64(len(data)) > c.maxBodySize {
			return connectors.Permanent(c.provider, "read body", fmt.Errorf("response exceeds %d bytes", c.maxBodySize))
		}

		if err := c.statusError(resp.StatusCode, data); err != nil {
			return err
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// GetJSON performs Get and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, headers map[string]string, out any) error {
	body, err := c.Get(ctx, rawURL, params, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return connectors.Permanent(c.provider, "decode response", err)
	}
	return nil
}

func (c *Client) statusError(code int, body []byte) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return &connectors.AuthError{Provider: c.provider, Err: fmt.Errorf("status %d: %s", code, snippet(body))}
	case code == http.StatusTooManyRequests:
		return &connectors.RateLimitError{Provider: c.provider, Err: fmt.Errorf("status %d", code)}
	case code >= http.StatusInternalServerError:
		return connectors.Transient(c.provider, "request", fmt.Errorf("status %d: %s", code, snippet(body)))
	default:
		return connectors.Permanent(c.provider, "request", fmt.Errorf("status %d: %s", code, snippet(body)))
	}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
