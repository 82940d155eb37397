package connectors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// AuthError indicates bad credentials or a rejected token. Never retried.
type AuthError struct {
	Provider string
	Err      error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: authentication failed", e.Provider)
	}
	return fmt.Sprintf("%s: authentication failed: %v", e.Provider, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// RateLimitError indicates provider-side throttling. Retried within the
// retry policy, then surfaced.
type RateLimitError struct {
	Provider string
	Err      error
}

func (e *RateLimitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: rate limit exceeded", e.Provider)
	}
	return fmt.Sprintf("%s: rate limit exceeded: %v", e.Provider, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// FetchError is a generic fetch or parse failure. Transient fetch errors are
// retried per policy; permanent ones surface immediately.
type FetchError struct {
	Provider  string
	Op        string
	Transient bool
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ConfigError indicates caller misconfiguration. Raised immediately from the
// collector boundary, never retried and never folded into a result status.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "invalid config: " + e.Msg
	}
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Msg)
}

// Transient wraps err as a retryable fetch failure.
func Transient(provider, op string, err error) error {
	return &FetchError{Provider: provider, Op: op, Transient: true, Err: err}
}

// Permanent wraps err as a non-retryable fetch failure.
func Permanent(provider, op string, err error) error {
	return &FetchError{Provider: provider, Op: op, Transient: false, Err: err}
}

// IsTransient reports whether err is worth retrying: transient fetch errors,
// provider throttling, timeouts, and connection-level failures. Auth and
// config errors are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return false
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Transient
	}
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
