// Package ratelimit provides the per-client token bucket used by the
// connector clients. Capacity is expressed in requests per minute; the bucket
// starts full, refills lazily from wall-clock time at a rate of capacity/60
// tokens per second, and never holds more than capacity tokens.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket. A nil *Limiter applies no limit, so callers can
// thread an optional limiter through without nil checks.
type Limiter struct {
	bucket *rate.Limiter
}

// PerMinute returns a limiter allowing capacity requests per minute.
// capacity <= 0 returns nil (unlimited).
func PerMinute(capacity int) *Limiter {
	if capacity <= 0 {
		return nil
	}
	return &Limiter{bucket: rate.NewLimiter(rate.Limit(float64(capacity)/60.0), capacity)}
}

// Acquire blocks until one token is available, then debits it. Concurrent
// acquirers are serialized by the bucket; tokens are never over-issued.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.bucket.Wait(ctx)
}

// Tokens reports the current token balance. Exposed for tests.
func (l *Limiter) Tokens() float64 {
	if l == nil {
		return 0
	}
	return l.bucket.Tokens()
}
