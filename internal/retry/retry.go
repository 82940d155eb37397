// Package retry implements the shared backoff policy for connector fetches.
// Only transient failures (see connectors.IsTransient) are retried;
// authentication and configuration errors surface immediately.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/signalhouse/connectors"
)

type Config struct {
	Attempts int
	MinWait  time.Duration
	MaxWait  time.Duration
	Jitter   time.Duration
}

// Default is suitable for most provider API calls.
var Default = Config{
	Attempts: 3,
	MinWait:  1 * time.Second,
	MaxWait:  10 * time.Second,
}

// Do runs fn, retrying transient errors with exponential backoff
// (wait = min(MaxWait, MinWait * 2^attempt), plus optional jitter). On
// exhaustion the last error is returned unchanged so callers can inspect it
// with errors.As.
func Do(ctx context.Context, config Config, fn func() error) error {
	attempts := config.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	minWait := config.MinWait
	if minWait <= 0 {
		minWait = 1 * time.Second
	}
	maxWait := config.MaxWait
	if maxWait <= 0 {
		maxWait = 10 * time.Second
	}

	var lastErr error
	wait := minWait
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !connectors.IsTransient(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}

		sleep := wait
		if config.Jitter > 0 {
			sleep += time.Duration(rand.Int63n(int64(config.Jitter)))
		}
		if sleep > maxWait {
			sleep = maxWait
		}
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait *= 2
		if wait > maxWait {
			wait = maxWait
		}
	}
	return lastErr
}
