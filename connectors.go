// Package connectors provides shared types for the provider connectors in
// this module: the collection status reported by every collector, the error
// taxonomy used by the retry policy, and context logger plumbing.
//
// Each provider lives in its own package (reddit, telegram, twitter, youtube,
// gtrends, gnews) and exposes the same two-layer shape: an immutable Config
// with credentials and HTTP settings, a mutable Spec describing what to
// collect on a given run, and a Collector with a single
// Fetch(ctx, spec) entry point returning a typed Result.
package connectors

import (
	"context"
	"log/slog"
)

// Status reports the outcome of a collection run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

type loggerKey struct{}

// WithLogger attaches a slog logger to the context. Collectors prefer the
// context logger over their own so callers can inject correlation fields.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFromContext returns the logger attached to the context, or
// slog.Default() if absent.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
