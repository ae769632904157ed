// Package logging carries request-scoped loggers through context so the
// application layer can emit structured records without holding transport
// state.
package logging

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// ContextWithLogger attaches logger to ctx. A nil logger leaves ctx untouched
// so callers can pass through optional loggers without guarding.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or nil when none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return nil
}
