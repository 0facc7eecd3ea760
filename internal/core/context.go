package core

import (
	"context"
	"log/slog"
)

// WithSession attaches a logger carrying session_id, so everything below a
// selector call is tagged with the session it serves.
func WithSession(ctx context.Context, logger *slog.Logger, sessionID int) context.Context {
	if ctx == nil {
		return ctx
	}
	return WithLogger(ctx, LoggerFromContext(ctx, logger).With("session_id", sessionID))
}
