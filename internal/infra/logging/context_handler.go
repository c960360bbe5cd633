package logging

import (
	"context"
	"log/slog"

	context_ "github.com/nofilahm/salesdash/internal/infra/context"
)

// ContextHandler wraps another handler and adds request-scoped values
// (trace id, session id, username) found in the context to every record.
type ContextHandler struct {
	h slog.Handler
}

var _ slog.Handler = (*ContextHandler)(nil)

// NewContextHandler creates a ContextHandler wrapping h.
func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{h: h}
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID, ok := context_.TraceIDFromContext(ctx); ok {
		r.AddAttrs(slog.Group("trace", slog.String("id", traceID)))
	}

	if sessionID, ok := context_.SessionIDFromContext(ctx); ok {
		r.AddAttrs(slog.Group("session", slog.String("id", sessionID)))
	}

	if username, ok := context_.UsernameFromContext(ctx); ok {
		r.AddAttrs(slog.String("user", username))
	}

	//nolint:wrapcheck
	return h.h.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewContextHandler(h.h.WithAttrs(attrs))
}

// WithGroup implements slog.Handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return NewContextHandler(h.h.WithGroup(name))
}

// Enabled implements slog.Handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}
