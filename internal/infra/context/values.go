package context

import (
	"context"

	"github.com/nofilahm/salesdash/internal/domain"
)

type contextKey string

const (
	contextKeyTraceID   = contextKey("traceID")
	contextKeySessionID = contextKey("sessionID")
	contextKeyUsername  = contextKey("username")
	contextKeySession   = contextKey("session")
)

func valueFromContext(ctx context.Context, key contextKey) (string, bool) {
	value, ok := ctx.Value(key).(string)

	return value, ok && value != ""
}

// TraceIDFromContext extracts the request trace ID from the context.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	return valueFromContext(ctx, contextKeyTraceID)
}

// WithTraceID returns a context carrying the given trace ID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, contextKeyTraceID, traceID)
}

// SessionIDFromContext extracts the browsing session ID from the context.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	return valueFromContext(ctx, contextKeySessionID)
}

// WithSessionID returns a context carrying the given session ID.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, contextKeySessionID, sessionID)
}

// UsernameFromContext extracts the logged in username from the context.
// Returns false for anonymous requests.
func UsernameFromContext(ctx context.Context) (string, bool) {
	return valueFromContext(ctx, contextKeyUsername)
}

// WithUsername returns a context carrying the logged in username.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, contextKeyUsername, username)
}

// SessionFromContext extracts the browsing session resolved for the request.
func SessionFromContext(ctx context.Context) (domain.Session, bool) {
	s, ok := ctx.Value(contextKeySession).(domain.Session)

	return s, ok
}

// WithSession returns a context carrying the browsing session.
func WithSession(ctx context.Context, s domain.Session) context.Context {
	return context.WithValue(ctx, contextKeySession, s)
}
