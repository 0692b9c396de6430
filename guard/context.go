package guard

import (
	"context"

	"github.com/jonwraymond/journalops/session"
)

type contextKey int

const sessionKey contextKey = iota

// WithSession returns a context carrying the session.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the session attached by the guard, or nil.
func SessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey).(*session.Session)
	return s
}
