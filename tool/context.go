package tool

import "context"

// Context keys for dispatch-related values.
type contextKey int

const requestIDKey contextKey = iota

// WithRequestID returns a new context with the dispatch request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext retrieves the dispatch request ID from the context.
// Returns empty string if no request ID is present.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
