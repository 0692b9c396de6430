package tool

import "context"

// Args holds the named arguments of a single tool call.
type Args map[string]any

// String returns the string value for a key, or empty string if the key is
// absent or not a string.
func (a Args) String(key string) string {
	if a == nil {
		return ""
	}
	s, _ := a[key].(string)
	return s
}

// Strings returns the string-slice value for a key. Both []string and []any
// encodings are accepted; non-string elements are dropped.
func (a Args) Strings(key string) []string {
	if a == nil {
		return nil
	}
	switch v := a[key].(type) {
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				result = append(result, s)
			}
		}
		return result
	default:
		return nil
	}
}

// Clone returns a shallow copy of the args. Middleware that injects values
// must clone first so the caller's map is never mutated.
func (a Args) Clone() Args {
	if a == nil {
		return Args{}
	}
	clone := make(Args, len(a)+1)
	for k, v := range a {
		clone[k] = v
	}
	return clone
}

// Handler is the signature for tool execution functions.
// This is the standard function signature that Middleware wraps.
type Handler func(ctx context.Context, args Args) (any, error)

// Middleware wraps a Handler with additional behavior. The returned Handler
// must run the middleware's checks fully before invoking the wrapped one.
type Middleware func(Handler) Handler

// Chain composes middleware around a handler. The first middleware is the
// outermost: Chain(h, a, b) runs a, then b, then h.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}
