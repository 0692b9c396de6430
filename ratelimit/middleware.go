package ratelimit

import (
	"context"

	"github.com/jonwraymond/journalops/tool"
)

// KeyFunc derives the rate-limit bucket key for a call. Returning empty
// string falls back to DefaultClientID.
type KeyFunc func(ctx context.Context, args tool.Args) string

// Wrap returns middleware that admits calls through the limiter before the
// wrapped handler runs. Rejected calls fail with *LimitError carrying the
// reset time; the wrapped handler is not invoked.
func (l *Limiter) Wrap(keyFn KeyFunc) tool.Middleware {
	return func(next tool.Handler) tool.Handler {
		return func(ctx context.Context, args tool.Args) (any, error) {
			clientID := DefaultClientID
			if keyFn != nil {
				if id := keyFn(ctx, args); id != "" {
					clientID = id
				}
			}

			if !l.Allow(clientID) {
				return nil, &LimitError{
					ClientID: clientID,
					ResetAt:  l.ResetTime(clientID),
				}
			}

			return next(ctx, args)
		}
	}
}
