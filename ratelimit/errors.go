package ratelimit

import (
	"errors"
	"fmt"
	"time"
)

// ErrRateLimited is returned when the admission limit is exceeded.
var ErrRateLimited = errors.New("ratelimit: rate limit exceeded")

// LimitError reports a rejected call together with the moment capacity frees
// up, so callers can back off or inform the end user.
type LimitError struct {
	// ClientID is the bucket key that was over its limit.
	ClientID string

	// ResetAt is when the oldest recorded call falls out of the window.
	ResetAt time.Time
}

// Error returns the error message.
func (e *LimitError) Error() string {
	return fmt.Sprintf("ratelimit: limit exceeded for client %q, resets at %s",
		e.ClientID, e.ResetAt.Format(time.RFC3339))
}

// Is reports whether this error matches ErrRateLimited.
func (e *LimitError) Is(target error) bool {
	return target == ErrRateLimited
}
