package ratelimit

import (
	"sync"
	"time"
)

// DefaultClientID is the bucket key used when no caller-supplied discriminator
// is available. With this key the limiter degenerates to one shared global
// bucket; transports that need per-caller isolation must derive a real key
// (for example from the connection address).
const DefaultClientID = "default"

// Config configures the sliding-window limiter.
type Config struct {
	// MaxRequests is the number of calls admitted per window.
	// Default: 100
	MaxRequests int

	// Window is the trailing time window.
	// Default: 60 seconds
	Window time.Duration

	// Now overrides the clock, for tests. Default: time.Now.
	Now func() time.Time
}

// Limiter implements a per-client sliding-window admission check.
type Limiter struct {
	config Config

	mu      sync.Mutex
	buckets map[string][]time.Time
}

// NewLimiter creates a new sliding-window limiter.
func NewLimiter(config Config) *Limiter {
	// Apply defaults
	if config.MaxRequests <= 0 {
		config.MaxRequests = 100
	}
	if config.Window <= 0 {
		config.Window = 60 * time.Second
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Limiter{
		config:  config,
		buckets: make(map[string][]time.Time),
	}
}

// Allow checks if a call from clientID is admitted. Entries older than the
// window are discarded first; if the surviving count has reached the limit
// the call is rejected and not recorded, otherwise the call is recorded and
// admitted.
func (l *Limiter) Allow(clientID string) bool {
	now := l.config.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	bucket := l.pruneLocked(clientID, now)

	if len(bucket) >= l.config.MaxRequests {
		l.buckets[clientID] = bucket
		return false
	}

	l.buckets[clientID] = append(bucket, now)
	return true
}

// ResetTime returns the moment the oldest recorded call for clientID falls
// outside the window. With no recorded history it returns now.
func (l *Limiter) ResetTime(clientID string) time.Time {
	now := l.config.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	bucket := l.pruneLocked(clientID, now)
	l.buckets[clientID] = bucket

	if len(bucket) == 0 {
		return now
	}
	return bucket[0].Add(l.config.Window)
}

// Sweep drops buckets whose newest entry is older than the window and
// returns the number removed. The limiter never runs this itself: the
// reference behavior keeps stale buckets for the process lifetime, so eviction
// is left to the owner's discretion. Admission semantics are unaffected.
func (l *Limiter) Sweep() int {
	now := l.config.Now()
	cutoff := now.Add(-l.config.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, bucket := range l.buckets {
		if len(bucket) == 0 || bucket[len(bucket)-1].Before(cutoff) {
			delete(l.buckets, id)
			removed++
		}
	}
	return removed
}

// Clients returns the number of tracked client buckets.
func (l *Limiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// pruneLocked drops entries older than the window. Caller must hold the lock.
func (l *Limiter) pruneLocked(clientID string, now time.Time) []time.Time {
	cutoff := now.Add(-l.config.Window)
	bucket := l.buckets[clientID]

	idx := 0
	for idx < len(bucket) && bucket[idx].Before(cutoff) {
		idx++
	}
	return bucket[idx:]
}
