package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/journalops/tool"
)

// manualClock is a settable clock for deterministic window tests.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Unix(1700000000, 0)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestNewLimiter_Defaults(t *testing.T) {
	l := NewLimiter(Config{})

	if l.config.MaxRequests != 100 {
		t.Errorf("MaxRequests = %d, want 100", l.config.MaxRequests)
	}
	if l.config.Window != 60*time.Second {
		t.Errorf("Window = %v, want 60s", l.config.Window)
	}
}

func TestLimiter_AllowUpToLimit(t *testing.T) {
	clock := newManualClock()
	l := NewLimiter(Config{MaxRequests: 5, Window: time.Minute, Now: clock.Now})

	for i := 0; i < 5; i++ {
		if !l.Allow("client-a") {
			t.Fatalf("Allow() = false on call %d, want true", i+1)
		}
	}
	if l.Allow("client-a") {
		t.Error("Allow() = true on call 6, want false")
	}
}

func TestLimiter_RejectionNotRecorded(t *testing.T) {
	clock := newManualClock()
	l := NewLimiter(Config{MaxRequests: 2, Window: time.Minute, Now: clock.Now})

	l.Allow("c")
	clock.Advance(10 * time.Second)
	l.Allow("c")

	// Rejections must not push the reset time forward.
	if l.Allow("c") {
		t.Fatal("Allow() = true over limit, want false")
	}
	reset := l.ResetTime("c")

	if l.Allow("c") {
		t.Fatal("Allow() = true over limit, want false")
	}
	if got := l.ResetTime("c"); !got.Equal(reset) {
		t.Errorf("ResetTime moved after rejected call: %v -> %v", reset, got)
	}
}

func TestLimiter_WindowSlides(t *testing.T) {
	clock := newManualClock()
	l := NewLimiter(Config{MaxRequests: 3, Window: time.Minute, Now: clock.Now})

	for i := 0; i < 3; i++ {
		if !l.Allow("c") {
			t.Fatalf("Allow() = false on call %d", i+1)
		}
	}
	if l.Allow("c") {
		t.Fatal("Allow() = true at limit, want false")
	}

	// Once the first call ages out of the window, one slot frees up.
	clock.Advance(time.Minute + time.Second)
	if !l.Allow("c") {
		t.Error("Allow() = false after window elapsed, want true")
	}
}

func TestLimiter_ClientsIsolated(t *testing.T) {
	clock := newManualClock()
	l := NewLimiter(Config{MaxRequests: 1, Window: time.Minute, Now: clock.Now})

	if !l.Allow("a") {
		t.Fatal("Allow(a) = false, want true")
	}
	if l.Allow("a") {
		t.Fatal("Allow(a) = true over limit, want false")
	}
	if !l.Allow("b") {
		t.Error("Allow(b) = false, want true; buckets must be independent")
	}
}

func TestLimiter_ResetTime(t *testing.T) {
	clock := newManualClock()
	l := NewLimiter(Config{MaxRequests: 10, Window: time.Minute, Now: clock.Now})

	// No history: reset is now.
	if got := l.ResetTime("c"); !got.Equal(clock.Now()) {
		t.Errorf("ResetTime() with no history = %v, want now", got)
	}

	start := clock.Now()
	l.Allow("c")
	if got := l.ResetTime("c"); !got.Equal(start.Add(time.Minute)) {
		t.Errorf("ResetTime() = %v, want oldest+window", got)
	}
}

func TestLimiter_ResetTimeMonotonic(t *testing.T) {
	clock := newManualClock()
	l := NewLimiter(Config{MaxRequests: 3, Window: time.Minute, Now: clock.Now})

	prev := l.ResetTime("c")
	for i := 0; i < 20; i++ {
		l.Allow("c")
		reset := l.ResetTime("c")

		if reset.Before(prev) {
			t.Fatalf("ResetTime decreased: %v -> %v", prev, reset)
		}
		if bound := clock.Now().Add(time.Minute); reset.After(bound) {
			t.Fatalf("ResetTime %v beyond now+window %v", reset, bound)
		}

		prev = reset
		clock.Advance(5 * time.Second)
	}
}

func TestLimiter_Sweep(t *testing.T) {
	clock := newManualClock()
	l := NewLimiter(Config{MaxRequests: 5, Window: time.Minute, Now: clock.Now})

	l.Allow("stale")
	clock.Advance(30 * time.Second)
	l.Allow("fresh")

	if got := l.Clients(); got != 2 {
		t.Fatalf("Clients() = %d, want 2", got)
	}

	clock.Advance(45 * time.Second)
	if removed := l.Sweep(); removed != 1 {
		t.Errorf("Sweep() = %d, want 1", removed)
	}
	if got := l.Clients(); got != 1 {
		t.Errorf("Clients() after sweep = %d, want 1", got)
	}

	// Sweep must not change admission for surviving clients.
	if !l.Allow("fresh") {
		t.Error("Allow(fresh) = false after sweep, want true")
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l := NewLimiter(Config{MaxRequests: 100, Window: time.Minute})

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 250; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared") {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != 100 {
		t.Errorf("concurrent admitted = %d, want exactly 100", admitted)
	}
}

func TestWrap_RejectsWithLimitError(t *testing.T) {
	clock := newManualClock()
	l := NewLimiter(Config{MaxRequests: 1, Window: time.Minute, Now: clock.Now})

	calls := 0
	h := tool.Chain(func(ctx context.Context, args tool.Args) (any, error) {
		calls++
		return "ok", nil
	}, l.Wrap(nil))

	if _, err := h(context.Background(), nil); err != nil {
		t.Fatalf("first call error = %v", err)
	}

	_, err := h(context.Background(), nil)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("second call error = %v, want ErrRateLimited", err)
	}

	var limitErr *LimitError
	if !errors.As(err, &limitErr) {
		t.Fatal("error is not *LimitError")
	}
	if limitErr.ClientID != DefaultClientID {
		t.Errorf("ClientID = %q, want %q", limitErr.ClientID, DefaultClientID)
	}
	if bound := clock.Now().Add(time.Minute); limitErr.ResetAt.After(bound) {
		t.Errorf("ResetAt = %v, beyond now+window %v", limitErr.ResetAt, bound)
	}
	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}
}

func TestWrap_KeyFunc(t *testing.T) {
	clock := newManualClock()
	l := NewLimiter(Config{MaxRequests: 1, Window: time.Minute, Now: clock.Now})

	keyFn := func(ctx context.Context, args tool.Args) string {
		return args.String("client")
	}
	h := tool.Chain(func(ctx context.Context, args tool.Args) (any, error) {
		return nil, nil
	}, l.Wrap(keyFn))

	if _, err := h(context.Background(), tool.Args{"client": "a"}); err != nil {
		t.Fatalf("client a first call error = %v", err)
	}
	if _, err := h(context.Background(), tool.Args{"client": "b"}); err != nil {
		t.Errorf("client b error = %v, want nil; keys must isolate buckets", err)
	}
	if _, err := h(context.Background(), tool.Args{"client": "a"}); !errors.Is(err, ErrRateLimited) {
		t.Errorf("client a second call error = %v, want ErrRateLimited", err)
	}

	// Empty key falls back to the shared default bucket.
	if _, err := h(context.Background(), tool.Args{}); err != nil {
		t.Errorf("default bucket first call error = %v", err)
	}
}
