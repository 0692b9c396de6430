package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/journalops/backend"
)

// Config configures a Manager. The zero value is usable and yields the
// documented defaults.
type Config struct {
	// TTL is the local session lifetime.
	// Default: DefaultTTL (24 hours).
	TTL time.Duration

	// ValidationCacheTTL bounds how long a positive backend answer for a
	// token is trusted before ValidateToken asks the backend again. Zero
	// disables the cache, so every validation is a backend round trip.
	// Default: 0 (disabled).
	ValidationCacheTTL time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Manager authenticates users against a backend and owns their cached
// sessions. All methods are safe for concurrent use.
//
// Validation semantics: a session is live only while its local expiry has
// not passed AND the backend still honors its token. Lookup failures of
// any kind collapse to "no session" rather than an error; callers that
// need to distinguish backend outage from revocation should not — both
// mean the request must not proceed authenticated.
type Manager struct {
	backend  backend.AuthBackend
	store    Store
	ttl      time.Duration
	cacheTTL time.Duration
	now      func() time.Time

	// sf collapses concurrent backend re-checks of the same token into a
	// single in-flight call.
	sf singleflight.Group

	mu      sync.Mutex
	checked map[string]time.Time // token -> last positive backend answer
}

// NewManager creates a Manager over the given backend and store. A nil
// store defaults to a fresh MemoryStore.
func NewManager(b backend.AuthBackend, store Store, config Config) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Manager{
		backend:  b,
		store:    store,
		ttl:      config.TTL,
		cacheTTL: config.ValidationCacheTTL,
		now:      config.Now,
		checked:  make(map[string]time.Time),
	}
}

// Authenticate exchanges an email/password pair for a new session. On
// success the session is stored and returned; the stored value appears
// only after it is fully populated, so a concurrent ValidateToken never
// observes a half-built session.
//
// Any backend failure, credential rejection included, surfaces as
// ErrInvalidCredentials.
func (m *Manager) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	tokens, err := m.backend.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	profile, err := m.backend.FetchProfile(ctx, tokens.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	now := m.now()
	s := &Session{
		UserID:    profile.ID,
		Email:     profile.Email,
		Name:      profile.Name,
		Roles:     rolesOrDefault(profile.Roles),
		Token:     tokens.Token,
		ExpiresAt: m.expiry(now, tokens.Token),
	}
	if err := m.store.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("session: store: %w", err)
	}
	m.markChecked(tokens.Token, now)
	return s, nil
}

// Register creates a new account with the backend and signs it in,
// returning the fresh session. A backend rejection maps to
// ErrAccountExists; signUp refusals in practice mean the email is taken.
func (m *Manager) Register(ctx context.Context, email, password string) (*Session, error) {
	if _, err := m.backend.CreateAccount(ctx, email, password); err != nil {
		if errors.Is(err, backend.ErrRejected) {
			return nil, fmt.Errorf("%w: %v", ErrAccountExists, err)
		}
		return nil, fmt.Errorf("session: create account: %w", err)
	}
	return m.Authenticate(ctx, email, password)
}

// ValidateToken returns the live session for the token, or nil. It checks
// local expiry first, then confirms the token with the backend; a token
// the backend no longer honors is purged locally so revocation takes
// effect on the next call. A missing or empty token costs nothing.
func (m *Manager) ValidateToken(ctx context.Context, token string) *Session {
	if token == "" {
		return nil
	}
	s := m.lookupLive(ctx, token)
	if s == nil {
		return nil
	}
	if m.recentlyChecked(token) {
		return s
	}
	if _, err := m.fetchProfile(ctx, token); err != nil {
		m.evict(ctx, token)
		return nil
	}
	m.markChecked(token, m.now())
	return s
}

// SessionByEmail returns the freshest unexpired session for the email, or
// nil. Unlike ValidateToken it does not consult the backend; it answers
// "is this user signed in here" from local state only.
func (m *Manager) SessionByEmail(ctx context.Context, email string) *Session {
	s, err := m.store.GetByEmail(ctx, email)
	if err != nil || s == nil || s.Expired(m.now()) {
		return nil
	}
	return s
}

// Logout removes the local session for the token and reports whether one
// existed. It is idempotent and never contacts the backend: the upstream
// token stays valid until it expires there, but this server will no
// longer honor it without a fresh Authenticate.
func (m *Manager) Logout(ctx context.Context, token string) bool {
	ok, err := m.store.Delete(ctx, token)
	m.forgetChecked(token)
	return err == nil && ok
}

// Refresh re-validates the token against the backend, overwrites the
// session's name and roles from the fresh profile, and re-arms its expiry
// to a full TTL from now. It returns the updated session, or nil when the
// token no longer resolves to a live session.
//
// The update is copy-on-write: readers holding the old *Session keep a
// consistent snapshot while the store swaps in the replacement.
func (m *Manager) Refresh(ctx context.Context, token string) *Session {
	s := m.lookupLive(ctx, token)
	if s == nil {
		return nil
	}
	profile, err := m.fetchProfile(ctx, token)
	if err != nil {
		m.evict(ctx, token)
		return nil
	}
	now := m.now()
	updated := *s
	updated.Name = profile.Name
	updated.Roles = rolesOrDefault(profile.Roles)
	updated.ExpiresAt = m.expiry(now, token)
	if err := m.store.Put(ctx, &updated); err != nil {
		return nil
	}
	m.markChecked(token, now)
	return &updated
}

// CountLiveSessions sweeps expired sessions out of the store and returns
// how many remain. This is the only proactive reaping the Manager does;
// everywhere else expired sessions are dropped lazily on lookup.
func (m *Manager) CountLiveSessions(ctx context.Context) int {
	if _, err := m.store.PurgeExpired(ctx, m.now()); err != nil {
		return 0
	}
	n, err := m.store.Count(ctx)
	if err != nil {
		return 0
	}
	return n
}

// lookupLive fetches the session and enforces local expiry, purging a
// stale entry as a side effect.
func (m *Manager) lookupLive(ctx context.Context, token string) *Session {
	s, err := m.store.GetByToken(ctx, token)
	if err != nil || s == nil {
		return nil
	}
	if s.Expired(m.now()) {
		m.evict(ctx, token)
		return nil
	}
	return s
}

// fetchProfile asks the backend whether the token is still honored,
// collapsing concurrent calls for the same token into one request.
func (m *Manager) fetchProfile(ctx context.Context, token string) (*backend.Profile, error) {
	v, err, _ := m.sf.Do(token, func() (any, error) {
		return m.backend.FetchProfile(ctx, token)
	})
	if err != nil {
		return nil, err
	}
	return v.(*backend.Profile), nil
}

func (m *Manager) evict(ctx context.Context, token string) {
	// Eviction is best-effort; a store failure here only delays the purge
	// until the next lookup.
	_, _ = m.store.Delete(ctx, token)
	m.forgetChecked(token)
}

func (m *Manager) recentlyChecked(token string) bool {
	if m.cacheTTL <= 0 {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	at, ok := m.checked[token]
	return ok && m.now().Sub(at) < m.cacheTTL
}

func (m *Manager) markChecked(token string, at time.Time) {
	if m.cacheTTL <= 0 {
		return
	}
	m.mu.Lock()
	m.checked[token] = at
	m.mu.Unlock()
}

func (m *Manager) forgetChecked(token string) {
	if m.cacheTTL <= 0 {
		return
	}
	m.mu.Lock()
	delete(m.checked, token)
	m.mu.Unlock()
}

// expiry computes a session deadline: a full TTL from now, capped at the
// bearer token's own exp claim when the token is a parseable JWT. A
// session must never claim to outlive the credential it is keyed by.
func (m *Manager) expiry(now time.Time, token string) time.Time {
	deadline := now.Add(m.ttl)
	if exp, ok := tokenExpiry(token); ok && exp.Before(deadline) {
		deadline = exp
	}
	return deadline
}

// tokenExpiry extracts the exp claim from a JWT without verifying its
// signature; verification is the backend's job, this only reads metadata
// the backend already vouched for. Non-JWT tokens report no expiry.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func rolesOrDefault(roles []string) []string {
	if len(roles) == 0 {
		return []string{RoleAuthor}
	}
	return roles
}
