package session

import (
	"context"
	"sync"
	"time"
)

// Store persists sessions keyed by their full bearer token. Implementations
// must be safe for concurrent use.
//
// Lookups return (nil, nil) for absent tokens; an error means the store
// itself failed, not that the session is missing. Expiry is the Manager's
// concern: a Store may drop expired entries on its own (RedisStore does,
// via key TTLs) but is never required to.
type Store interface {
	// Put inserts or replaces the session keyed by s.Token.
	Put(ctx context.Context, s *Session) error

	// GetByToken returns the session for the exact token, or nil.
	GetByToken(ctx context.Context, token string) (*Session, error)

	// GetByEmail returns the session for the email with the latest
	// expiry, or nil when the email has no sessions. A user who logged
	// in twice has two live sessions; the freshest one wins.
	GetByEmail(ctx context.Context, email string) (*Session, error)

	// Delete removes the session for the token and reports whether one
	// was present.
	Delete(ctx context.Context, token string) (bool, error)

	// PurgeExpired removes every session whose ExpiresAt is at or before
	// now and returns how many were dropped. Stores that expire entries
	// themselves may report zero.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)

	// Count returns the number of stored sessions, expired or not.
	Count(ctx context.Context) (int, error)
}

// MemoryStore is the default in-process Store: a mutex-guarded map with a
// secondary index from email to the tokens issued for it.
//
// The zero value is not usable; call NewMemoryStore.
type MemoryStore struct {
	mu      sync.RWMutex
	byToken map[string]*Session
	byEmail map[string]map[string]struct{} // email -> set of tokens
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byToken: make(map[string]*Session),
		byEmail: make(map[string]map[string]struct{}),
	}
}

var _ Store = (*MemoryStore)(nil)

// Put inserts or replaces the session keyed by s.Token.
func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.byToken[s.Token]; ok && old.Email != s.Email {
		m.unindexLocked(old)
	}
	m.byToken[s.Token] = s
	tokens := m.byEmail[s.Email]
	if tokens == nil {
		tokens = make(map[string]struct{})
		m.byEmail[s.Email] = tokens
	}
	tokens[s.Token] = struct{}{}
	return nil
}

// GetByToken returns the session for the exact token, or nil.
func (m *MemoryStore) GetByToken(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byToken[token], nil
}

// GetByEmail returns the email's session with the latest expiry, or nil.
func (m *MemoryStore) GetByEmail(_ context.Context, email string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best *Session
	for token := range m.byEmail[email] {
		s := m.byToken[token]
		if s == nil {
			continue
		}
		if best == nil || s.ExpiresAt.After(best.ExpiresAt) {
			best = s
		}
	}
	return best, nil
}

// Delete removes the session for the token and reports whether one existed.
func (m *MemoryStore) Delete(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byToken[token]
	if !ok {
		return false, nil
	}
	delete(m.byToken, token)
	m.unindexLocked(s)
	return true, nil
}

// PurgeExpired drops every session expired at now and returns the count.
func (m *MemoryStore) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dropped := 0
	for token, s := range m.byToken {
		if s.Expired(now) {
			delete(m.byToken, token)
			m.unindexLocked(s)
			dropped++
		}
	}
	return dropped, nil
}

// Count returns the number of stored sessions.
func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byToken), nil
}

func (m *MemoryStore) unindexLocked(s *Session) {
	tokens := m.byEmail[s.Email]
	delete(tokens, s.Token)
	if len(tokens) == 0 {
		delete(m.byEmail, s.Email)
	}
}
