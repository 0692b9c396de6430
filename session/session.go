package session

import (
	"slices"
	"time"
)

// Role names understood by the journal server. Roles are free-form strings
// as far as storage is concerned; these constants cover the built-in
// workflow roles plus the RoleAny sentinel.
const (
	RoleAuthor   = "author"
	RoleReviewer = "reviewer"
	RoleEditor   = "editor"
	RoleAdmin    = "admin"

	// RoleAny matches every authenticated session regardless of its
	// roles. It is only meaningful as a *required* role; a session
	// carrying "any" in its own role list gains nothing from it.
	RoleAny = "any"
)

// DefaultTTL is the session lifetime applied when the Manager is not
// configured otherwise.
const DefaultTTL = 24 * time.Hour

// Session is an authenticated user's cached profile. It is keyed by the
// full backend bearer token and lives until ExpiresAt or an explicit
// logout.
//
// Sessions are treated as immutable after insertion: Refresh replaces the
// stored value wholesale rather than mutating it in place, so a *Session
// handed to a caller never changes underneath them.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Roles     []string  `json:"roles"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session's local lifetime has passed at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Remaining returns the time left until local expiry, or zero if the
// session is already expired at now.
func (s *Session) Remaining(now time.Time) time.Duration {
	if s.Expired(now) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}

// HasRole reports whether the session carries the named role.
func (s *Session) HasRole(role string) bool {
	return slices.Contains(s.Roles, role)
}

// CheckRole reports whether s satisfies the required role set: true when
// any required role appears in the session's roles, or when the
// requirement includes RoleAny. An empty requirement admits nobody.
// A nil session never satisfies anything.
func CheckRole(s *Session, required []string) bool {
	if s == nil {
		return false
	}
	for _, r := range required {
		if r == RoleAny || s.HasRole(r) {
			return true
		}
	}
	return false
}
