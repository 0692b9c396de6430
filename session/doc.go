// Package session manages in-process authentication sessions for the
// journal tool server.
//
// A Session is a cached projection of a user profile held by the backend,
// created after a successful credential exchange and kept until it expires
// or the user logs out. The Manager is the single entry point: it
// authenticates credentials against an AuthBackend, caches the resulting
// profile keyed by the full bearer token, and answers validation, refresh,
// and role questions for the rest of the server.
//
// Validation is two-tier: a cheap local expiry check followed by an
// authoritative re-check against the backend. A token the backend no
// longer recognizes is purged locally, so a server-side revocation is
// reflected on the very next validation. Logout is purely local; the
// backend token itself stays valid until it expires upstream.
//
// Storage is pluggable through the Store interface. MemoryStore is the
// default and sufficient for a single process; RedisStore shares sessions
// between replicas.
package session
