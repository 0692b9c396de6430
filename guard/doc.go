// Package guard enforces authentication and role checks in front of tool
// handlers.
//
// RequireRoles wraps a handler so it only runs for callers presenting a
// valid bearer token whose session carries one of the required roles. The
// wrapped handler receives the session both through its context and as a
// "session" argument, so handlers never re-validate the token themselves.
//
// Failures are ordered: a missing token is reported before the backend is
// ever consulted, an unverifiable token before any role comparison. Each
// failure class has its own sentinel so transports can map them to
// distinct client-facing errors.
package guard
