// Package backend is the HTTP client for the journal's document-database
// backend, which owns credential verification, user profiles, and all
// manuscript state. The session core treats it as an opaque capability:
// verify credentials, fetch the profile behind a token, create an account,
// and make generic function calls on behalf of the pass-through tools.
//
// The client never retries; callers decide what a failed call means.
package backend
