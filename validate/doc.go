// Package validate provides input sanitizers for tool arguments: free-text
// strings, bearer token format, file uploads, and client identifiers for
// rate limiting. Validators reject rather than repair, except Input which
// strips control characters.
package validate
