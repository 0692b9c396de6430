// Package config resolves the process-wide security configuration from the
// environment once at startup: cross-origin policy, admission limits, upload
// constraints, and the backend endpoint. The resulting Security value is
// read-only and shared by all requests.
package config
