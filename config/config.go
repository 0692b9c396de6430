package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by FromEnv.
const (
	EnvBackendURL       = "BACKEND_URL"
	EnvCORSOrigins      = "CORS_ORIGINS"
	EnvCORSMethods      = "CORS_METHODS"
	EnvCORSHeaders      = "CORS_HEADERS"
	EnvRateLimitMax     = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow  = "RATE_LIMIT_WINDOW"
	EnvMaxFileSize      = "MAX_FILE_SIZE"
	EnvAllowedFileTypes = "ALLOWED_FILE_TYPES"
)

// Security holds the process-wide security settings. Resolved once at
// startup and immutable afterwards.
type Security struct {
	// BackendURL is the document-database backend endpoint.
	BackendURL string

	// CORSOrigins are the allowed cross-origin addresses. Empty disables CORS.
	CORSOrigins []string

	// CORSMethods are the allowed HTTP methods.
	// Default: GET, POST, OPTIONS
	CORSMethods []string

	// CORSHeaders are the allowed HTTP request headers.
	// Default: Content-Type, Accept
	CORSHeaders []string

	// RateLimitMax is the admission threshold per window.
	// Default: 100
	RateLimitMax int

	// RateLimitWindow is the trailing admission window. The environment
	// variable is in milliseconds.
	// Default: 60 seconds
	RateLimitWindow time.Duration

	// MaxFileSize is the maximum accepted upload size in bytes.
	// Default: 10 MiB
	MaxFileSize int64

	// AllowedFileTypes are the accepted upload content types.
	// Default: application/pdf
	AllowedFileTypes []string
}

// FromEnv resolves the security configuration from the environment. Values
// may reference other environment variables with ${env:VAR}; unresolvable
// references are an error.
func FromEnv() (*Security, error) {
	s := &Security{
		RateLimitMax:     100,
		RateLimitWindow:  60 * time.Second,
		MaxFileSize:      10 << 20,
		CORSMethods:      []string{"GET", "POST", "OPTIONS"},
		CORSHeaders:      []string{"Content-Type", "Accept"},
		AllowedFileTypes: []string{"application/pdf"},
	}

	var err error
	if s.BackendURL, err = lookup(EnvBackendURL); err != nil {
		return nil, err
	}

	if v, err := lookup(EnvCORSOrigins); err != nil {
		return nil, err
	} else if v != "" {
		s.CORSOrigins = splitList(v)
	}
	if v, err := lookup(EnvCORSMethods); err != nil {
		return nil, err
	} else if v != "" {
		s.CORSMethods = splitList(v)
	}
	if v, err := lookup(EnvCORSHeaders); err != nil {
		return nil, err
	} else if v != "" {
		s.CORSHeaders = splitList(v)
	}

	if v := os.Getenv(EnvRateLimitMax); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", EnvRateLimitMax, err)
		}
		s.RateLimitMax = n
	}
	if v := os.Getenv(EnvRateLimitWindow); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", EnvRateLimitWindow, err)
		}
		s.RateLimitWindow = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv(EnvMaxFileSize); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", EnvMaxFileSize, err)
		}
		s.MaxFileSize = n
	}
	if v := os.Getenv(EnvAllowedFileTypes); v != "" {
		s.AllowedFileTypes = splitList(v)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the configuration for nonsensical values.
func (s *Security) Validate() error {
	if s.RateLimitMax <= 0 {
		return fmt.Errorf("config: rate limit threshold must be positive, got %d", s.RateLimitMax)
	}
	if s.RateLimitWindow <= 0 {
		return fmt.Errorf("config: rate limit window must be positive, got %v", s.RateLimitWindow)
	}
	if s.MaxFileSize <= 0 {
		return fmt.Errorf("config: max file size must be positive, got %d", s.MaxFileSize)
	}
	if len(s.AllowedFileTypes) == 0 {
		return fmt.Errorf("config: at least one allowed file type is required")
	}
	return nil
}

// ResponseHeaders returns the CORS headers for HTTP responses. Returns an
// empty map when no origins are configured.
func (s *Security) ResponseHeaders() map[string]string {
	if len(s.CORSOrigins) == 0 {
		return map[string]string{}
	}

	return map[string]string{
		"Access-Control-Allow-Origin":  strings.Join(s.CORSOrigins, ","),
		"Access-Control-Allow-Methods": strings.Join(s.CORSMethods, ","),
		"Access-Control-Allow-Headers": strings.Join(s.CORSHeaders, ","),
		"Access-Control-Max-Age":       "86400",
	}
}

// lookup reads an environment variable and expands ${env:VAR} references
// inside its value.
func lookup(key string) (string, error) {
	return expandRefs(os.Getenv(key))
}

// splitList parses a comma-separated value, dropping empty items.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
