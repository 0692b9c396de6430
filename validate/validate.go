package validate

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
)

// Sentinel errors for input validation.
var (
	ErrInputTooLong      = errors.New("validate: input too long")
	ErrTokenFormat       = errors.New("validate: invalid token format")
	ErrFileTooLarge      = errors.New("validate: file too large")
	ErrFileTypeDenied    = errors.New("validate: file type not allowed")
	ErrFileNameUnsafe    = errors.New("validate: invalid file name")
)

const (
	// DefaultMaxInputLen caps free-text arguments when no explicit limit
	// is given.
	DefaultMaxInputLen = 1000

	tokenMinLen = 10
	tokenMaxLen = 500
)

// Input sanitizes a free-text string argument: enforces the length cap,
// strips control characters (keeping \n, \r, \t), and trims surrounding
// whitespace.
func Input(s string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxInputLen
	}
	if len(s) > maxLen {
		return "", fmt.Errorf("%w: max length %d", ErrInputTooLong, maxLen)
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 32 || r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// AuthToken checks that a bearer token is plausibly well-formed before it is
// sent anywhere: bounded length and a base64-like alphabet. It makes no
// statement about validity; that is the session manager's job.
func AuthToken(token string) error {
	if len(token) < tokenMinLen || len(token) > tokenMaxLen {
		return fmt.Errorf("%w: length out of range", ErrTokenFormat)
	}
	for _, r := range token {
		if !isTokenRune(r) {
			return fmt.Errorf("%w: invalid character", ErrTokenFormat)
		}
	}
	return nil
}

func isTokenRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("+/=-_.", r)
}

// FileUpload checks an incoming base64-encoded upload against the configured
// size and content-type limits. Size is estimated from the encoded length
// (base64 carries ~3 payload bytes per 4 characters).
func FileUpload(fileData, fileName, contentType string, maxSize int64, allowedTypes []string) error {
	estimated := int64(float64(len(fileData)) * 0.75)
	if estimated > maxSize {
		return fmt.Errorf("%w: max size %d bytes", ErrFileTooLarge, maxSize)
	}

	allowed := false
	for _, t := range allowedTypes {
		if t == contentType {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %q", ErrFileTypeDenied, contentType)
	}

	if fileName == "" ||
		strings.Contains(fileName, "..") ||
		strings.ContainsAny(fileName, `/\`) {
		return ErrFileNameUnsafe
	}

	return nil
}

// ClientIdentifier derives a rate-limit bucket key from transport headers.
// Prefers the first X-Forwarded-For hop; falls back to a small hash bucket
// of the user agent so unidentified clients at least spread across buckets.
func ClientIdentifier(headers map[string]string) string {
	if xff := headers["X-Forwarded-For"]; xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return "ip_" + strings.TrimSpace(first)
	}

	ua := headers["User-Agent"]
	if ua == "" {
		ua = "unknown"
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(ua))
	return fmt.Sprintf("ua_%d", h.Sum32()%10000)
}
