package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrEmptyURL          = errors.New("url is empty")
	ErrMalformedURL      = errors.New("url is malformed")
	ErrUnsupportedScheme = errors.New("url scheme is not supported")
	ErrMissingHost       = errors.New("url has no host")
)

// ParseRenderURL validates a raw URL before it is handed to a browser.
//
// Accepted:
//   - http and https URLs with a host
//   - file URLs with a path
//
// Scheme matching is case-insensitive. The raw string itself is not rewritten;
// callers key caches on the string they were given.
func ParseRenderURL(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyURL
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}

	switch lowerASCII(parsed.Scheme) {
	case "http", "https":
		if parsed.Hostname() == "" {
			return nil, fmt.Errorf("%w: %q", ErrMissingHost, raw)
		}
	case "file":
		if parsed.Path == "" {
			return nil, fmt.Errorf("%w: %q has no path", ErrMalformedURL, raw)
		}
	case "":
		return nil, fmt.Errorf("%w: %q has no scheme", ErrMalformedURL, raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, parsed.Scheme)
	}

	return parsed, nil
}

// Host returns the lowercased host of raw, or "" when raw does not parse.
// Used for log and metric labels, never for cache keys.
func Host(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return lowerASCII(parsed.Hostname())
}

// lowerASCII converts ASCII characters to lowercase without allocating.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
