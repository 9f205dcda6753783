package identity

import (
	"net/http"
	"strings"
)

// TokenExtractor pulls a candidate session token from one transport channel
// of an inbound request. Extraction is pure: no verification, no side effects.
type TokenExtractor interface {
	Extract(r *http.Request) (string, bool)
}

// CookieExtractor reads the session cookie. This is the primary channel for
// browser clients and keeps httpOnly protection intact.
type CookieExtractor struct {
	Name string
}

// Extract returns the cookie value when present and non-empty.
func (e CookieExtractor) Extract(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(e.Name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// HeaderExtractor reads the identity header. The embedded mobile webview
// cannot reliably persist cookies but can always set a custom header.
type HeaderExtractor struct {
	Name string
}

// Extract returns the trimmed header value when present and non-empty.
func (e HeaderExtractor) Extract(r *http.Request) (string, bool) {
	value := strings.TrimSpace(r.Header.Get(e.Name))
	if value == "" {
		return "", false
	}
	return value, true
}

// Resolver tries an ordered list of extractors and returns the first
// candidate token found. Adding a transport is appending an extractor.
type Resolver struct {
	extractors []TokenExtractor
}

// NewResolver constructs a Resolver trying extractors in the given order.
func NewResolver(extractors ...TokenExtractor) *Resolver {
	return &Resolver{extractors: extractors}
}

// Resolve returns the candidate token, or false when every channel is empty.
func (r *Resolver) Resolve(req *http.Request) (string, bool) {
	for _, ex := range r.extractors {
		if token, ok := ex.Extract(req); ok {
			return token, true
		}
	}
	return "", false
}
