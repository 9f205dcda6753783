package identity

import (
	"context"
	"net/http"
	"time"
)

// MaxSessionLifetime bounds every issued session artifact.
const MaxSessionLifetime = 30 * 24 * time.Hour

// Issuer produces the transport-level session artifact after a verified
// login or a session-restore event. The cookie value is the principal id
// itself: a pure lookup key, not a signed token.
type Issuer struct {
	store      PrincipalStore
	cookieName string
	ttl        time.Duration
	secure     bool
}

// NewIssuer constructs an Issuer. Lifetimes above MaxSessionLifetime or
// non-positive are clamped to MaxSessionLifetime.
func NewIssuer(store PrincipalStore, cookieName string, ttl time.Duration, secure bool) *Issuer {
	if ttl <= 0 || ttl > MaxSessionLifetime {
		ttl = MaxSessionLifetime
	}
	return &Issuer{store: store, cookieName: cookieName, ttl: ttl, secure: secure}
}

// Issue validates that userID resolves to an existing account, then builds
// the session cookie. A failed lookup returns the error unchanged and no
// cookie is produced: partial issuance is forbidden.
func (i *Issuer) Issue(ctx context.Context, userID string) (*http.Cookie, error) {
	principal, err := i.store.GetPrincipalByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     i.cookieName,
		Value:    principal.ID,
		Path:     "/",
		MaxAge:   int(i.ttl.Seconds()),
		HttpOnly: true,
		Secure:   i.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Clear returns an expired cookie used on logout.
func (i *Issuer) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     i.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   i.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// TTL exposes the effective session lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (i *Issuer) CookieName() string {
	return i.cookieName
}
