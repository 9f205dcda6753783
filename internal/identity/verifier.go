package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/planora/planora/internal/shared"
)

// Verifier turns a candidate session token into a verified Principal.
// Verification is idempotent and side-effect free: two calls with the same
// token yield the same result modulo underlying data changes.
type Verifier struct {
	store PrincipalStore
}

// NewVerifier constructs a Verifier over the given store.
func NewVerifier(store PrincipalStore) *Verifier {
	return &Verifier{store: store}
}

// Verify resolves the candidate token.
//
// An empty token fails with ErrNotAuthenticated, a token matching no record
// fails with ErrNotFound, and transient store failures surface as
// ErrStoreUnavailable. The returned Principal is always freshly fetched.
func (v *Verifier) Verify(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}
	principal, err := v.store.GetPrincipalByID(ctx, token)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	return principal, nil
}
