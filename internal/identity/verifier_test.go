package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/planora/planora/internal/shared"
)

type stubStore struct {
	principals map[string]*Principal
	creds      map[string]*Credential
	err        error
	lookups    int
}

func (s *stubStore) GetPrincipalByID(ctx context.Context, id string) (*Principal, error) {
	s.lookups++
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.principals[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *stubStore) GetCredentialByEmail(ctx context.Context, email string) (*Credential, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.creds[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func TestVerifyEmptyTokenNotAuthenticated(t *testing.T) {
	verifier := NewVerifier(&stubStore{})

	_, err := verifier.Verify(context.Background(), "")
	if !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestVerifyUnknownTokenNotFound(t *testing.T) {
	verifier := NewVerifier(&stubStore{principals: map[string]*Principal{}})

	_, err := verifier.Verify(context.Background(), "ghost")
	if !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVerifyStoreFailureSurfacesAsUnavailable(t *testing.T) {
	verifier := NewVerifier(&stubStore{err: errors.New("connection refused")})

	_, err := verifier.Verify(context.Background(), "u1")
	if !errors.Is(err, shared.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestVerifyReturnsFreshPrincipal(t *testing.T) {
	store := &stubStore{principals: map[string]*Principal{
		"u1": {ID: "u1", DisplayName: "Uta", Email: "uta@planora.test", GlobalRole: RoleMember},
	}}
	verifier := NewVerifier(store)

	first, err := verifier.Verify(context.Background(), "u1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	second, err := verifier.Verify(context.Background(), "u1")
	if err != nil {
		t.Fatalf("verify again: %v", err)
	}
	if *first != *second {
		t.Fatalf("idempotence violated: %+v vs %+v", first, second)
	}
	if store.lookups != 2 {
		t.Fatalf("expected a fresh store lookup per call, got %d", store.lookups)
	}

	// Underlying data changes must be visible on the next call.
	store.principals["u1"].DisplayName = "Renamed"
	third, err := verifier.Verify(context.Background(), "u1")
	if err != nil {
		t.Fatalf("verify after rename: %v", err)
	}
	if third.DisplayName != "Renamed" {
		t.Fatalf("expected fresh principal, got %+v", third)
	}
}
