package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planora/planora/internal/shared"
)

// PrincipalStore is the user-record repository consulted during identity
// resolution and session issuance. Reads never mutate the store.
type PrincipalStore interface {
	GetPrincipalByID(ctx context.Context, id string) (*Principal, error)
	GetCredentialByEmail(ctx context.Context, email string) (*Credential, error)
}

// PGStore implements PrincipalStore over PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PostgreSQL-backed PrincipalStore.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// GetPrincipalByID fetches a single account by its opaque id.
func (s *PGStore) GetPrincipalByID(ctx context.Context, id string) (*Principal, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, display_name, email, username, global_role, is_admin
		   FROM users
		  WHERE id = $1 AND is_active`, id)

	var p Principal
	if err := row.Scan(&p.ID, &p.DisplayName, &p.Email, &p.Username, &p.GlobalRole, &p.IsAdmin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetCredentialByEmail fetches the login-time account view by email.
func (s *PGStore) GetCredentialByEmail(ctx context.Context, email string) (*Credential, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, display_name, email, username, global_role, is_admin, password_hash, is_active, created_at, updated_at
		   FROM users
		  WHERE email = $1`, email)

	var c Credential
	if err := row.Scan(&c.ID, &c.DisplayName, &c.Email, &c.Username, &c.GlobalRole, &c.IsAdmin,
		&c.PasswordHash, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

var _ PrincipalStore = (*PGStore)(nil)
