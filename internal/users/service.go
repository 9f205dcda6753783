package users

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/planora/planora/internal/identity"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, u User, passwordHash string) (*User, error)
}

// Service handles user management business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser returns a single user.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser hashes the password and inserts the account. The id is a fresh
// uuid; email is normalised the same way the login path normalises it.
func (s *Service) CreateUser(ctx context.Context, u User, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u.ID = uuid.NewString()
	u.Email = identity.NormalizeIdentifier(u.Email)
	u.Username = strings.TrimSpace(u.Username)
	if u.GlobalRole == "" {
		u.GlobalRole = string(identity.RoleMember)
	}
	return s.repo.CreateUser(ctx, u, string(hash))
}
