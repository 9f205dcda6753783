package authz

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Catalog answers module-access lookups. Implementations must not cache
// across requests.
type Catalog interface {
	GetModuleAccess(ctx context.Context, userID string) (map[string]struct{}, error)
}

// RoleStore answers project-role lookups.
type RoleStore interface {
	GetProjectRoles(ctx context.Context, projectID, userID string) (RoleSet, error)
}

// Repository provides PostgreSQL backed persistence for both the module
// permission catalog and the project role store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetModuleAccess returns the set of modules the user may access. Only rows
// with has_access are returned; everything else is implicit deny.
func (r *Repository) GetModuleAccess(ctx context.Context, userID string) (map[string]struct{}, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT module FROM module_permissions WHERE user_id = $1 AND has_access`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	modules := make(map[string]struct{})
	for rows.Next() {
		var module string
		if err := rows.Scan(&module); err != nil {
			return nil, err
		}
		modules[module] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return modules, nil
}

// GetProjectRoles returns the role set for (projectID, userID). The result
// is never nil: a user with no assignment holds the empty set.
func (r *Repository) GetProjectRoles(ctx context.Context, projectID, userID string) (RoleSet, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role FROM project_roles WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make(RoleSet)
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles[role] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// SetModuleAccess upserts one (user, module) grant.
func (r *Repository) SetModuleAccess(ctx context.Context, userID, module string, hasAccess bool) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO module_permissions (user_id, module, has_access)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, module) DO UPDATE SET has_access = EXCLUDED.has_access`,
		userID, module, hasAccess)
	return err
}

// GrantProjectRoles adds roles to the user's set on the project. Union
// semantics: roles already held are kept, never overwritten.
func (r *Repository) GrantProjectRoles(ctx context.Context, projectID, userID string, roles ...string) error {
	for _, role := range roles {
		if role == "" {
			continue
		}
		if _, err := r.pool.Exec(ctx,
			`INSERT INTO project_roles (project_id, user_id, role)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (project_id, user_id, role) DO NOTHING`,
			projectID, userID, role); err != nil {
			return err
		}
	}
	return nil
}

// RevokeProjectRoles removes roles from the user's set on the project.
// Difference semantics: roles not listed stay untouched.
func (r *Repository) RevokeProjectRoles(ctx context.Context, projectID, userID string, roles ...string) error {
	for _, role := range roles {
		if role == "" {
			continue
		}
		if _, err := r.pool.Exec(ctx,
			`DELETE FROM project_roles WHERE project_id = $1 AND user_id = $2 AND role = $3`,
			projectID, userID, role); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ Catalog   = (*Repository)(nil)
	_ RoleStore = (*Repository)(nil)
)
