package authz

import "time"

// ModulePermission is a global, user-scoped boolean grant for one named
// application module. Absence of a row means no access.
type ModulePermission struct {
	UserID    string
	Module    string
	HasAccess bool
	CreatedAt time.Time
}

// RoleSet is a true set of role names. A user may hold zero, one or many
// roles on a project simultaneously; granting a role never drops another.
type RoleSet map[string]struct{}

// NewRoleSet builds a set from role names, ignoring empties.
func NewRoleSet(names ...string) RoleSet {
	set := make(RoleSet, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s RoleSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the member names in unspecified order.
func (s RoleSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names
}

// ProjectRoleAssignment is the per-project set of roles held by one user.
// The set is never nil; an empty assignment is an empty set.
type ProjectRoleAssignment struct {
	ProjectID string
	UserID    string
	Roles     RoleSet
}
