package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/planora/planora/internal/identity"
)

type stubCatalog struct {
	modules map[string]map[string]struct{}
	err     error
	lookups int
}

func (s *stubCatalog) GetModuleAccess(ctx context.Context, userID string) (map[string]struct{}, error) {
	s.lookups++
	if s.err != nil {
		return nil, s.err
	}
	modules, ok := s.modules[userID]
	if !ok {
		return map[string]struct{}{}, nil
	}
	return modules, nil
}

type stubRoles struct {
	roles   map[string]RoleSet
	err     error
	lookups int
}

func (s *stubRoles) GetProjectRoles(ctx context.Context, projectID, userID string) (RoleSet, error) {
	s.lookups++
	if s.err != nil {
		return nil, s.err
	}
	roles, ok := s.roles[projectID+"/"+userID]
	if !ok {
		return RoleSet{}, nil
	}
	return roles, nil
}

const masterID = "root-admin"

func newTestEngine(catalog *stubCatalog, roles *stubRoles) *Engine {
	if catalog == nil {
		catalog = &stubCatalog{}
	}
	if roles == nil {
		roles = &stubRoles{}
	}
	return NewEngine(catalog, roles, masterID, nil, nil)
}

func member(id string) *identity.Principal {
	return &identity.Principal{ID: id, GlobalRole: identity.RoleMember}
}

func TestNilPrincipalDeniesEverything(t *testing.T) {
	engine := newTestEngine(nil, nil)
	ctx := context.Background()

	assert.False(t, engine.CanManageModules(nil))
	assert.False(t, engine.IsMasterAdmin(nil))
	assert.False(t, engine.HasModuleAccess(ctx, nil, "projects"))
	assert.False(t, engine.HasProjectRole(ctx, nil, "p1", "lead"))
	assert.False(t, engine.CanPerform(ctx, nil, Action{Name: "anything"}))
}

func TestModuleAccessDefaultDeny(t *testing.T) {
	engine := newTestEngine(&stubCatalog{}, nil)

	for _, module := range []string{"projects", "reports", "settings"} {
		assert.False(t, engine.HasModuleAccess(context.Background(), member("u1"), module),
			"user without permission rows must be denied module %q", module)
	}
}

func TestModuleAccessGranted(t *testing.T) {
	catalog := &stubCatalog{modules: map[string]map[string]struct{}{
		"u1": {"projects": {}},
	}}
	engine := newTestEngine(catalog, nil)

	assert.True(t, engine.HasModuleAccess(context.Background(), member("u1"), "projects"))
	assert.False(t, engine.HasModuleAccess(context.Background(), member("u1"), "reports"))
}

func TestStoreFailureCollapsesToDeny(t *testing.T) {
	engine := newTestEngine(
		&stubCatalog{err: errors.New("connection reset")},
		&stubRoles{err: errors.New("connection reset")},
	)
	ctx := context.Background()

	assert.False(t, engine.HasModuleAccess(ctx, member("u1"), "projects"))
	assert.False(t, engine.HasProjectRole(ctx, member("u1"), "p1", "lead"))
}

func TestCanManageModules(t *testing.T) {
	engine := newTestEngine(nil, nil)

	for role, want := range map[identity.GlobalRole]bool{
		identity.RoleMember:         false,
		identity.RoleProjectManager: true,
		identity.RoleCTO:            true,
		identity.RoleConsultant:     true,
		identity.RoleAdmin:          false,
		"unknown_role":              false,
	} {
		p := &identity.Principal{ID: "u1", GlobalRole: role}
		assert.Equal(t, want, engine.CanManageModules(p), "role %q", role)
	}

	flagged := &identity.Principal{ID: "u2", GlobalRole: identity.RoleMember, IsAdmin: true}
	assert.True(t, engine.CanManageModules(flagged), "admin flag grants management regardless of role")
}

func TestMasterAdminInvariant(t *testing.T) {
	engine := newTestEngine(nil, nil)

	master := &identity.Principal{ID: masterID, GlobalRole: identity.RoleAdmin, IsAdmin: true}
	otherAdmin := &identity.Principal{ID: "u9", GlobalRole: identity.RoleAdmin, IsAdmin: true}

	assert.True(t, engine.IsMasterAdmin(master))
	assert.False(t, engine.IsMasterAdmin(otherAdmin),
		"canManageModules being true must not imply master admin")
	assert.True(t, engine.CanManageModules(otherAdmin))

	unconfigured := NewEngine(&stubCatalog{}, &stubRoles{}, "", nil, nil)
	assert.False(t, unconfigured.IsMasterAdmin(master),
		"no principal is master admin when the id is unset")
}

func TestConsultantScenario(t *testing.T) {
	roles := &stubRoles{roles: map[string]RoleSet{
		"p1/u1": NewRoleSet("reviewer"),
	}}
	engine := newTestEngine(nil, roles)
	ctx := context.Background()

	consultant := &identity.Principal{ID: "u1", GlobalRole: identity.RoleConsultant}

	assert.True(t, engine.CanManageModules(consultant))
	assert.True(t, engine.HasProjectRole(ctx, consultant, "p1", "reviewer"))
	assert.False(t, engine.HasProjectRole(ctx, consultant, "p1", "approver"))
}

func TestMemberWithoutAssignmentsDeniedEverywhere(t *testing.T) {
	engine := newTestEngine(nil, nil)
	ctx := context.Background()

	p := member("u1")
	assert.False(t, engine.CanManageModules(p))
	assert.False(t, engine.HasProjectRole(ctx, p, "p1", "cto"))
}

func TestCanPerformAdminOnlyIsMasterOnly(t *testing.T) {
	engine := newTestEngine(nil, nil)
	ctx := context.Background()
	action := Action{Name: "project.delete", AdminOnly: true}

	master := &identity.Principal{ID: masterID}
	manager := &identity.Principal{ID: "u2", GlobalRole: identity.RoleProjectManager, IsAdmin: true}

	assert.True(t, engine.CanPerform(ctx, master, action))
	assert.False(t, engine.CanPerform(ctx, manager, action),
		"irreversible actions are unavailable even to privileged roles")
}

func TestCanPerformShortCircuitsBeforeProjectFetch(t *testing.T) {
	roles := &stubRoles{}
	engine := newTestEngine(nil, roles)
	action := Action{Name: "project.archive", ProjectID: "p1", Role: "lead"}

	manager := &identity.Principal{ID: "u2", GlobalRole: identity.RoleProjectManager}
	assert.True(t, engine.CanPerform(context.Background(), manager, action))
	assert.Zero(t, roles.lookups, "a global capability must not fetch per-project data")
}

func TestCanPerformFallsBackToProjectRole(t *testing.T) {
	roles := &stubRoles{roles: map[string]RoleSet{
		"p1/u1": NewRoleSet("lead", "reviewer"),
	}}
	engine := newTestEngine(nil, roles)
	ctx := context.Background()
	action := Action{Name: "project.archive", ProjectID: "p1", Role: "lead"}

	assert.True(t, engine.CanPerform(ctx, member("u1"), action))
	assert.False(t, engine.CanPerform(ctx, member("u3"), action))
}

func TestRoleSetSemantics(t *testing.T) {
	set := NewRoleSet("lead", "reviewer", "")

	assert.True(t, set.Has("lead"))
	assert.True(t, set.Has("reviewer"))
	assert.False(t, set.Has("approver"))
	assert.Len(t, set.Names(), 2)

	empty := NewRoleSet()
	assert.NotNil(t, empty)
	assert.False(t, empty.Has("lead"))
}
