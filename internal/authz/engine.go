package authz

import (
	"context"
	"log/slog"

	"github.com/planora/planora/internal/identity"
	"github.com/planora/planora/internal/observability"
)

// Action describes one protected operation for composite authorization.
type Action struct {
	Name string
	// AdminOnly marks irreversible actions gated on the master admin alone.
	AdminOnly bool
	// ProjectID and Role describe the project-scoped fallback grant.
	ProjectID string
	Role      string
}

// Engine answers capability queries for a resolved principal.
//
// Every query denies on a nil principal: authorization is never attempted on
// an unauthenticated request. Store failures during a lookup collapse to
// deny, never to allow.
type Engine struct {
	catalog       Catalog
	roles         RoleStore
	masterAdminID string
	logger        *slog.Logger
	metrics       *observability.AuthMetrics
}

// NewEngine constructs an Engine. The master-admin id is injected
// configuration identifying the single principal permitted to perform
// irreversible actions.
func NewEngine(catalog Catalog, roles RoleStore, masterAdminID string, logger *slog.Logger, metrics *observability.AuthMetrics) *Engine {
	return &Engine{
		catalog:       catalog,
		roles:         roles,
		masterAdminID: masterAdminID,
		logger:        logger,
		metrics:       metrics,
	}
}

// CanManageModules reports whether the principal holds the static
// module-management capability, independent of any project.
func (e *Engine) CanManageModules(p *identity.Principal) bool {
	if p == nil {
		return false
	}
	if p.IsAdmin {
		return true
	}
	switch p.GlobalRole {
	case identity.RoleProjectManager, identity.RoleCTO, identity.RoleConsultant:
		return true
	}
	return false
}

// IsMasterAdmin reports whether the principal is the single distinguished
// super admin. Exactly one id ever satisfies this check.
func (e *Engine) IsMasterAdmin(p *identity.Principal) bool {
	if p == nil || e.masterAdminID == "" {
		return false
	}
	return p.ID == e.masterAdminID
}

// HasModuleAccess reports whether the user holds an explicit grant for the
// named module. Default-deny: no row, empty result or store failure all mean
// no access.
func (e *Engine) HasModuleAccess(ctx context.Context, p *identity.Principal, module string) bool {
	if p == nil || module == "" {
		return false
	}
	modules, err := e.catalog.GetModuleAccess(ctx, p.ID)
	if err != nil {
		e.storeFailure("module access lookup", err)
		return false
	}
	_, ok := modules[module]
	e.decision("module:"+module, ok)
	return ok
}

// HasProjectRole reports whether the user holds roleName on the project.
// The stored assignment is a true set; lookups never mutate it.
func (e *Engine) HasProjectRole(ctx context.Context, p *identity.Principal, projectID, roleName string) bool {
	if p == nil || projectID == "" || roleName == "" {
		return false
	}
	roles, err := e.roles.GetProjectRoles(ctx, projectID, p.ID)
	if err != nil {
		e.storeFailure("project role lookup", err)
		return false
	}
	ok := roles.Has(roleName)
	e.decision("project_role:"+roleName, ok)
	return ok
}

// CanPerform evaluates composite authorization for the action as a
// short-circuiting OR: master-admin override, then the global capability,
// then the project-role grant. Admin-only actions pass for the master admin
// alone, regardless of other grants.
func (e *Engine) CanPerform(ctx context.Context, p *identity.Principal, action Action) bool {
	if p == nil {
		return false
	}
	if action.AdminOnly {
		ok := e.IsMasterAdmin(p)
		e.decision(action.Name, ok)
		return ok
	}
	if e.IsMasterAdmin(p) || e.CanManageModules(p) {
		e.decision(action.Name, true)
		return true
	}
	if action.ProjectID != "" && action.Role != "" {
		return e.HasProjectRole(ctx, p, action.ProjectID, action.Role)
	}
	e.decision(action.Name, false)
	return false
}

func (e *Engine) decision(name string, allowed bool) {
	if e.metrics != nil {
		e.metrics.Decision(name, allowed)
	}
}

func (e *Engine) storeFailure(msg string, err error) {
	if e.logger != nil {
		e.logger.Warn(msg+" failed, denying", slog.Any("error", err))
	}
	if e.metrics != nil {
		e.metrics.StoreFailure()
	}
}
