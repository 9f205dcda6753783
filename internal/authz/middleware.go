package authz

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/planora/planora/internal/identity"
	"github.com/planora/planora/internal/platform/httpx"
	"github.com/planora/planora/internal/shared"
)

// Middleware wires authorization guards for HTTP handlers. Guards assume the
// identity middleware already ran; a missing principal is a hard 401.
type Middleware struct {
	Engine *Engine
	Logger *slog.Logger
}

// RequireAuthenticated rejects requests without a resolved principal.
func (m Middleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity.PrincipalFromContext(r.Context()) == nil {
			httpx.RespondError(w, shared.ErrNotAuthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireModule gates a subtree on an explicit module grant.
func (m Middleware) RequireModule(module string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := identity.PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.RespondError(w, shared.ErrNotAuthenticated)
				return
			}
			if !m.Engine.HasModuleAccess(r.Context(), principal, module) {
				m.deny(r, "module", module)
				httpx.RespondError(w, shared.ErrDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireManager gates a subtree on the global module-management capability.
func (m Middleware) RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := identity.PrincipalFromContext(r.Context())
		if principal == nil {
			httpx.RespondError(w, shared.ErrNotAuthenticated)
			return
		}
		if !m.Engine.CanManageModules(principal) {
			m.deny(r, "capability", "manage_modules")
			httpx.RespondError(w, shared.ErrDenied)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireMasterAdmin gates irreversible actions on the single super admin.
func (m Middleware) RequireMasterAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := identity.PrincipalFromContext(r.Context())
		if principal == nil {
			httpx.RespondError(w, shared.ErrNotAuthenticated)
			return
		}
		if !m.Engine.IsMasterAdmin(principal) {
			m.deny(r, "capability", "master_admin")
			httpx.RespondError(w, shared.ErrDenied)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireProjectRole gates a project-scoped route on the composite chain:
// master admin, then global capability, then the named project role. The
// project id is taken from the {projectID} URL parameter.
func (m Middleware) RequireProjectRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := identity.PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.RespondError(w, shared.ErrNotAuthenticated)
				return
			}
			action := Action{
				Name:      "project_role:" + role,
				ProjectID: chi.URLParam(r, "projectID"),
				Role:      role,
			}
			if !m.Engine.CanPerform(r.Context(), principal, action) {
				m.deny(r, "project_role", role)
				httpx.RespondError(w, shared.ErrDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) deny(r *http.Request, kind, value string) {
	if m.Logger != nil {
		m.Logger.Warn("authorization denied",
			slog.String("kind", kind),
			slog.String("value", value),
			slog.String("path", r.URL.Path))
	}
}
