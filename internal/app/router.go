package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/planora/planora/internal/authz"
	"github.com/planora/planora/internal/identity"
	"github.com/planora/planora/internal/observability"
	"github.com/planora/planora/internal/platform/httpx"
	"github.com/planora/planora/internal/projects"
	"github.com/planora/planora/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Resolver        *identity.Resolver
	Verifier        *identity.Verifier
	AuthHandler     *identity.Handler
	UsersHandler    *users.Handler
	ProjectsHandler *projects.Handler
	Guard           authz.Middleware
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with Planora defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:   params.Logger,
		Config:   params.Config,
		Resolver: params.Resolver,
		Verifier: params.Verifier,
		Metrics:  params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", func(auth chi.Router) {
		auth.Use(LoginRateLimiter())
		params.AuthHandler.MountRoutes(auth)
	})

	r.Route("/me", func(me chi.Router) {
		me.Use(params.Guard.RequireAuthenticated)
		me.Get("/", func(w http.ResponseWriter, r *http.Request) {
			principal := identity.PrincipalFromContext(r.Context())
			httpx.JSON(w, http.StatusOK, map[string]any{
				"id":           principal.ID,
				"display_name": principal.DisplayName,
				"email":        principal.Email,
				"username":     principal.Username,
				"global_role":  string(principal.GlobalRole),
				"is_admin":     principal.IsAdmin,
			})
		})
	})

	r.Route("/users", func(u chi.Router) {
		u.Use(params.Guard.RequireAuthenticated)
		params.UsersHandler.MountRoutes(u)
	})

	r.Route("/projects", func(p chi.Router) {
		p.Use(params.Guard.RequireAuthenticated)
		params.ProjectsHandler.MountRoutes(p)
	})

	return r
}
