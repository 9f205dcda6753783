package projects

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/planora/planora/internal/authz"
	"github.com/planora/planora/internal/platform/httpx"
)

// ModuleName is the module grant gating the project pages.
const ModuleName = "projects"

// RoleLead is the project role allowed to administer memberships.
const RoleLead = "lead"

// Handler serves the project management surface. Routes demonstrate the
// full authorization chain: module grant for reads, manager capability or
// project lead role for membership changes, master admin for hard delete.
type Handler struct {
	logger    *slog.Logger
	repo      *Repository
	grants    *authz.Repository
	guard     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, repo *Repository, grants *authz.Repository, guard authz.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		repo:      repo,
		grants:    grants,
		guard:     guard,
		validator: validator.New(),
	}
}

// MountRoutes registers project routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireModule(ModuleName))
		r.Get("/", h.listProjects)
		r.Get("/{projectID}", h.getProject)
		r.Get("/{projectID}/members/{userID}/roles", h.listMemberRoles)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireProjectRole(RoleLead))
		r.Post("/{projectID}/archive", h.archiveProject)
		r.Post("/{projectID}/members/{userID}/roles", h.grantMemberRoles)
		r.Delete("/{projectID}/members/{userID}/roles", h.revokeMemberRoles)
	})
	r.Group(func(r chi.Router) {
		// Hard delete is irreversible and reserved for the master admin.
		r.Use(h.guard.RequireMasterAdmin)
		r.Delete("/{projectID}", h.deleteProject)
	})
}

type projectResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Archived bool   `json:"archived"`
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListProjects(r.Context())
	if err != nil {
		h.logger.Error("list projects", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]projectResponse, 0, len(list))
	for _, p := range list {
		out = append(out, projectResponse{ID: p.ID, Name: p.Name, Archived: p.Archived})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.repo.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, projectResponse{ID: project.ID, Name: project.Name, Archived: project.Archived})
}

func (h *Handler) archiveProject(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.ArchiveProject(r.Context(), chi.URLParam(r, "projectID")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteProject(r.Context(), chi.URLParam(r, "projectID")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listMemberRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.grants.GetProjectRoles(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "userID"))
	if err != nil {
		h.logger.Error("list member roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": roles.Names()})
}

type memberRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,required"`
}

func (h *Handler) grantMemberRoles(w http.ResponseWriter, r *http.Request) {
	h.changeMemberRoles(w, r, h.grants.GrantProjectRoles)
}

func (h *Handler) revokeMemberRoles(w http.ResponseWriter, r *http.Request) {
	h.changeMemberRoles(w, r, h.grants.RevokeProjectRoles)
}

func (h *Handler) changeMemberRoles(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, projectID, userID string, roles ...string) error) {
	projectID := chi.URLParam(r, "projectID")
	userID := chi.URLParam(r, "userID")

	var req memberRolesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if err := apply(r.Context(), projectID, userID, req.Roles...); err != nil {
		h.logger.Error("change member roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	roles, err := h.grants.GetProjectRoles(r.Context(), projectID, userID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": roles.Names()})
}
