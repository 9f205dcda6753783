package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/planora/planora/internal/authz"
	"github.com/planora/planora/internal/identity"
	"github.com/planora/planora/internal/platform/httpx"
	"github.com/planora/planora/internal/shared"
)

// Handler manages user administration endpoints. Everything here sits
// behind the module-management capability.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	grants    *authz.Repository
	audit     *shared.AuditLogger
	guard     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, grants *authz.Repository, audit *shared.AuditLogger, guard authz.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		grants:    grants,
		audit:     audit,
		guard:     guard,
		validator: validator.New(),
	}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireManager)
		r.Get("/", h.listUsers)
		r.Post("/", h.createUser)
		r.Put("/{userID}/modules/{module}", h.setModuleAccess)
	})
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	GlobalRole  string `json:"global_role"`
	IsAdmin     bool   `json:"is_admin"`
	IsActive    bool   `json:"is_active"`
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		GlobalRole:  u.GlobalRole,
		IsAdmin:     u.IsAdmin,
		IsActive:    u.IsActive,
	}
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]userResponse, 0, len(list))
	for _, u := range list {
		out = append(out, toUserResponse(u))
	}
	httpx.JSON(w, http.StatusOK, out)
}

type createUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Username    string `json:"username" validate:"required,min=3"`
	DisplayName string `json:"display_name" validate:"required"`
	GlobalRole  string `json:"global_role"`
	Password    string `json:"password" validate:"required,min=8"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	created, err := h.service.CreateUser(r.Context(), User{
		Email:       req.Email,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		GlobalRole:  req.GlobalRole,
	}, req.Password)
	if err != nil {
		h.logger.Error("create user", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toUserResponse(*created))
}

type moduleAccessRequest struct {
	HasAccess bool `json:"has_access"`
}

func (h *Handler) setModuleAccess(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	module := chi.URLParam(r, "module")

	var req moduleAccessRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}

	if _, err := h.service.GetUser(r.Context(), userID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.grants.SetModuleAccess(r.Context(), userID, module, req.HasAccess); err != nil {
		h.logger.Error("set module access", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordGrantAudit(r, userID, module, req.HasAccess)

	httpx.JSON(w, http.StatusOK, map[string]any{
		"user_id":    userID,
		"module":     module,
		"has_access": req.HasAccess,
	})
}

func (h *Handler) recordGrantAudit(r *http.Request, userID, module string, hasAccess bool) {
	if h.audit == nil {
		return
	}
	event := shared.EventAccessGranted
	if !hasAccess {
		event = shared.EventAccessRevoked
	}
	actor := ""
	if p := identity.PrincipalFromContext(r.Context()); p != nil {
		actor = p.ID
	}
	err := h.audit.Record(r.Context(), shared.AuthEvent{
		UserID: userID,
		Event:  event,
		IP:     r.RemoteAddr,
		UA:     r.UserAgent(),
		Meta:   map[string]any{"module": module, "actor": actor},
	})
	if err != nil {
		h.logger.Warn("audit module grant", slog.Any("error", err))
	}
}
