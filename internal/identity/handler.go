package identity

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/planora/planora/internal/platform/httpx"
	"github.com/planora/planora/internal/shared"
)

// Handler wires HTTP endpoints for login, session restore and logout.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	issuer    *Issuer
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, issuer *Issuer) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		issuer:    issuer,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/restore", h.handleRestore)
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type restoreRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type principalResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	GlobalRole  string `json:"global_role"`
	IsAdmin     bool   `json:"is_admin"`
}

func toPrincipalResponse(p *Principal) principalResponse {
	return principalResponse{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Username:    p.Username,
		GlobalRole:  string(p.GlobalRole),
		IsAdmin:     p.IsAdmin,
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	principal, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}

	cookie, err := h.issuer.Issue(r.Context(), principal.ID)
	if err != nil {
		h.logger.Error("issue session after login", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	http.SetCookie(w, cookie)
	h.service.RecordIssuance(r.Context(), principal.ID, r.RemoteAddr, r.UserAgent(), shared.EventLogin)

	httpx.JSON(w, http.StatusOK, toPrincipalResponse(principal))
}

// handleRestore re-establishes a session for the embedded mobile client
// across app restarts. It performs the same existence check as fresh login,
// so a stale or forged user id cannot mint a valid session.
func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	cookie, err := h.issuer.Issue(r.Context(), req.UserID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("restore session", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	http.SetCookie(w, cookie)
	h.service.RecordIssuance(r.Context(), req.UserID, r.RemoteAddr, r.UserAgent(), shared.EventSessionRestore)

	httpx.JSON(w, http.StatusOK, map[string]string{"user_id": req.UserID})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if principal := PrincipalFromContext(r.Context()); principal != nil {
		h.service.RevokeSessions(r.Context(), principal.ID, r.RemoteAddr, r.UserAgent())
	}
	http.SetCookie(w, h.issuer.Clear())
	w.WriteHeader(http.StatusNoContent)
}
