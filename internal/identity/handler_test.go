package identity_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/planora/planora/internal/identity"
	"github.com/planora/planora/internal/shared"
	_ "github.com/planora/planora/testing"
)

type stubStore struct {
	principals map[string]*identity.Principal
	creds      map[string]*identity.Credential
}

func (s *stubStore) GetPrincipalByID(ctx context.Context, id string) (*identity.Principal, error) {
	p, ok := s.principals[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *stubStore) GetCredentialByEmail(ctx context.Context, email string) (*identity.Credential, error) {
	c, ok := s.creds[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func newTestHandler(t *testing.T) (*chi.Mux, *stubStore) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	store := &stubStore{
		principals: map[string]*identity.Principal{
			"u1": {ID: "u1", DisplayName: "Uta", Email: "uta@planora.test", GlobalRole: identity.RoleMember},
		},
		creds: map[string]*identity.Credential{
			"uta@planora.test": {
				Principal:    identity.Principal{ID: "u1", DisplayName: "Uta", Email: "uta@planora.test", GlobalRole: identity.RoleMember},
				PasswordHash: string(hash),
				IsActive:     true,
			},
		},
	}

	mr := miniredis.RunT(t)
	registry := identity.NewSessionRegistry(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := identity.NewService(store, registry, nil, logger)
	issuer := identity.NewIssuer(store, "planora_uid", 720*time.Hour, false)
	handler := identity.NewHandler(logger, service, issuer)

	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)
	return router, store
}

func sessionCookie(res *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range res.Result().Cookies() {
		if cookie.Name == "planora_uid" {
			return cookie
		}
	}
	return nil
}

func TestLoginIssuesSessionCookie(t *testing.T) {
	router, _ := newTestHandler(t)

	body := `{"email":"uta@planora.test","password":"correct horse"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	cookie := sessionCookie(res)
	if cookie == nil {
		t.Fatal("expected session cookie")
	}
	if cookie.Value != "u1" || !cookie.HttpOnly {
		t.Fatalf("unexpected cookie: %+v", cookie)
	}
	if !strings.Contains(res.Body.String(), `"id":"u1"`) {
		t.Fatalf("expected principal in body, got %s", res.Body.String())
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	router, _ := newTestHandler(t)

	body := `{"email":"uta@planora.test","password":"wrong password"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if sessionCookie(res) != nil {
		t.Fatal("no cookie may be set on failed login")
	}
}

func TestRestoreReissuesSession(t *testing.T) {
	router, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/restore", strings.NewReader(`{"user_id":"u1"}`))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	cookie := sessionCookie(res)
	if cookie == nil || cookie.Value != "u1" {
		t.Fatalf("expected reissued cookie for u1, got %+v", cookie)
	}
}

func TestRestoreUnknownUserSetsNoCookie(t *testing.T) {
	router, store := newTestHandler(t)
	delete(store.principals, "u1")

	req := httptest.NewRequest(http.MethodPost, "/auth/restore", strings.NewReader(`{"user_id":"u1"}`))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
	if sessionCookie(res) != nil {
		t.Fatal("a stale user id must not mint a session")
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	router, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	cookie := sessionCookie(res)
	if cookie == nil || cookie.MaxAge != -1 {
		t.Fatalf("expected expired cookie, got %+v", cookie)
	}
}
