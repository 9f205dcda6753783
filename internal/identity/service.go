package identity

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"

	"github.com/planora/planora/internal/shared"
)

// Service wraps login and session bookkeeping around the stores.
type Service struct {
	store    PrincipalStore
	registry *SessionRegistry
	audit    *shared.AuditLogger
	logger   *slog.Logger
}

// NewService constructs a Service. registry and audit may be nil in tests.
func NewService(store PrincipalStore, registry *SessionRegistry, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{store: store, registry: registry, audit: audit, logger: logger}
}

// Authenticate validates email/password credentials. Every failure mode
// collapses to ErrInvalidCredentials so callers cannot distinguish an
// unknown account from a wrong password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Principal, error) {
	cred, err := s.store.GetCredentialByEmail(ctx, NormalizeIdentifier(email))
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !cred.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	principal := cred.Principal
	return &principal, nil
}

// RecordIssuance registers the session in the registry and audit trail.
// Bookkeeping failures are logged and never block issuance.
func (s *Service) RecordIssuance(ctx context.Context, userID, ip, ua, event string) {
	if s.registry != nil {
		if _, err := s.registry.Record(ctx, userID, ip, ua); err != nil {
			s.warn("record session", err)
		}
	}
	if s.audit != nil {
		if err := s.audit.Record(ctx, shared.AuthEvent{UserID: userID, Event: event, IP: ip, UA: ua}); err != nil {
			s.warn("audit issuance", err)
		}
	}
}

// RevokeSessions drops the user's registry records on logout.
func (s *Service) RevokeSessions(ctx context.Context, userID, ip, ua string) {
	if s.registry != nil {
		if err := s.registry.Revoke(ctx, userID); err != nil {
			s.warn("revoke sessions", err)
		}
	}
	if s.audit != nil {
		if err := s.audit.Record(ctx, shared.AuthEvent{UserID: userID, Event: shared.EventLogout, IP: ip, UA: ua}); err != nil {
			s.warn("audit logout", err)
		}
	}
}

func (s *Service) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, slog.Any("error", err))
	}
}

// NormalizeIdentifier canonicalises a login identifier: trimmed, lowered,
// NFC-normalised. Stored emails are normalised the same way on write.
func NormalizeIdentifier(raw string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(raw)))
}
