package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuthEvent is a security-relevant event stored in auth_audit.
type AuthEvent struct {
	UserID string
	Event  string
	IP     string
	UA     string
	Meta   map[string]any
	At     time.Time
}

// Well-known auth audit event names.
const (
	EventLogin          = "auth.login"
	EventLogout         = "auth.logout"
	EventSessionRestore = "auth.restore"
	EventAccessGranted  = "authz.grant"
	EventAccessRevoked  = "authz.revoke"
)

// AuditLogger appends auth events to the auth_audit table.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the event. UserID and Event are mandatory.
func (l *AuditLogger) Record(ctx context.Context, ev AuthEvent) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if ev.UserID == "" || ev.Event == "" {
		return errors.New("auth event requires user_id/event")
	}
	metaJSON, err := json.Marshal(ev.Meta)
	if err != nil {
		return err
	}
	var at any
	if !ev.At.IsZero() {
		at = ev.At
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO auth_audit (user_id, event, ip, ua, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`,
		ev.UserID, ev.Event, ev.IP, ev.UA, metaJSON, at)
	return err
}
