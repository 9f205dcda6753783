package identity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionRecord describes one issued session for observability. The resolve
// path never reads these records; the cookie alone identifies the principal.
type SessionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	IP        string    `json:"ip,omitempty"`
	UA        string    `json:"ua,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionRegistry keeps issued-session metadata in Redis, bounded by the
// session TTL. Logout deletes the caller's records.
type SessionRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRegistry constructs a SessionRegistry.
func NewSessionRegistry(client *redis.Client, ttl time.Duration) *SessionRegistry {
	if ttl <= 0 || ttl > MaxSessionLifetime {
		ttl = MaxSessionLifetime
	}
	return &SessionRegistry{client: client, ttl: ttl}
}

// Record stores a new issuance record and indexes it under the user.
func (r *SessionRegistry) Record(ctx context.Context, userID, ip, ua string) (SessionRecord, error) {
	now := time.Now().UTC()
	rec := SessionRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		IP:        ip,
		UA:        ua,
		IssuedAt:  now,
		ExpiresAt: now.Add(r.ttl),
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return SessionRecord{}, err
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.recordKey(rec.ID), payload, r.ttl)
	pipe.SAdd(ctx, r.userKey(userID), rec.ID)
	pipe.Expire(ctx, r.userKey(userID), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return SessionRecord{}, err
	}
	return rec, nil
}

// List returns the live records for a user, skipping expired entries.
func (r *SessionRegistry) List(ctx context.Context, userID string) ([]SessionRecord, error) {
	ids, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	records := make([]SessionRecord, 0, len(ids))
	for _, id := range ids {
		payload, err := r.client.Get(ctx, r.recordKey(id)).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		var rec SessionRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Revoke deletes every record for the user.
func (r *SessionRegistry) Revoke(ctx context.Context, userID string) error {
	ids, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, r.recordKey(id))
	}
	keys = append(keys, r.userKey(userID))
	return r.client.Del(ctx, keys...).Err()
}

func (r *SessionRegistry) recordKey(id string) string {
	return "session:" + id
}

func (r *SessionRegistry) userKey(userID string) string {
	return "user_sessions:" + userID
}
