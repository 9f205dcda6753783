package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditPruneJob deletes auth audit rows older than the retention window.
type AuditPruneJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewAuditPruneJob constructs the job.
func NewAuditPruneJob(pool *pgxpool.Pool, logger *slog.Logger) *AuditPruneJob {
	return &AuditPruneJob{pool: pool, logger: logger}
}

// Handle processes TaskAuditPrune tasks.
func (j *AuditPruneJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload AuditPrunePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Retention <= 0 {
		payload.Retention = DefaultAuditRetention
	}

	tag, err := j.pool.Exec(ctx,
		`DELETE FROM auth_audit WHERE occurred_at < NOW() - make_interval(secs => $1)`,
		payload.Retention.Seconds())
	if err != nil {
		return err
	}
	if j.logger != nil {
		j.logger.Info("pruned auth audit",
			slog.Int64("rows", tag.RowsAffected()),
			slog.Duration("retention", payload.Retention))
	}
	return nil
}
