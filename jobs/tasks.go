package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuditPrune is the task type pruning aged auth audit rows.
	TaskAuditPrune = "audit:prune"
)

// AuditPrunePayload bounds how far back audit rows are kept.
type AuditPrunePayload struct {
	Retention time.Duration `json:"retention"`
}

// DefaultAuditRetention keeps ninety days of auth events.
const DefaultAuditRetention = 90 * 24 * time.Hour

// NewAuditPruneTask constructs an Asynq task.
func NewAuditPruneTask(payload AuditPrunePayload) (*asynq.Task, error) {
	if payload.Retention <= 0 {
		payload.Retention = DefaultAuditRetention
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPrune, data), nil
}
