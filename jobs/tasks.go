package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskClosureNotify emails the message of a new closure.
	TaskClosureNotify = "closures:notify"
	// TaskRatesRefresh pulls today's official rate from the remote source.
	TaskRatesRefresh = "rates:refresh"
	// TaskIdempotencyCleanup prunes old idempotency keys.
	TaskIdempotencyCleanup = "maintenance:idempotency_cleanup"
)

// ClosureNotifyPayload identifies the closure to announce.
type ClosureNotifyPayload struct {
	ClosureID string `json:"closure_id"`
}

// NewClosureNotifyTask constructs a closure notification task.
func NewClosureNotifyTask(closureID string) (*asynq.Task, error) {
	if closureID == "" {
		return nil, fmt.Errorf("closure notify: closure id required")
	}
	data, err := json.Marshal(ClosureNotifyPayload{ClosureID: closureID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskClosureNotify, data), nil
}

// NewRatesRefreshTask constructs a rate refresh task.
func NewRatesRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskRatesRefresh, nil)
}

// IdempotencyCleanupPayload carries the retention window.
type IdempotencyCleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewIdempotencyCleanupTask constructs a cleanup task keeping keys younger than retention.
func NewIdempotencyCleanupTask(retention time.Duration) (*asynq.Task, error) {
	hours := int(retention / time.Hour)
	if hours <= 0 {
		return nil, fmt.Errorf("idempotency cleanup: retention must be at least one hour")
	}
	data, err := json.Marshal(IdempotencyCleanupPayload{RetentionHours: hours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}
