// Package cli holds the queue helpers behind the financehubctl jobs commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hibiken/asynq"

	"github.com/financehub/financehub/jobs"
)

// Dispatcher enqueues the known jobs. *jobs.Client satisfies it.
type Dispatcher interface {
	EnqueueRatesRefresh(ctx context.Context) (*asynq.TaskInfo, error)
	EnqueueIdempotencyCleanup(ctx context.Context, retention time.Duration) (*asynq.TaskInfo, error)
	EnqueueClosureNotify(ctx context.Context, closureID string) error
}

// Inspector reads queue state.
type Inspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
	ListScheduledTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
}

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	client    Dispatcher
	inspector Inspector
	retention time.Duration
	closers   []func() error
}

// NewJobsCLI initialises the helpers against a Redis instance.
func NewJobsCLI(opts asynq.RedisClientOpt, retention time.Duration) *JobsCLI {
	client := jobs.NewClient(opts)
	inspector := asynq.NewInspector(opts)
	return &JobsCLI{
		client:    client,
		inspector: inspector,
		retention: retention,
		closers:   []func() error{inspector.Close, client.Close},
	}
}

// NewJobsCLIWith builds the helpers over existing clients.
func NewJobsCLIWith(client Dispatcher, inspector Inspector, retention time.Duration) *JobsCLI {
	return &JobsCLI{client: client, inspector: inspector, retention: retention}
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Triggerable lists the job names accepted by Trigger.
func Triggerable() []string {
	names := []string{jobs.TaskRatesRefresh, jobs.TaskIdempotencyCleanup, jobs.TaskClosureNotify}
	sort.Strings(names)
	return names
}

// Trigger enqueues a supported job by name and describes what was queued. arg
// carries the closure id for notifications and is ignored otherwise.
func (c *JobsCLI) Trigger(ctx context.Context, name, arg string) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("jobs cli: client not configured")
	}
	var (
		info *asynq.TaskInfo
		err  error
	)
	switch name {
	case jobs.TaskRatesRefresh:
		info, err = c.client.EnqueueRatesRefresh(ctx)
	case jobs.TaskIdempotencyCleanup:
		info, err = c.client.EnqueueIdempotencyCleanup(ctx, c.retention)
	case jobs.TaskClosureNotify:
		if err := c.client.EnqueueClosureNotify(ctx, arg); err != nil {
			return "", err
		}
		return fmt.Sprintf("queued %s for closure %s", name, arg), nil
	default:
		return "", fmt.Errorf("jobs cli: unsupported job %s", name)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("enqueued %s as %s on %s", info.Type, info.ID, info.Queue), nil
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
	Archived  int
	Processed int
	Failed    int
}

// InspectQueue reports the metrics of the default queue. A queue that has never
// received a task reports zeros.
func (c *JobsCLI) InspectQueue(_ context.Context) (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if errors.Is(err, asynq.ErrQueueNotFound) {
		return stats, nil
	}
	if err != nil {
		return QueueStats{}, err
	}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
		stats.Archived = info.Archived
		stats.Processed = info.Processed
		stats.Failed = info.Failed
	}
	return stats, nil
}

// ListScheduled returns scheduled task infos of the default queue.
func (c *JobsCLI) ListScheduled(_ context.Context, size int) ([]*asynq.TaskInfo, error) {
	if c == nil || c.inspector == nil {
		return nil, errors.New("jobs cli: inspector not configured")
	}
	if size <= 0 {
		size = 10
	}
	return c.inspector.ListScheduledTasks(jobs.QueueDefault, asynq.PageSize(size), asynq.Page(1))
}
