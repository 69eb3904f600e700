package cli

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/financehub/financehub/jobs"
)

type fakeEnqueuer struct{ tasks []*asynq.Task }

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "t1", Type: task.Type(), Queue: jobs.QueueDefault}, nil
}

func (f *fakeEnqueuer) types() []string {
	out := make([]string, 0, len(f.tasks))
	for _, task := range f.tasks {
		out = append(out, task.Type())
	}
	return out
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return f.info, f.err }

func (f fakeInspector) ListScheduledTasks(string, ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return []*asynq.TaskInfo{{ID: "s1", Type: jobs.TaskRatesRefresh}}, nil
}

func TestTriggerKnownJobs(t *testing.T) {
	enq := &fakeEnqueuer{}
	c := NewJobsCLIWith(jobs.NewClientWith(enq), fakeInspector{}, 72*time.Hour)

	msg, err := c.Trigger(context.Background(), jobs.TaskRatesRefresh, "")
	require.NoError(t, err)
	require.Equal(t, "enqueued rates:refresh as t1 on default", msg)

	_, err = c.Trigger(context.Background(), jobs.TaskIdempotencyCleanup, "")
	require.NoError(t, err)

	msg, err = c.Trigger(context.Background(), jobs.TaskClosureNotify, "c1")
	require.NoError(t, err)
	require.Equal(t, "queued closures:notify for closure c1", msg)
	require.Equal(t, []string{jobs.TaskRatesRefresh, jobs.TaskIdempotencyCleanup, jobs.TaskClosureNotify}, enq.types())

	_, err = c.Trigger(context.Background(), jobs.TaskClosureNotify, "")
	require.Error(t, err)
	_, err = c.Trigger(context.Background(), "mail:send", "")
	require.ErrorContains(t, err, "unsupported job")
	require.NoError(t, c.Close())
}

func TestInspectQueue(t *testing.T) {
	c := NewJobsCLIWith(nil, fakeInspector{info: &asynq.QueueInfo{Queue: jobs.QueueDefault, Pending: 2, Retry: 1}}, time.Hour)
	stats, err := c.InspectQueue(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, stats.Pending)
	require.Equal(t, 1, stats.Retry)

	empty := NewJobsCLIWith(nil, fakeInspector{err: asynq.ErrQueueNotFound}, time.Hour)
	stats, err = empty.InspectQueue(context.Background())
	require.NoError(t, err)
	require.Zero(t, stats.Pending)

	scheduled, err := c.ListScheduled(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, scheduled, 1)
}

func TestTriggerableIsSorted(t *testing.T) {
	require.Equal(t, []string{jobs.TaskClosureNotify, jobs.TaskIdempotencyCleanup, jobs.TaskRatesRefresh}, Triggerable())
}
