package inmemory_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dvloznov/fingenius/internal/jobs"
	"github.com/dvloznov/fingenius/internal/jobs/inmemory"
	"github.com/dvloznov/fingenius/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForStatus(t *testing.T, store *inmemory.Store, id string, status jobs.JobStatus) *jobs.GenerateReportsJob {
	t.Helper()
	var got *jobs.GenerateReportsJob
	require.Eventually(t, func() bool {
		job, err := store.GetJob(context.Background(), id)
		if err != nil {
			return false
		}
		got = job
		return job.Status == status
	}, 2*time.Second, 5*time.Millisecond)
	return got
}

func TestQueue_CompletesJob(t *testing.T) {
	store := inmemory.NewStore()
	q := inmemory.NewQueue(4, store)
	ctx := context.Background()

	handler := jobs.NewGenerateReportsHandler(runnerStub(func() report.Result {
		return report.Result{Success: true, ProcessedCount: 3}
	}))
	require.NoError(t, q.Start(ctx, handler))
	defer q.Close()

	job := &jobs.GenerateReportsJob{TriggeredBy: jobs.TriggerSchedule}
	require.NoError(t, q.PublishGenerateReports(ctx, job))
	require.NotEmpty(t, job.JobID)

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	assert.Equal(t, jobs.TriggerSchedule, done.TriggeredBy)
	assert.Equal(t, 0, done.RetryCount)
	assert.NotNil(t, done.StartedAt)
	assert.NotNil(t, done.CompletedAt)
	require.NotNil(t, done.Result)
	assert.Equal(t, 3, done.Result.ProcessedCount)

	last, ok := store.LastResult(ctx)
	require.True(t, ok)
	assert.Equal(t, 3, last.ProcessedCount)
}

func TestQueue_RetriesUntilSuccess(t *testing.T) {
	store := inmemory.NewStore()
	q := inmemory.NewQueue(4, store, inmemory.WithBackoff(time.Millisecond))
	ctx := context.Background()

	var attempts atomic.Int32
	handler := func(ctx context.Context, job jobs.Job) error {
		if attempts.Add(1) < 3 {
			return errors.New("settings unavailable")
		}
		return nil
	}
	require.NoError(t, q.Start(ctx, handler))
	defer q.Close()

	job := &jobs.GenerateReportsJob{JobID: "j1"}
	require.NoError(t, q.PublishGenerateReports(ctx, job))

	done := waitForStatus(t, store, "j1", jobs.JobStatusCompleted)
	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, 2, done.RetryCount)
	assert.Empty(t, done.Error)
}

func TestQueue_RetryRunsOnCopy(t *testing.T) {
	store := inmemory.NewStore()
	q := inmemory.NewQueue(4, store, inmemory.WithBackoff(time.Millisecond))
	ctx := context.Background()

	var attempts atomic.Int32
	handler := func(ctx context.Context, job jobs.Job) error {
		j := job.(*jobs.GenerateReportsJob)
		if j.Status != jobs.JobStatusRunning || j.StartedAt == nil || j.CompletedAt != nil {
			return errors.New("attempt started with stale state")
		}
		if attempts.Add(1) == 1 {
			return errors.New("settings unavailable")
		}
		return nil
	}
	require.NoError(t, q.Start(ctx, handler))
	defer q.Close()

	job := &jobs.GenerateReportsJob{JobID: "j1"}
	require.NoError(t, q.PublishGenerateReports(ctx, job))

	done := waitForStatus(t, store, "j1", jobs.JobStatusCompleted)
	assert.Equal(t, int32(2), attempts.Load())
	assert.Equal(t, 1, done.RetryCount)

	// The published job keeps the state of the failed attempt.
	assert.Equal(t, jobs.JobStatusRetrying, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	assert.NotNil(t, job.CompletedAt)
	assert.Equal(t, "settings unavailable", job.Error)
}

func TestQueue_RetriesExhausted(t *testing.T) {
	store := inmemory.NewStore()
	q := inmemory.NewQueue(4, store, inmemory.WithBackoff(time.Millisecond))
	ctx := context.Background()

	var attempts atomic.Int32
	handler := func(ctx context.Context, job jobs.Job) error {
		attempts.Add(1)
		panic("boom")
	}
	require.NoError(t, q.Start(ctx, handler))
	defer q.Close()

	require.NoError(t, q.PublishGenerateReports(ctx, &jobs.GenerateReportsJob{JobID: "j1", MaxRetries: 1}))

	failed := waitForStatus(t, store, "j1", jobs.JobStatusFailed)
	assert.Equal(t, int32(2), attempts.Load())
	assert.Contains(t, failed.Error, "boom")
}

func TestQueue_PublishAfterClose(t *testing.T) {
	q := inmemory.NewQueue(1, nil)
	require.NoError(t, q.Close())

	assert.Error(t, q.PublishGenerateReports(context.Background(), &jobs.GenerateReportsJob{}))
	assert.Error(t, q.Start(context.Background(), func(context.Context, jobs.Job) error { return nil }))
	assert.NoError(t, q.Close(), "second close is a no-op")
}

func TestQueue_DefaultsOnPublish(t *testing.T) {
	fixed := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	store := inmemory.NewStore()
	q := inmemory.NewQueue(1, store, inmemory.WithClock(func() time.Time { return fixed }))
	defer q.Close()

	job := &jobs.GenerateReportsJob{}
	require.NoError(t, q.PublishGenerateReports(context.Background(), job))

	saved, err := store.GetJob(context.Background(), job.JobID)
	require.NoError(t, err)
	assert.Equal(t, jobs.JobStatusPending, saved.Status)
	assert.Equal(t, jobs.TriggerManual, saved.TriggeredBy)
	assert.Equal(t, fixed, saved.CreatedAt)
	assert.Equal(t, 3, saved.MaxRetries)
}

func TestQueue_SaveFailureDoesNotStopJob(t *testing.T) {
	store := &flakyStore{Store: inmemory.NewStore()}
	q := inmemory.NewQueue(1, store)
	ctx := context.Background()

	ran := make(chan struct{})
	require.NoError(t, q.Start(ctx, func(context.Context, jobs.Job) error {
		close(ran)
		return nil
	}))
	defer q.Close()

	require.NoError(t, q.PublishGenerateReports(ctx, &jobs.GenerateReportsJob{JobID: "j1"}))

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not run")
	}
	require.Eventually(t, func() bool { return store.failures.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
}

// flakyStore accepts the first save and rejects the rest.
type flakyStore struct {
	*inmemory.Store
	saves    atomic.Int32
	failures atomic.Int32
}

func (s *flakyStore) SaveJob(ctx context.Context, job *jobs.GenerateReportsJob) error {
	if s.saves.Add(1) == 1 {
		return s.Store.SaveJob(ctx, job)
	}
	s.failures.Add(1)
	return errors.New("store unavailable")
}

type runnerStub func() report.Result

func (f runnerStub) Run(context.Context) report.Result { return f() }
