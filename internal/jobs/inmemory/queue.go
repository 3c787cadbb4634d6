package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/fingenius/internal/jobs"
	"github.com/dvloznov/fingenius/internal/logger"
	"github.com/google/uuid"
)

const (
	defaultMaxRetries = 3
	defaultBackoff    = time.Minute
)

// Queue is an in-memory implementation of job publisher and consumer backed
// by a buffered channel. It defaults to a single worker so report batches
// never overlap.
type Queue struct {
	jobChan   chan *jobs.GenerateReportsJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	store     jobs.JobStore
	closed    bool

	workers int
	backoff time.Duration
	now     func() time.Time
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

// WithBackoff sets the base retry delay; attempt n waits n*d.
func WithBackoff(d time.Duration) QueueOption {
	return func(q *Queue) { q.backoff = d }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) QueueOption {
	return func(q *Queue) { q.now = now }
}

// NewQueue creates a new in-memory job queue.
// bufferSize determines how many jobs can be queued before publishing blocks.
func NewQueue(bufferSize int, store jobs.JobStore, opts ...QueueOption) *Queue {
	q := &Queue{
		jobChan:   make(chan *jobs.GenerateReportsJob, bufferSize),
		closeChan: make(chan struct{}),
		store:     store,
		workers:   1,
		backoff:   defaultBackoff,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// PublishGenerateReports implements the Publisher interface.
func (q *Queue) PublishGenerateReports(ctx context.Context, job *jobs.GenerateReportsJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.TriggeredBy == "" {
		job.TriggeredBy = jobs.TriggerManual
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = q.now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = defaultMaxRetries
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}
	}

	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("queue is closed")
	}
}

// Start implements the Consumer interface.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("queue is closed")
	}
	q.mu.RUnlock()

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}

	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}

			q.processJob(ctx, job, handler)
		}
	}
}

// processJob executes a single job with retry logic.
func (q *Queue) processJob(ctx context.Context, job *jobs.GenerateReportsJob, handler jobs.JobHandler) {
	log := logger.FromContext(ctx)

	job.Status = jobs.JobStatusRunning
	startedAt := q.now()
	job.StartedAt = &startedAt
	q.save(ctx, job)

	err := q.invoke(ctx, job, handler)

	completedAt := q.now()
	job.CompletedAt = &completedAt

	if err != nil {
		job.Error = err.Error()

		if job.RetryCount < job.MaxRetries {
			job.RetryCount++
			job.Status = jobs.JobStatusRetrying
			q.save(ctx, job)

			backoff := time.Duration(job.RetryCount) * q.backoff
			log.Warn().
				Err(err).
				Str("job_id", job.JobID).
				Int("retry", job.RetryCount).
				Dur("backoff", backoff).
				Msg("Job failed, scheduling retry")

			// Retries run on a copy of the job.
			retry := *job
			retry.Status = jobs.JobStatusPending
			retry.StartedAt = nil
			retry.CompletedAt = nil
			time.AfterFunc(backoff, func() {
				if err := q.PublishGenerateReports(ctx, &retry); err != nil {
					log.Error().Err(err).Str("job_id", retry.JobID).Msg("Failed to re-enqueue job")
				}
			})
			return
		}

		job.Status = jobs.JobStatusFailed
		log.Error().Err(err).Str("job_id", job.JobID).Msg("Job failed, retries exhausted")
	} else {
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
	}

	q.save(ctx, job)
}

// invoke runs the handler, converting a panic into an error.
func (q *Queue) invoke(ctx context.Context, job *jobs.GenerateReportsJob, handler jobs.JobHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return handler(ctx, job)
}

func (q *Queue) save(ctx context.Context, job *jobs.GenerateReportsJob) {
	if q.store == nil {
		return
	}
	if err := q.store.SaveJob(ctx, job); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("job_id", job.JobID).Msg("Failed to save job state")
	}
}

// Stop implements the Consumer interface.
// It stops the queue and waits for all in-flight jobs to complete.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements the Publisher interface.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
