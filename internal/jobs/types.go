// Package jobs defines background job types and the queue contracts used by
// the worker to run report batches.
package jobs

import (
	"context"
	"time"

	"github.com/dvloznov/fingenius/internal/report"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeGenerateReports runs the monthly report batch for all enabled settings.
	JobTypeGenerateReports JobType = "generate_reports"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// Trigger sources recorded on a job.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// GenerateReportsJob is one run of the report batch.
type GenerateReportsJob struct {
	JobID string `json:"job_id"`

	// TriggeredBy is TriggerSchedule or TriggerManual.
	TriggeredBy string `json:"triggered_by"`

	Status JobStatus `json:"status"`

	// Result holds the summary of the last attempt.
	Result *report.Result `json:"result,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the last attempt failed.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *GenerateReportsJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *GenerateReportsJob) GetType() JobType {
	return JobTypeGenerateReports
}

// GetStatus implements the Job interface.
func (j *GenerateReportsJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishGenerateReports enqueues a report batch run.
	PublishGenerateReports(ctx context.Context, job *GenerateReportsJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes a job. A returned error marks the attempt failed and
// schedules a retry while retries remain.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state.
type JobStore interface {
	SaveJob(ctx context.Context, job *GenerateReportsJob) error
	GetJob(ctx context.Context, jobID string) (*GenerateReportsJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*GenerateReportsJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	Status JobStatus
	Limit  int
	Offset int
}
