// Package jobs defines the async job model and the queue/store contracts.
// The only job kind today is a CSV import pulled from GCS.
package jobs

import (
	"context"
	"time"

	"github.com/MarcuxOng/finsight/internal/ingest"
)

// JobType identifies what a job does.
type JobType string

const (
	JobTypeImportCSV JobType = "import_csv"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ImportCSVJob imports a previously uploaded CSV file for one user.
type ImportCSVJob struct {
	JobID string `json:"job_id"`

	// UserID owns the uploaded file and the resulting transactions.
	UserID string `json:"user_id"`

	// GCSURI points at the raw CSV bytes to import.
	GCSURI string `json:"gcs_uri"`

	// Filename is the original upload name, kept for status display.
	Filename string `json:"filename,omitempty"`

	Status JobStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error holds the failure reason once the job gives up.
	Error string `json:"error,omitempty"`

	// Result is set when the import ran to completion, even if some rows
	// failed; per-row failures are not job failures.
	Result *ingest.Result `json:"result,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is the generic view the queue plumbing works with.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *ImportCSVJob) GetID() string        { return j.JobID }
func (j *ImportCSVJob) GetType() JobType     { return JobTypeImportCSV }
func (j *ImportCSVJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues jobs. The abstraction leaves room for a Cloud Tasks
// or Pub/Sub implementation later; today there is only the in-memory one.
type Publisher interface {
	PublishImportCSV(ctx context.Context, job *ImportCSVJob) error
	Close() error
}

// Consumer pulls jobs off the queue and runs them through a handler.
type Consumer interface {
	Start(ctx context.Context, handler JobHandler) error
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A returned error marks the attempt failed
// and eligible for retry.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state so clients can poll for progress.
type JobStore interface {
	SaveJob(ctx context.Context, job *ImportCSVJob) error
	GetJob(ctx context.Context, jobID string) (*ImportCSVJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ImportCSVJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter narrows ListJobs results.
type JobFilter struct {
	UserID string
	Status JobStatus
	Limit  int
	Offset int
}
