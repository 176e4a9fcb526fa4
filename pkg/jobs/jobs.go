// Package jobs records carve requests served over HTTP.
//
// A [Job] is created when a request arrives, marked running while the image
// is carved, and finished with either the result summary or the error.
// Records expire after [DefaultTTL]. Two [Store] backends exist:
// [MemoryStore] for a single process and [MongoStore] for deployments that
// share job history across instances.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for job operations.
var (
	// ErrNotFound is returned when a job does not exist or has expired.
	ErrNotFound = errors.New("job not found")

	// ErrExists is returned when creating a job whose ID is taken.
	ErrExists = errors.New("job already exists")
)

// DefaultTTL is how long finished jobs are kept.
const DefaultTTL = 24 * time.Hour

// Status is the lifecycle state of a job.
type Status string

// Job statuses.
const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Job is one carve request.
type Job struct {
	ID     string `json:"id" bson:"_id"`
	Status Status `json:"status" bson:"status"`
	Name   string `json:"name,omitempty" bson:"name,omitempty"`

	SourceWidth  int    `json:"source_width" bson:"source_width"`
	SourceHeight int    `json:"source_height" bson:"source_height"`
	TargetWidth  int    `json:"target_width" bson:"target_width"`
	TargetHeight int    `json:"target_height" bson:"target_height"`
	Direction    string `json:"direction" bson:"direction"`
	Format       string `json:"format" bson:"format"`

	SeamsRemoved int    `json:"seams_removed" bson:"seams_removed"`
	CacheHit     bool   `json:"cache_hit" bson:"cache_hit"`
	Error        string `json:"error,omitempty" bson:"error,omitempty"`

	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	StartedAt  time.Time `json:"started_at,omitzero" bson:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitzero" bson:"finished_at,omitempty"`
	ExpiresAt  time.Time `json:"expires_at" bson:"expires_at"`
}

// Duration returns how long the job ran, or zero if it has not finished.
func (j *Job) Duration() time.Duration {
	if j.StartedAt.IsZero() || j.FinishedAt.IsZero() {
		return 0
	}
	return j.FinishedAt.Sub(j.StartedAt)
}

// IsExpired returns true if the record is past its expiry.
func (j *Job) IsExpired() bool {
	return !j.ExpiresAt.IsZero() && time.Now().After(j.ExpiresAt)
}

// Start marks the job running.
func (j *Job) Start() {
	j.Status = StatusRunning
	j.StartedAt = time.Now()
}

// Finish marks the job done, or failed when err is non-nil.
func (j *Job) Finish(err error) {
	j.FinishedAt = time.Now()
	if err != nil {
		j.Status = StatusFailed
		j.Error = err.Error()
		return
	}
	j.Status = StatusDone
}

// Store is the interface for job storage backends.
type Store interface {
	// Create stores a new job. Returns ErrExists if the ID is taken.
	Create(ctx context.Context, job *Job) error

	// Get retrieves a job by ID. Returns ErrNotFound if it does not exist
	// or has expired.
	Get(ctx context.Context, id string) (*Job, error)

	// Update replaces a stored job. Returns ErrNotFound if it does not exist.
	Update(ctx context.Context, job *Job) error

	// List returns up to limit jobs, newest first.
	List(ctx context.Context, limit int) ([]*Job, error)

	// Cleanup removes expired jobs.
	Cleanup(ctx context.Context) error

	Close(ctx context.Context) error
}

// idPrefix namespaces job IDs in logs and headers.
const idPrefix = "job_"

// NewID returns a fresh job ID.
func NewID() string {
	return idPrefix + uuid.NewString()
}

// New creates a pending job with a fresh ID.
func New(name string, ttl time.Duration) *Job {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Job{
		ID:        NewID(),
		Status:    StatusPending,
		Name:      name,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
