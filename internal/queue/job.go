package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeSyncEntity mirrors a single entity kind to the remote store
	JobTypeSyncEntity JobType = "sync_entity"
	// JobTypeSyncAll mirrors every entity kind, used by the periodic sync timer
	JobTypeSyncAll JobType = "sync_all"
)

// DefaultMaxRetries bounds re-deliveries before a job is dead-lettered
const DefaultMaxRetries = 3

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID      `json:"id"`
	Type       JobType        `json:"type"`
	EntityKind string         `json:"entity_kind,omitempty"`
	NotBefore  *time.Time     `json:"not_before,omitempty"` // nil = immediate
	NotAfter   *time.Time     `json:"not_after,omitempty"`  // nil = no expiration
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
}

// NewJob creates a new job for entityKind; entityKind is empty for JobTypeSyncAll
func NewJob(jobType JobType, entityKind string) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		EntityKind: entityKind,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now(),
		MaxRetries: DefaultMaxRetries,
	}
}

// ShouldProcess reports whether now lies inside the job's NotBefore..NotAfter window
func (j *Job) ShouldProcess() bool {
	now := time.Now()
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	return !j.expiredAt(now)
}

// IsExpired checks if the job has passed NotAfter
func (j *Job) IsExpired() bool {
	return j.expiredAt(time.Now())
}

func (j *Job) expiredAt(now time.Time) bool {
	return j.NotAfter != nil && now.After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}

// Retry returns a copy scheduled no earlier than now+delay with the retry count bumped
func (j *Job) Retry(delay time.Duration) *Job {
	next := *j
	notBefore := time.Now().Add(delay)
	next.NotBefore = &notBefore
	next.Metadata = make(map[string]any, len(j.Metadata))
	for k, v := range j.Metadata {
		next.Metadata[k] = v
	}
	next.IncrementRetry()
	return &next
}
