package queue

import (
	"context"
	"time"
)

// MessageInterface is a delivered job awaiting acknowledgement
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// JobQueue carries sync jobs between the API process and the sync worker
type JobQueue interface {
	// Enqueue publishes a job; jobs with NotBefore in the future are delayed
	Enqueue(ctx context.Context, job *Job) error

	// Consume delivers messages until ctx is cancelled. Each message must be
	// acked or nacked by the caller. prefetchCount bounds unacknowledged messages.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	// Close closes the queue connection
	Close() error

	// HealthCheck verifies the queue connection is healthy
	HealthCheck(ctx context.Context) error
}

// DLQPurger removes dead-lettered jobs older than retention and reports how many it dropped
type DLQPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}
