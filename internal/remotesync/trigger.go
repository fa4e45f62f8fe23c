// Package remotesync requests and performs mirroring of local collections to the remote store.
package remotesync

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/benvon/questlog/internal/queue"
)

// Trigger is the fire-and-forget sync hint emitted after mutations
type Trigger interface {
	RequestSync(entityKind string)
}

// NoopTrigger ignores sync requests; used when no queue is configured
type NoopTrigger struct{}

func (NoopTrigger) RequestSync(string) {}

const defaultEnqueueTimeout = 5 * time.Second

// QueueTrigger publishes sync jobs without blocking the caller
type QueueTrigger struct {
	queue   queue.JobQueue
	logger  *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

var (
	_ Trigger = NoopTrigger{}
	_ Trigger = (*QueueTrigger)(nil)
)

// NewQueueTrigger creates a trigger over q; timeout bounds each publish
func NewQueueTrigger(q queue.JobQueue, logger *zap.Logger, timeout time.Duration) *QueueTrigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultEnqueueTimeout
	}
	return &QueueTrigger{queue: q, logger: logger.Named("sync_trigger"), timeout: timeout}
}

// RequestSync enqueues a sync job for entityKind in the background
func (t *QueueTrigger) RequestSync(entityKind string) {
	t.publish(queue.NewJob(queue.JobTypeSyncEntity, entityKind))
}

// RequestSyncAll enqueues a sync of every collection in the background
func (t *QueueTrigger) RequestSyncAll() {
	t.publish(queue.NewJob(queue.JobTypeSyncAll, ""))
}

func (t *QueueTrigger) publish(job *queue.Job) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		if err := t.queue.Enqueue(ctx, job); err != nil {
			t.logger.Warn("sync_request_failed",
				zap.Error(err),
				zap.String("job_type", string(job.Type)),
				zap.String("entity_kind", job.EntityKind),
			)
			return
		}
		t.logger.Debug("sync_requested",
			zap.String("job_id", job.ID.String()),
			zap.String("entity_kind", job.EntityKind),
		)
	}()
}

// Wait blocks until in-flight publishes finish
func (t *QueueTrigger) Wait() {
	t.wg.Wait()
}
