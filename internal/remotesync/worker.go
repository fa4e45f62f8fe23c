package remotesync

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/benvon/questlog/internal/mirror"
	"github.com/benvon/questlog/internal/queue"
	"github.com/benvon/questlog/internal/storage"
	"github.com/benvon/questlog/internal/telemetry"
)

// Mirror is the remote store a Worker writes to
type Mirror interface {
	Sync(ctx context.Context, c storage.Collection, records map[string][]byte) (mirror.Result, error)
}

// Reader is the read side of local persistence
type Reader interface {
	List(ctx context.Context, collection storage.Collection) (map[string][]byte, error)
}

const defaultRetryDelay = 10 * time.Second

// Worker copies local collections into the mirror for each sync job
type Worker struct {
	store      Reader
	mirror     Mirror
	jobQueue   queue.JobQueue
	logger     *zap.Logger
	retryDelay time.Duration
}

// NewWorker creates a sync worker. jobQueue is used to re-enqueue failed jobs
// with a delay; when nil failed jobs are requeued immediately.
func NewWorker(store Reader, m Mirror, jobQueue queue.JobQueue, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		store:      store,
		mirror:     m,
		jobQueue:   jobQueue,
		logger:     logger.Named("sync_worker"),
		retryDelay: defaultRetryDelay,
	}
}

// ProcessJob runs one job and settles its message
func (w *Worker) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	if job.NotBefore != nil {
		if wait := time.Until(*job.NotBefore); wait > 0 {
			select {
			case <-ctx.Done():
				_ = msg.Nack(true)
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	collections, err := collectionsFor(job)
	if err != nil {
		if nackErr := msg.Nack(false); nackErr != nil {
			w.logger.Warn("nack_failed", zap.Error(nackErr))
		}
		return err
	}

	for _, c := range collections {
		if err := w.syncCollection(ctx, c); err != nil {
			return w.handleJobError(ctx, msg, job, err)
		}
	}

	if err := msg.Ack(); err != nil {
		return fmt.Errorf("failed to ack job: %w", err)
	}
	return nil
}

func (w *Worker) syncCollection(ctx context.Context, c storage.Collection) (err error) {
	ctx, span := telemetry.Tracer().Start(ctx, "sync.collection",
		trace.WithAttributes(attribute.String("questlog.collection", string(c))))
	defer func() { telemetry.End(span, err) }()

	records, err := w.store.List(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c, err)
	}
	res, err := w.mirror.Sync(ctx, c, records)
	if err != nil {
		return fmt.Errorf("failed to mirror %s: %w", c, err)
	}
	span.SetAttributes(attribute.Int("questlog.upserted", res.Upserted))
	w.logger.Info("collection_synced",
		zap.String("collection", string(c)),
		zap.Int("upserted", res.Upserted),
		zap.Int("skipped", res.Skipped),
		zap.Int("pruned", res.Pruned),
	)
	return nil
}

func (w *Worker) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, cause error) error {
	if !job.CanRetry() {
		w.logger.Error("sync_job_dead_lettered",
			zap.Error(cause),
			zap.String("job_id", job.ID.String()),
			zap.Int("retries", job.RetryCount),
		)
		if nackErr := msg.Nack(false); nackErr != nil {
			w.logger.Warn("nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("sync job failed (max retries): %w", cause)
	}

	if w.jobQueue != nil {
		delay := w.retryDelay * time.Duration(job.RetryCount+1)
		if err := w.jobQueue.Enqueue(ctx, job.Retry(delay)); err == nil {
			if ackErr := msg.Ack(); ackErr != nil {
				w.logger.Warn("ack_failed", zap.Error(ackErr))
			}
			w.logger.Warn("sync_job_retry_scheduled",
				zap.Error(cause),
				zap.String("job_id", job.ID.String()),
				zap.Int("attempt", job.RetryCount+1),
				zap.Duration("delay", delay),
			)
			return fmt.Errorf("sync job failed (will retry): %w", cause)
		}
	}

	if nackErr := msg.Nack(true); nackErr != nil {
		w.logger.Warn("nack_failed", zap.Error(nackErr))
	}
	return fmt.Errorf("sync job failed (requeued): %w", cause)
}

func collectionsFor(job *queue.Job) ([]storage.Collection, error) {
	switch job.Type {
	case queue.JobTypeSyncAll:
		return storage.Collections, nil
	case queue.JobTypeSyncEntity:
		c, err := storage.ParseCollection(job.EntityKind)
		if err != nil {
			return nil, err
		}
		return []storage.Collection{c}, nil
	default:
		return nil, fmt.Errorf("unknown job type: %s", job.Type)
	}
}
