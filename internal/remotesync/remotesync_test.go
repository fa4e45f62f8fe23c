package remotesync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benvon/questlog/internal/mirror"
	"github.com/benvon/questlog/internal/queue"
	"github.com/benvon/questlog/internal/storage"
)

type mockJobQueue struct {
	mu          sync.Mutex
	jobs        []*queue.Job
	enqueueFunc func(ctx context.Context, job *queue.Job) error
}

func (m *mockJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	if m.enqueueFunc != nil {
		if err := m.enqueueFunc(ctx, job); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *mockJobQueue) Consume(context.Context, int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (m *mockJobQueue) Close() error                      { return nil }
func (m *mockJobQueue) HealthCheck(context.Context) error { return nil }

type mockMessage struct {
	job     *queue.Job
	acked   bool
	nacked  bool
	requeue bool
}

func (m *mockMessage) Ack() error { m.acked = true; return nil }
func (m *mockMessage) Nack(requeue bool) error {
	m.nacked, m.requeue = true, requeue
	return nil
}
func (m *mockMessage) GetJob() *queue.Job { return m.job }

type mockMirror struct {
	synced  []storage.Collection
	records map[storage.Collection]int
	err     error
}

func (m *mockMirror) Sync(_ context.Context, c storage.Collection, records map[string][]byte) (mirror.Result, error) {
	if m.err != nil {
		return mirror.Result{}, m.err
	}
	m.synced = append(m.synced, c)
	if m.records == nil {
		m.records = make(map[storage.Collection]int)
	}
	m.records[c] = len(records)
	return mirror.Result{Upserted: len(records)}, nil
}

var (
	_ queue.JobQueue         = (*mockJobQueue)(nil)
	_ queue.MessageInterface = (*mockMessage)(nil)
	_ Mirror                 = (*mockMirror)(nil)
)

func seededStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	s := storage.NewMemoryStore()
	ctx := context.Background()
	_ = s.Set(ctx, storage.CollectionTasks, "a", []byte(`{"sync_version":1}`))
	_ = s.Set(ctx, storage.CollectionTasks, "b", []byte(`{"sync_version":3}`))
	_ = s.Set(ctx, storage.CollectionProfile, storage.SingletonKey, []byte(`{"sync_version":2}`))
	return s
}

func TestQueueTrigger_RequestSync(t *testing.T) {
	t.Parallel()

	q := &mockJobQueue{}
	trig := NewQueueTrigger(q, nil, time.Second)
	trig.RequestSync("tasks")
	trig.RequestSyncAll()
	trig.Wait()

	if len(q.jobs) != 2 {
		t.Fatalf("Expected 2 jobs, got %d", len(q.jobs))
	}
	var sawEntity, sawAll bool
	for _, j := range q.jobs {
		switch j.Type {
		case queue.JobTypeSyncEntity:
			sawEntity = j.EntityKind == "tasks"
		case queue.JobTypeSyncAll:
			sawAll = true
		}
	}
	if !sawEntity || !sawAll {
		t.Errorf("Expected one entity job and one sync-all job, got %+v", q.jobs)
	}
}

func TestQueueTrigger_FailureDoesNotPanic(t *testing.T) {
	t.Parallel()

	q := &mockJobQueue{enqueueFunc: func(context.Context, *queue.Job) error { return errors.New("broker down") }}
	trig := NewQueueTrigger(q, nil, time.Second)
	trig.RequestSync("profile")
	trig.Wait()

	if len(q.jobs) != 0 {
		t.Errorf("Expected no recorded jobs, got %d", len(q.jobs))
	}
}

func TestWorker_ProcessJob(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		job         *queue.Job
		wantSynced  int
		wantAck     bool
		wantNack    bool
		wantRequeue bool
		wantErr     bool
	}{
		{"single collection", queue.NewJob(queue.JobTypeSyncEntity, "tasks"), 1, true, false, false, false},
		{"all collections", queue.NewJob(queue.JobTypeSyncAll, ""), len(storage.Collections), true, false, false, false},
		{"unknown collection", queue.NewJob(queue.JobTypeSyncEntity, "users"), 0, false, true, false, true},
		{"unknown type", &queue.Job{Type: "task_analysis"}, 0, false, true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := &mockMirror{}
			w := NewWorker(seededStore(t), m, nil, nil)
			msg := &mockMessage{job: tt.job}

			err := w.ProcessJob(context.Background(), msg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ProcessJob() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(m.synced) != tt.wantSynced {
				t.Errorf("Expected %d synced collections, got %d", tt.wantSynced, len(m.synced))
			}
			if msg.acked != tt.wantAck || msg.nacked != tt.wantNack || msg.requeue != tt.wantRequeue {
				t.Errorf("Unexpected settlement: acked=%v nacked=%v requeue=%v", msg.acked, msg.nacked, msg.requeue)
			}
		})
	}
}

func TestWorker_ProcessJob_PassesRecords(t *testing.T) {
	t.Parallel()

	m := &mockMirror{}
	w := NewWorker(seededStore(t), m, nil, nil)
	if err := w.ProcessJob(context.Background(), &mockMessage{job: queue.NewJob(queue.JobTypeSyncEntity, "tasks")}); err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}
	if m.records[storage.CollectionTasks] != 2 {
		t.Errorf("Expected 2 task records mirrored, got %d", m.records[storage.CollectionTasks])
	}
}

func TestWorker_RetryAndDeadLetter(t *testing.T) {
	t.Parallel()

	failing := &mockMirror{err: errors.New("connection reset")}

	t.Run("retry re-enqueues with delay", func(t *testing.T) {
		t.Parallel()
		q := &mockJobQueue{}
		w := NewWorker(seededStore(t), failing, q, nil)
		job := queue.NewJob(queue.JobTypeSyncEntity, "tasks")
		msg := &mockMessage{job: job}

		if err := w.ProcessJob(context.Background(), msg); err == nil {
			t.Fatal("Expected error")
		}
		if !msg.acked {
			t.Error("Expected original message to be acked after re-enqueue")
		}
		if len(q.jobs) != 1 || q.jobs[0].RetryCount != 1 || q.jobs[0].NotBefore == nil {
			t.Errorf("Expected one delayed retry, got %+v", q.jobs)
		}
	})

	t.Run("requeue without queue", func(t *testing.T) {
		t.Parallel()
		w := NewWorker(seededStore(t), failing, nil, nil)
		msg := &mockMessage{job: queue.NewJob(queue.JobTypeSyncEntity, "tasks")}
		_ = w.ProcessJob(context.Background(), msg)
		if !msg.nacked || !msg.requeue {
			t.Errorf("Expected nack with requeue")
		}
	})

	t.Run("dead letter after max retries", func(t *testing.T) {
		t.Parallel()
		q := &mockJobQueue{}
		w := NewWorker(seededStore(t), failing, q, nil)
		job := queue.NewJob(queue.JobTypeSyncEntity, "tasks")
		job.RetryCount = job.MaxRetries
		msg := &mockMessage{job: job}

		_ = w.ProcessJob(context.Background(), msg)
		if !msg.nacked || msg.requeue {
			t.Errorf("Expected nack without requeue")
		}
		if len(q.jobs) != 0 {
			t.Errorf("Expected no re-enqueue, got %d", len(q.jobs))
		}
	})
}
