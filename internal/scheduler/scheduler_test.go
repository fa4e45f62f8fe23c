package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benvon/questlog/internal/lifecycle"
	"github.com/benvon/questlog/internal/models"
)

func TestNextDailyAt(t *testing.T) {
	t.Parallel()
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		name string
		now  time.Time
		at   models.TimeOfDay
		loc  *time.Location
		want time.Time
	}{
		{
			name: "later today",
			now:  time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
			at:   models.TimeOfDay{Hour: 20},
			loc:  time.UTC,
			want: time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC),
		},
		{
			name: "already passed",
			now:  time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC),
			at:   models.TimeOfDay{Hour: 20},
			loc:  time.UTC,
			want: time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly now rolls over",
			now:  time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC),
			at:   models.TimeOfDay{Hour: 20},
			loc:  time.UTC,
			want: time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC),
		},
		{
			name: "local zone",
			now:  time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC),
			at:   models.TimeOfDay{Hour: 21, Minute: 30},
			loc:  ny,
			want: time.Date(2024, 3, 1, 21, 30, 0, 0, ny),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NextDailyAt(tt.now, tt.at, tt.loc)
			if !got.Equal(tt.want) {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestEvery_RunsUntilCancelled(t *testing.T) {
	t.Parallel()
	s := New(nil, time.UTC)
	defer s.Stop()

	var runs atomic.Int32
	if err := s.Every("tick", 5*time.Millisecond, func(context.Context) { runs.Add(1) }); err != nil {
		t.Fatalf("Every() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if runs.Load() < 3 {
		t.Fatalf("Expected at least 3 runs, got %d", runs.Load())
	}

	if !s.Cancel("tick") {
		t.Fatal("Expected Cancel to find the timer")
	}
	if s.Cancel("tick") {
		t.Error("Expected second Cancel to report false")
	}
	time.Sleep(20 * time.Millisecond)
	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != after {
		t.Errorf("Expected no runs after cancel, went from %d to %d", after, runs.Load())
	}
}

func TestEvery_InvalidInterval(t *testing.T) {
	t.Parallel()
	s := New(nil, nil)
	defer s.Stop()
	if err := s.Every("bad", 0, func(context.Context) {}); err == nil {
		t.Error("Expected error for zero interval")
	}
	if err := s.DailyAt("bad", models.TimeOfDay{Hour: 24}, func(context.Context) {}); err == nil {
		t.Error("Expected error for invalid time of day")
	}
	if len(s.Names()) != 0 {
		t.Errorf("Expected no timers, got %v", s.Names())
	}
}

func TestScheduler_ReplaceAndStop(t *testing.T) {
	t.Parallel()
	s := New(nil, time.UTC)

	var first, second atomic.Int32
	if err := s.Every("job", 5*time.Millisecond, func(context.Context) { first.Add(1) }); err != nil {
		t.Fatalf("Every() error = %v", err)
	}
	if err := s.Every("job", 5*time.Millisecond, func(context.Context) { second.Add(1) }); err != nil {
		t.Fatalf("Every() error = %v", err)
	}
	if got := s.Names(); len(got) != 1 || got[0] != "job" {
		t.Errorf("Expected a single job timer, got %v", got)
	}
	time.Sleep(40 * time.Millisecond)
	frozen := first.Load()
	time.Sleep(30 * time.Millisecond)
	if first.Load() != frozen {
		t.Errorf("Expected replaced timer to stop running")
	}
	if second.Load() == 0 {
		t.Errorf("Expected replacement timer to run")
	}

	s.Stop()
	if err := s.Every("late", time.Millisecond, func(context.Context) {}); !errors.Is(err, ErrStopped) {
		t.Errorf("Expected ErrStopped, got %v", err)
	}
}

func TestScheduler_RecoversPanics(t *testing.T) {
	t.Parallel()
	s := New(nil, time.UTC)
	defer s.Stop()

	var runs atomic.Int32
	err := s.Every("flaky", 5*time.Millisecond, func(context.Context) {
		if runs.Add(1) == 1 {
			panic("boom")
		}
	})
	if err != nil {
		t.Fatalf("Every() error = %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if runs.Load() < 2 {
		t.Errorf("Expected timer to keep running after a panic")
	}
}

type stubStreaks struct {
	status lifecycle.StreakStatus
}

func (s stubStreaks) StreakStatus() lifecycle.StreakStatus { return s.status }

type recordingSink struct {
	mu    sync.Mutex
	count int
	meta  map[string]string
}

func (r *recordingSink) Notify(_, _ string, metadata map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	r.meta = metadata
}

type countingSync struct {
	calls atomic.Int32
}

func (c *countingSync) RequestSyncAll() { c.calls.Add(1) }

func TestReminders_Remind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status lifecycle.StreakStatus
		want   int
	}{
		{"alive and idle", lifecycle.StreakStatus{CurrentStreakDays: 4, Alive: true}, 1},
		{"already completed today", lifecycle.StreakStatus{CurrentStreakDays: 4, Alive: true, CompletedToday: true}, 0},
		{"lapsed", lifecycle.StreakStatus{CurrentStreakDays: 4}, 0},
		{"no streak", lifecycle.StreakStatus{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sink := &recordingSink{}
			r := NewReminders(New(nil, time.UTC), stubStreaks{tt.status}, sink, nil, nil)
			r.remind(context.Background())
			if sink.count != tt.want {
				t.Errorf("Expected %d notifications, got %d", tt.want, sink.count)
			}
			if tt.want == 1 && sink.meta["streak_days"] != "4" {
				t.Errorf("Expected streak_days 4, got %v", sink.meta)
			}
		})
	}
}

func TestReminders_Apply(t *testing.T) {
	t.Parallel()
	s := New(nil, time.UTC)
	defer s.Stop()
	syncer := &countingSync{}
	r := NewReminders(s, stubStreaks{}, nil, syncer, nil)

	r.Apply(models.Preferences{
		ReminderEnabled:     true,
		ReminderTime:        models.TimeOfDay{Hour: 20},
		SyncIntervalMinutes: 30,
	})
	got := s.Names()
	if len(got) != 2 || got[0] != PeriodicSyncTimer || got[1] != StreakReminderTimer {
		t.Errorf("Expected both timers, got %v", got)
	}

	r.Apply(models.Preferences{ReminderEnabled: false, SyncIntervalMinutes: 0})
	if got := s.Names(); len(got) != 0 {
		t.Errorf("Expected timers cancelled, got %v", got)
	}

	r.Apply(models.Preferences{SyncIntervalMinutes: 5})
	if got := s.Names(); len(got) != 1 || got[0] != PeriodicSyncTimer {
		t.Errorf("Expected only periodic sync, got %v", got)
	}
}
