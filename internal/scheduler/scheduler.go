// Package scheduler runs named, cancellable background timers.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/benvon/questlog/internal/models"
)

// ErrStopped is returned when scheduling on a stopped scheduler
var ErrStopped = errors.New("scheduler stopped")

// Job is the work a timer runs on each firing
type Job func(ctx context.Context)

// Scheduler owns a set of named timers. Scheduling a name that is already
// registered replaces the previous timer.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]context.CancelFunc
	wg     sync.WaitGroup
	ctx    context.Context
	stop   context.CancelFunc

	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time
}

// New creates a scheduler. Daily timers are computed in loc (UTC when nil).
func New(logger *zap.Logger, loc *time.Location) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		timers: make(map[string]context.CancelFunc),
		ctx:    ctx,
		stop:   cancel,
		logger: logger.Named("scheduler"),
		loc:    loc,
		now:    time.Now,
	}
}

// Every runs job every interval until cancelled
func (s *Scheduler) Every(name string, interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval %s for timer %s", interval, name)
	}
	return s.start(name, func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.run(ctx, name, job)
			}
		}
	})
}

// DailyAt runs job once a day at the given local wall-clock time
func (s *Scheduler) DailyAt(name string, at models.TimeOfDay, job Job) error {
	if at.Hour < 0 || at.Hour > 23 || at.Minute < 0 || at.Minute > 59 {
		return fmt.Errorf("invalid time of day %s for timer %s", at, name)
	}
	return s.start(name, func(ctx context.Context) {
		for {
			next := NextDailyAt(s.now(), at, s.loc)
			s.logger.Debug("timer_scheduled", zap.String("timer", name), zap.Time("next_run", next))
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				s.run(ctx, name, job)
			}
		}
	})
}

// Cancel stops the named timer and reports whether it existed
func (s *Scheduler) Cancel(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancel, ok := s.timers[name]
	if ok {
		cancel()
		delete(s.timers, name)
	}
	return ok
}

// Names lists the registered timers
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.timers))
	for name := range s.timers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stop cancels every timer and waits for running jobs to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stop()
	s.timers = make(map[string]context.CancelFunc)
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Scheduler) start(name string, loop func(ctx context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return ErrStopped
	}
	if cancel, ok := s.timers[name]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.timers[name] = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		loop(ctx)
	}()
	return nil
}

func (s *Scheduler) run(ctx context.Context, name string, job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("timer_job_panic", zap.String("timer", name), zap.Any("panic", r))
		}
	}()
	job(ctx)
}

// NextDailyAt returns the next instant strictly after now at which the wall
// clock in loc reads at
func NextDailyAt(now time.Time, at models.TimeOfDay, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	today := models.DateIn(now, loc)
	next := at.On(today, loc)
	if !next.After(now) {
		next = at.On(today.AddDays(1), loc)
	}
	return next
}
