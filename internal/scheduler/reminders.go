package scheduler

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/benvon/questlog/internal/lifecycle"
	"github.com/benvon/questlog/internal/models"
	"github.com/benvon/questlog/internal/notify"
)

// Timer names managed by Reminders
const (
	StreakReminderTimer = "streak_reminder"
	PeriodicSyncTimer   = "periodic_sync"
)

// StreakSource reads the current streak state
type StreakSource interface {
	StreakStatus() lifecycle.StreakStatus
}

// FullSyncRequester asks for every collection to be mirrored
type FullSyncRequester interface {
	RequestSyncAll()
}

// Reminders keeps the streak reminder and periodic sync timers in line with
// the user's preferences. Neither job mutates tasks or the profile.
type Reminders struct {
	sched   *Scheduler
	streaks StreakSource
	sink    notify.Sink
	sync    FullSyncRequester
	logger  *zap.Logger
}

// NewReminders creates a Reminders; a nil sync disables periodic sync
func NewReminders(sched *Scheduler, streaks StreakSource, sink notify.Sink, sync FullSyncRequester, logger *zap.Logger) *Reminders {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = notify.Noop{}
	}
	return &Reminders{sched: sched, streaks: streaks, sink: sink, sync: sync, logger: logger}
}

// Apply cancels both timers and reschedules them from p
func (r *Reminders) Apply(p models.Preferences) {
	r.sched.Cancel(StreakReminderTimer)
	r.sched.Cancel(PeriodicSyncTimer)

	if p.ReminderEnabled {
		if err := r.sched.DailyAt(StreakReminderTimer, p.ReminderTime, r.remind); err != nil {
			r.logger.Warn("streak_reminder_schedule_failed", zap.Error(err))
		}
	}
	if interval := p.SyncInterval(); interval > 0 && r.sync != nil {
		if err := r.sched.Every(PeriodicSyncTimer, interval, func(context.Context) { r.sync.RequestSyncAll() }); err != nil {
			r.logger.Warn("periodic_sync_schedule_failed", zap.Error(err))
		}
	}

	r.logger.Info("timers_rescheduled",
		zap.Bool("reminder_enabled", p.ReminderEnabled),
		zap.String("reminder_time", p.ReminderTime.String()),
		zap.Duration("sync_interval", p.SyncInterval()),
	)
}

// remind notifies when a live streak has nothing completed today
func (r *Reminders) remind(context.Context) {
	st := r.streaks.StreakStatus()
	if !st.Alive || st.CompletedToday || st.CurrentStreakDays == 0 {
		return
	}
	r.sink.Notify(
		"Keep your streak alive",
		fmt.Sprintf("Complete a task today to extend your %d-day streak", st.CurrentStreakDays),
		map[string]string{
			"kind":        "streak_reminder",
			"streak_days": strconv.Itoa(st.CurrentStreakDays),
		},
	)
}
