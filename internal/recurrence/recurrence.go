// Package recurrence computes the next instance of a completed recurring task.
package recurrence

import (
	"time"

	"github.com/google/uuid"

	"github.com/benvon/questlog/internal/apperr"
	"github.com/benvon/questlog/internal/models"
)

// NextOccurrence returns the due date of the task's next instance. ok is false
// when the task does not recur, has no due date, has passed its end_date, or
// has used up end_after_occurrences.
func NextOccurrence(task *models.Task) (next models.Date, ok bool, err error) {
	if task == nil || !task.IsRecurring || task.DueDate == nil || task.RecurrencePattern == nil {
		return models.Date{}, false, nil
	}
	p := task.RecurrencePattern

	interval := p.Interval
	if interval < 1 {
		interval = 1
	}

	due := *task.DueDate
	switch p.Type {
	case models.RecurrenceDaily, models.RecurrenceCustom:
		next = due.AddDays(interval)
	case models.RecurrenceWeekly:
		next = due.AddDays(7 * interval)
	case models.RecurrenceMonthly:
		next = AddMonths(due, interval)
	default:
		return models.Date{}, false, apperr.Computation("unknown recurrence type %q", p.Type)
	}

	if p.EndDate != nil && next.After(*p.EndDate) {
		return models.Date{}, false, nil
	}
	if p.EndAfterOccurrences != nil && occurrenceOf(task)+1 > *p.EndAfterOccurrences {
		return models.Date{}, false, nil
	}
	return next, true, nil
}

// AddMonths adds n calendar months, clamping the day to the last day of the
// target month (Jan 31 + 1 month is Feb 29 in a leap year)
func AddMonths(d models.Date, n int) models.Date {
	first := time.Date(d.Year, d.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	day := d.Day
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return models.NewDate(first.Year(), first.Month(), day)
}

// Successor builds the next instance of a completed recurring task, or nil
// when the series has ended
func Successor(task *models.Task, now time.Time) (*models.Task, error) {
	next, ok, err := NextOccurrence(task)
	if err != nil || !ok {
		return nil, err
	}

	s := task.Clone()
	s.ID = uuid.New()
	s.Status = models.TaskStatusNotStarted
	s.ProgressPercentage = 0
	s.DueDate = &next
	s.CompletedAt = nil
	prior := *task.DueDate
	s.LastCompletedDate = &prior
	s.Occurrence = occurrenceOf(task) + 1
	s.SyncVersion = 1
	s.CreatedAt = now
	s.ModifiedAt = now
	return s, nil
}

func occurrenceOf(task *models.Task) int {
	if task.Occurrence < 1 {
		return 1
	}
	return task.Occurrence
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
