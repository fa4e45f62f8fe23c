package gamification

import "github.com/benvon/questlog/internal/models"

// StreakChange describes what a completion did to the streak
type StreakChange string

const (
	StreakStarted   StreakChange = "started"
	StreakContinued StreakChange = "continued"
	StreakUnchanged StreakChange = "unchanged"
	StreakReset     StreakChange = "reset"
	StreakBackdated StreakChange = "backdated"
)

// UpdateStreak applies a completion on day to the profile's streak counters.
// Same-day completions are already counted, next-day completions extend the
// streak, and a gap of more than one day restarts it at 1. A completion dated
// before last_task_date leaves both the streak and last_task_date untouched.
func UpdateStreak(p *models.Profile, day models.Date) StreakChange {
	var change StreakChange

	switch {
	case p.LastTaskDate == nil:
		p.CurrentStreakDays = 1
		change = StreakStarted
	default:
		gap := p.LastTaskDate.DaysUntil(day)
		switch {
		case gap < 0:
			return StreakBackdated
		case gap == 0:
			if p.CurrentStreakDays < 1 {
				p.CurrentStreakDays = 1
			}
			change = StreakUnchanged
		case gap == 1:
			p.CurrentStreakDays++
			change = StreakContinued
		default:
			p.CurrentStreakDays = 1
			change = StreakReset
		}
	}

	if p.CurrentStreakDays > p.LongestStreakDays {
		p.LongestStreakDays = p.CurrentStreakDays
	}
	d := day
	p.LastTaskDate = &d
	return change
}

// StreakAlive reports whether the streak can still be extended on today
func StreakAlive(p *models.Profile, today models.Date) bool {
	if p.LastTaskDate == nil || p.CurrentStreakDays == 0 {
		return false
	}
	gap := p.LastTaskDate.DaysUntil(today)
	return gap == 0 || gap == 1
}
