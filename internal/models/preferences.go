package models

import "time"

// Preferences govern the background timers and profile display
type Preferences struct {
	ReminderEnabled     bool      `json:"reminder_enabled"`
	ReminderTime        TimeOfDay `json:"reminder_time"`
	SyncIntervalMinutes int       `json:"sync_interval_minutes"`
	TitleTheme          string    `json:"title_theme"`
}

// SyncInterval returns the periodic sync interval; zero disables periodic sync
func (p Preferences) SyncInterval() time.Duration {
	if p.SyncIntervalMinutes <= 0 {
		return 0
	}
	return time.Duration(p.SyncIntervalMinutes) * time.Minute
}
