package lifecycle

import (
	"context"

	"go.uber.org/zap"

	"github.com/benvon/questlog/internal/apperr"
	"github.com/benvon/questlog/internal/models"
	"github.com/benvon/questlog/internal/storage"
)

// Preferences returns the current preferences
func (m *Manager) Preferences() models.Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs
}

// OnPreferencesChanged registers fn to run after every successful preferences
// update. fn runs without the manager lock held.
func (m *Manager) OnPreferencesChanged(fn func(models.Preferences)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefsHook = fn
}

// UpdatePreferences validates and stores p, then notifies the registered hook
func (m *Manager) UpdatePreferences(ctx context.Context, p models.Preferences) (models.Preferences, error) {
	if err := validateTimeOfDay(&p.ReminderTime); err != nil {
		return models.Preferences{}, apperr.Invalid("reminder_time", "must be a valid HH:MM time")
	}
	if p.SyncIntervalMinutes < 0 {
		return models.Preferences{}, apperr.Invalid("sync_interval_minutes", "must not be negative")
	}
	if p.TitleTheme != "" {
		if _, err := m.catalog.Theme(p.TitleTheme); err != nil {
			return models.Preferences{}, apperr.Invalid("title_theme", "unknown theme %q", p.TitleTheme)
		}
	}

	m.mu.Lock()
	prev := m.prefs
	w, err := change(storage.CollectionPreferences, storage.SingletonKey, &p, &prev)
	if err == nil {
		err = m.commit(ctx, []write{w})
	}
	if err != nil {
		m.mu.Unlock()
		return models.Preferences{}, err
	}
	m.prefs = p
	hook := m.prefsHook
	m.mu.Unlock()

	m.logger.Info("preferences_updated",
		zap.Bool("reminder_enabled", p.ReminderEnabled),
		zap.String("reminder_time", p.ReminderTime.String()),
		zap.Int("sync_interval_minutes", p.SyncIntervalMinutes),
	)
	m.trigger.RequestSync(string(storage.CollectionPreferences))
	if hook != nil {
		hook(p)
	}
	return p, nil
}
