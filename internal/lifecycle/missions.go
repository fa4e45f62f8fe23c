package lifecycle

import (
	"context"

	"go.uber.org/zap"

	"github.com/benvon/questlog/internal/missions"
	"github.com/benvon/questlog/internal/models"
	"github.com/benvon/questlog/internal/storage"
)

// TodayMissions returns the mission set for the current local day,
// generating and persisting a new one when the stored set is from another day
func (m *Manager) TodayMissions(ctx context.Context) (*models.MissionSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	today := m.today()
	if m.missions != nil && m.missions.Date.Equal(today) {
		return m.missions.Clone(), nil
	}

	tasks := make([]*models.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, t)
	}
	sortTasks(tasks)

	set := missions.Generate(today, tasks)
	if m.missions != nil {
		set.SyncVersion = m.missions.SyncVersion + 1
	}

	w, err := change(storage.CollectionDailyMissions, storage.SingletonKey, set, m.missions)
	if err != nil {
		return nil, err
	}
	if err := m.commit(ctx, []write{w}); err != nil {
		return nil, err
	}

	m.missions = set
	m.logger.Info("daily_missions_generated",
		zap.String("date", today.String()),
		zap.Int("missions", len(set.Missions)),
	)
	m.trigger.RequestSync(string(storage.CollectionDailyMissions))
	return set.Clone(), nil
}
