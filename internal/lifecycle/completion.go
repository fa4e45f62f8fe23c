package lifecycle

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/benvon/questlog/internal/gamification"
	"github.com/benvon/questlog/internal/models"
	"github.com/benvon/questlog/internal/recurrence"
	"github.com/benvon/questlog/internal/storage"
)

// CompletionResult reports everything a completion changed
type CompletionResult struct {
	PointsAwarded        int                       `json:"points_awarded"`
	Multipliers          gamification.Multipliers  `json:"multipliers"`
	LevelBefore          int                       `json:"level_before"`
	LevelAfter           int                       `json:"level_after"`
	LeveledUp            bool                      `json:"leveled_up"`
	StreakDays           int                       `json:"streak_days"`
	StreakChange         gamification.StreakChange `json:"streak_change"`
	UnlockedAchievements []models.Achievement      `json:"unlocked_achievements"`
	Successor            *models.Task              `json:"successor,omitempty"`
	MissionCompleted     bool                      `json:"mission_completed"`
	MissionBonusAwarded  int                       `json:"mission_bonus_awarded"`
	TotalExperience      int                       `json:"total_experience"`
}

// outcome is the uncommitted post-completion state
type outcome struct {
	result    *CompletionResult
	profile   *models.Profile
	missions  *models.MissionSet
	successor *models.Task
}

// completeLocked runs the pipeline on copies of the owned state, persists the
// task, successor, mission set and profile together, and only then swaps them
// in. m.mu must be held.
func (m *Manager) completeLocked(ctx context.Context, current, done *models.Task) (*CompletionResult, error) {
	out, err := m.runPipeline(done)
	if err != nil {
		m.logger.Error("completion_pipeline_failed", zap.Error(err), zap.String("task_id", done.ID.String()))
		return nil, err
	}

	writes := make([]write, 0, 4)
	w, err := change(storage.CollectionTasks, done.ID.String(), done, current)
	if err != nil {
		return nil, err
	}
	writes = append(writes, w)
	if out.successor != nil {
		w, err := change[models.Task](storage.CollectionTasks, out.successor.ID.String(), out.successor, nil)
		if err != nil {
			return nil, err
		}
		writes = append(writes, w)
	}
	if out.missions != nil && out.result.MissionCompleted {
		w, err := change(storage.CollectionDailyMissions, storage.SingletonKey, out.missions, m.missions)
		if err != nil {
			return nil, err
		}
		writes = append(writes, w)
	}
	w, err = change(storage.CollectionProfile, storage.SingletonKey, out.profile, m.profile)
	if err != nil {
		return nil, err
	}
	writes = append(writes, w)

	if err := m.commit(ctx, writes); err != nil {
		m.logger.Error("completion_not_persisted", zap.Error(err), zap.String("task_id", done.ID.String()))
		return nil, err
	}

	m.tasks[done.ID] = done
	if out.successor != nil {
		m.tasks[out.successor.ID] = out.successor
		out.result.Successor = out.successor.Clone()
	}
	if out.result.MissionCompleted {
		m.missions = out.missions
	}
	m.profile = out.profile

	m.logger.Info("task_completed",
		zap.String("task_id", done.ID.String()),
		zap.Int("points_awarded", out.result.PointsAwarded),
		zap.Float64("multiplier", out.result.Multipliers.Total),
		zap.Int("streak_days", out.result.StreakDays),
		zap.Int("level", out.result.LevelAfter),
		zap.Duration("open_for", durationSince(done.CreatedAt, *done.CompletedAt)),
	)
	m.announce(out.result)

	m.trigger.RequestSync(string(storage.CollectionTasks))
	m.trigger.RequestSync(string(storage.CollectionProfile))
	if out.result.MissionCompleted {
		m.trigger.RequestSync(string(storage.CollectionDailyMissions))
	}
	return out.result, nil
}

// runPipeline applies scoring, streak, mission bookkeeping, leveling,
// achievements and recurrence, in that order, to copies of the owned state
func (m *Manager) runPipeline(done *models.Task) (*outcome, error) {
	profile := m.profile.Clone()
	missions := m.missions.Clone()
	day := models.DateIn(*done.CompletedAt, m.loc)

	res := &CompletionResult{LevelBefore: gamification.Level(profile.TotalExperience)}

	// a streak that already lapsed earns no multiplier
	streak := 0
	if gamification.StreakAlive(profile, day) {
		streak = profile.CurrentStreakDays
	}
	activeMissions := missions != nil && missions.Date.Equal(day)
	inMissions := activeMissions && missions.Contains(done.ID)

	res.Multipliers = gamification.ComputeMultipliers(done, gamification.ScoreContext{
		StreakDays:  streak,
		InMissions:  inMissions,
		CompletedAt: *done.CompletedAt,
		Location:    m.loc,
	})
	res.PointsAwarded = gamification.AwardedPoints(done.PointsValue, res.Multipliers)

	profile.TotalPoints += res.PointsAwarded
	profile.TotalExperience += res.PointsAwarded
	profile.TasksCompleted++
	profile.TasksCompletedByPriority[done.Priority]++
	profile.TasksCompletedByDiff[done.Difficulty]++

	res.StreakChange = gamification.UpdateStreak(profile, day)
	res.StreakDays = profile.CurrentStreakDays

	if inMissions && missions.MarkCompleted(done.ID) {
		res.MissionCompleted = true
		missions.SyncVersion++
		if missions.AllCompleted() && !missions.BonusAwarded {
			missions.BonusAwarded = true
			res.MissionBonusAwarded = missions.Bonus
			profile.TotalPoints += missions.Bonus
			profile.TotalExperience += missions.Bonus
		}
	}

	profile.Level = gamification.Level(profile.TotalExperience)

	unlocked, err := m.evaluator.CheckAchievements(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate achievements: %w", err)
	}
	res.UnlockedAchievements = unlocked

	successor, err := recurrence.Successor(done, *done.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to compute next occurrence: %w", err)
	}

	profile.SyncVersion++
	res.LevelAfter = profile.Level
	res.LeveledUp = res.LevelAfter > res.LevelBefore
	res.TotalExperience = profile.TotalExperience

	return &outcome{result: res, profile: profile, missions: missions, successor: successor}, nil
}

// announce emits notifications for a persisted completion
func (m *Manager) announce(res *CompletionResult) {
	for _, a := range res.UnlockedAchievements {
		m.logger.Info("achievement_unlocked", zap.String("achievement_id", a.ID), zap.Int("reward", a.Reward))
		m.sink.Notify("Achievement unlocked", a.Title, map[string]string{
			"kind":           "achievement",
			"achievement_id": a.ID,
			"rarity":         string(a.Rarity),
			"reward":         strconv.Itoa(a.Reward),
		})
	}
	if res.LeveledUp {
		m.sink.Notify("Level up", fmt.Sprintf("You reached level %d", res.LevelAfter), map[string]string{
			"kind":  "level_up",
			"level": strconv.Itoa(res.LevelAfter),
		})
	}
	if res.MissionBonusAwarded > 0 {
		m.sink.Notify("Daily missions complete", fmt.Sprintf("Bonus of %d points awarded", res.MissionBonusAwarded), map[string]string{
			"kind":  "mission_bonus",
			"bonus": strconv.Itoa(res.MissionBonusAwarded),
		})
	}
}
