package gamification

import (
	"math"
	"time"

	"github.com/benvon/questlog/internal/models"
)

const (
	// StreakStep is the per-day streak multiplier increment
	StreakStep = 0.05
	// MaxStreakMultiplier caps the streak multiplier
	MaxStreakMultiplier = 2.0
	// EarlyCompletionMultiplier applies when a task is finished in the first half of its window
	EarlyCompletionMultiplier = 1.5
	// DailyMissionMultiplier applies to tasks in the active mission set
	DailyMissionMultiplier = 1.25
	// earlyWindowFraction is the share of the created_at..deadline window that counts as early
	earlyWindowFraction = 0.5
)

// Multipliers are the award-time factors applied to a task's points_value
type Multipliers struct {
	Streak          float64 `json:"streak"`
	EarlyCompletion float64 `json:"early_completion"`
	DailyMission    float64 `json:"daily_mission"`
	Bonus           float64 `json:"bonus"`
	Total           float64 `json:"total"`
}

// NeutralMultipliers returns all factors at 1.0
func NeutralMultipliers() Multipliers {
	return Multipliers{Streak: 1, EarlyCompletion: 1, DailyMission: 1, Bonus: 1, Total: 1}
}

// BasePoints computes (6 - priority) * difficulty * sqrt(minutes / 30), rounded.
// Non-positive or NaN minutes fall back to the default estimate; ranks and
// minutes are clamped to their valid ranges so the result is never negative.
func BasePoints(priority, difficulty int, estimatedMinutes float64) int {
	if !(estimatedMinutes > 0) {
		estimatedMinutes = models.DefaultEstimatedMinutes
	}
	estimatedMinutes = math.Min(estimatedMinutes, models.MaxEstimatedMinutes)
	priority = clampRank(priority)
	difficulty = clampRank(difficulty)
	raw := float64(6-priority) * float64(difficulty) * math.Sqrt(estimatedMinutes/models.DefaultEstimatedMinutes)
	return int(math.Round(raw))
}

// ScoreContext carries what the multipliers depend on besides the task
type ScoreContext struct {
	// StreakDays is the streak before this completion is counted
	StreakDays  int
	InMissions  bool
	CompletedAt time.Time
	Location    *time.Location
}

// ComputeMultipliers derives the award-time multipliers for a completion
func ComputeMultipliers(task *models.Task, sc ScoreContext) Multipliers {
	m := NeutralMultipliers()

	if sc.StreakDays > 1 {
		m.Streak = math.Min(1+StreakStep*float64(sc.StreakDays), MaxStreakMultiplier)
	}
	if IsEarlyCompletion(task, sc.CompletedAt, sc.Location) {
		m.EarlyCompletion = EarlyCompletionMultiplier
	}
	if sc.InMissions {
		m.DailyMission = DailyMissionMultiplier
	}

	m.Total = m.Streak * m.EarlyCompletion * m.DailyMission * m.Bonus
	return m
}

// AwardedPoints applies the total multiplier to the stored base value
func AwardedPoints(pointsValue int, m Multipliers) int {
	return int(math.Round(float64(pointsValue) * m.Total))
}

// IsEarlyCompletion reports whether completedAt falls within the first half of
// the window between the task's creation and its deadline. Tasks without a due
// date are never early. The deadline is due_date at due_time, or the end of the
// due day when no time is set.
func IsEarlyCompletion(task *models.Task, completedAt time.Time, loc *time.Location) bool {
	deadline, ok := Deadline(task, loc)
	if !ok {
		return false
	}
	window := deadline.Sub(task.CreatedAt)
	if window <= 0 {
		return false
	}
	elapsed := completedAt.Sub(task.CreatedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return float64(elapsed) <= float64(window)*earlyWindowFraction
}

// Deadline resolves the task's due instant in loc
func Deadline(task *models.Task, loc *time.Location) (time.Time, bool) {
	if task == nil || task.DueDate == nil {
		return time.Time{}, false
	}
	if task.DueTime != nil {
		return task.DueTime.On(*task.DueDate, loc), true
	}
	return task.DueDate.AddDays(1).In(loc), true
}

func clampRank(r int) int {
	return min(max(r, models.MinRank), models.MaxRank)
}
