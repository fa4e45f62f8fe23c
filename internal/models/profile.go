package models

// Profile holds the single user's gamification statistics
type Profile struct {
	Level                    int         `json:"level"`
	TotalExperience          int         `json:"total_experience"`
	TotalPoints              int         `json:"total_points"`
	TasksCompleted           int         `json:"tasks_completed"`
	TasksCompletedByPriority map[int]int `json:"tasks_completed_by_priority"`
	TasksCompletedByDiff     map[int]int `json:"tasks_completed_by_difficulty"`
	CurrentStreakDays        int         `json:"current_streak_days"`
	LongestStreakDays        int         `json:"longest_streak_days"`
	LastTaskDate             *Date       `json:"last_task_date,omitempty"`
	UnlockedAchievements     []string    `json:"unlocked_achievements"`
	SyncVersion              int64       `json:"sync_version"`
}

// NewProfile returns the zero-valued first-run profile
func NewProfile() *Profile {
	return &Profile{
		Level:                    1,
		TasksCompletedByPriority: make(map[int]int),
		TasksCompletedByDiff:     make(map[int]int),
		UnlockedAchievements:     []string{},
	}
}

// HasAchievement reports whether id is already unlocked
func (p *Profile) HasAchievement(id string) bool {
	for _, a := range p.UnlockedAchievements {
		if a == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the profile
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.TasksCompletedByPriority = make(map[int]int, len(p.TasksCompletedByPriority))
	for k, v := range p.TasksCompletedByPriority {
		c.TasksCompletedByPriority[k] = v
	}
	c.TasksCompletedByDiff = make(map[int]int, len(p.TasksCompletedByDiff))
	for k, v := range p.TasksCompletedByDiff {
		c.TasksCompletedByDiff[k] = v
	}
	c.UnlockedAchievements = append([]string{}, p.UnlockedAchievements...)
	if p.LastTaskDate != nil {
		d := *p.LastTaskDate
		c.LastTaskDate = &d
	}
	return &c
}
