package models

// CriteriaType identifies the statistic an achievement is unlocked by
type CriteriaType string

const (
	CriteriaTaskCount           CriteriaType = "task_count"
	CriteriaTaskCountPriority   CriteriaType = "task_count_priority"
	CriteriaTaskCountDifficulty CriteriaType = "task_count_difficulty"
	CriteriaStreakDays          CriteriaType = "streak_days"
)

// Rarity is a display tier for an achievement
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Criteria is the unlock predicate of an achievement
type Criteria struct {
	Type          CriteriaType `json:"type" yaml:"type"`
	Target        int          `json:"target" yaml:"target"`
	PriorityMax   int          `json:"priority_max,omitempty" yaml:"priority_max,omitempty"`
	DifficultyMin int          `json:"difficulty_min,omitempty" yaml:"difficulty_min,omitempty"`
}

// Achievement is an entry of the static achievement catalog
type Achievement struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Type        string   `json:"type" yaml:"type"`
	Criteria    Criteria `json:"criteria" yaml:"criteria"`
	Reward      int      `json:"reward" yaml:"reward"`
	Rarity      Rarity   `json:"rarity" yaml:"rarity"`
}

// AchievementWithStatus pairs a catalog entry with the profile's unlock state
type AchievementWithStatus struct {
	Achievement
	Unlocked bool `json:"unlocked"`
}
