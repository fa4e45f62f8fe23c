package gamification

import (
	"github.com/benvon/questlog/internal/apperr"
	"github.com/benvon/questlog/internal/models"
)

// Evaluator checks profile statistics against the achievement catalog
type Evaluator struct {
	catalog []models.Achievement
}

// NewEvaluator creates an evaluator over achievements in evaluation order
func NewEvaluator(achievements []models.Achievement) *Evaluator {
	return &Evaluator{catalog: achievements}
}

// CheckAchievements unlocks every achievement newly satisfied by p, in catalog
// order. Each unlock appends to the profile, adds its reward to experience and
// recomputes the level before the next entry is evaluated. Unlocked entries are
// never evaluated again.
func (e *Evaluator) CheckAchievements(p *models.Profile) ([]models.Achievement, error) {
	var unlocked []models.Achievement
	for _, a := range e.catalog {
		if p.HasAchievement(a.ID) {
			continue
		}
		ok, err := Satisfied(a.Criteria, p)
		if err != nil {
			return unlocked, err
		}
		if !ok {
			continue
		}
		p.UnlockedAchievements = append(p.UnlockedAchievements, a.ID)
		p.TotalExperience += a.Reward
		p.Level = Level(p.TotalExperience)
		unlocked = append(unlocked, a)
	}
	return unlocked, nil
}

// Statuses pairs every catalog entry with its unlock state for p
func (e *Evaluator) Statuses(p *models.Profile) []models.AchievementWithStatus {
	out := make([]models.AchievementWithStatus, 0, len(e.catalog))
	for _, a := range e.catalog {
		out = append(out, models.AchievementWithStatus{Achievement: a, Unlocked: p.HasAchievement(a.ID)})
	}
	return out
}

// Satisfied evaluates a single criteria predicate
func Satisfied(c models.Criteria, p *models.Profile) (bool, error) {
	switch c.Type {
	case models.CriteriaTaskCount:
		return p.TasksCompleted >= c.Target, nil
	case models.CriteriaTaskCountPriority:
		sum := 0
		for prio, n := range p.TasksCompletedByPriority {
			if prio <= c.PriorityMax {
				sum += n
			}
		}
		return sum >= c.Target, nil
	case models.CriteriaTaskCountDifficulty:
		sum := 0
		for diff, n := range p.TasksCompletedByDiff {
			if diff >= c.DifficultyMin {
				sum += n
			}
		}
		return sum >= c.Target, nil
	case models.CriteriaStreakDays:
		return p.LongestStreakDays >= c.Target, nil
	default:
		return false, apperr.Computation("unknown criteria type %q", c.Type)
	}
}
