// Package missions selects the daily mission set.
package missions

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/benvon/questlog/internal/gamification"
	"github.com/benvon/questlog/internal/models"
)

const (
	MinMissions = 3
	MaxMissions = 5
)

// Generate selects the mission set for date. Only incomplete tasks with a
// category are eligible. Tasks due on date are taken first, then recurring
// tasks, then everything else; the last two stages prefer categories not yet
// represented before filling from what remains. The same inputs always yield
// the same set.
func Generate(date models.Date, tasks []*models.Task) *models.MissionSet {
	eligible := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t == nil || t.IsCompleted() || t.CategoryID == nil || *t.CategoryID == "" {
			continue
		}
		eligible = append(eligible, t)
	}
	sortCandidates(eligible)

	target := TargetCount(len(eligible))
	s := &selection{
		target: target,
		picked: make(map[uuid.UUID]bool, target),
		seen:   make(map[string]bool, target),
	}

	var dueToday, recurring, others []*models.Task
	for _, t := range eligible {
		switch {
		case t.DueDate != nil && t.DueDate.Equal(date):
			dueToday = append(dueToday, t)
		case t.IsRecurring:
			recurring = append(recurring, t)
		default:
			others = append(others, t)
		}
	}

	for _, t := range dueToday {
		s.take(t)
	}
	s.diverseFill(recurring)
	s.diverseFill(others)

	set := &models.MissionSet{
		Date:        date,
		Missions:    make([]models.Mission, 0, len(s.order)),
		Bonus:       models.DailyMissionBonus,
		SyncVersion: 1,
	}
	for _, t := range s.order {
		set.Missions = append(set.Missions, snapshot(t))
	}
	return set
}

// TargetCount returns min(5, max(3, eligible)), never more than is available
func TargetCount(eligible int) int {
	target := eligible
	if target < MinMissions {
		target = MinMissions
	}
	if target > MaxMissions {
		target = MaxMissions
	}
	if target > eligible {
		target = eligible
	}
	return target
}

// MissionPoints is the snapshot value of a mission, with the daily-mission bonus baked in
func MissionPoints(t *models.Task) int {
	base := gamification.BasePoints(t.Priority, t.Difficulty, t.EstimatedMinutes)
	return int(math.Round(float64(base) * gamification.DailyMissionMultiplier))
}

type selection struct {
	target int
	order  []*models.Task
	picked map[uuid.UUID]bool
	seen   map[string]bool
}

func (s *selection) full() bool {
	return len(s.order) >= s.target
}

func (s *selection) take(t *models.Task) {
	if s.full() || s.picked[t.ID] {
		return
	}
	s.order = append(s.order, t)
	s.picked[t.ID] = true
	s.seen[*t.CategoryID] = true
}

// diverseFill takes one task per unseen category, then fills from the rest
func (s *selection) diverseFill(candidates []*models.Task) {
	for _, t := range candidates {
		if s.full() {
			return
		}
		if !s.seen[*t.CategoryID] {
			s.take(t)
		}
	}
	for _, t := range candidates {
		if s.full() {
			return
		}
		s.take(t)
	}
}

func snapshot(t *models.Task) models.Mission {
	var category *string
	if t.CategoryID != nil {
		c := *t.CategoryID
		category = &c
	}
	return models.Mission{
		TaskID:     t.ID,
		Title:      t.Title,
		CategoryID: category,
		Priority:   t.Priority,
		Difficulty: t.Difficulty,
		Points:     MissionPoints(t),
	}
}

// sortCandidates orders by ascending priority, then descending difficulty, then id
func sortCandidates(tasks []*models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.Difficulty != b.Difficulty {
			return a.Difficulty > b.Difficulty
		}
		return a.ID.String() < b.ID.String()
	})
}
