package models

import "github.com/google/uuid"

// DailyMissionBonus is awarded once when every mission of a day is completed
const DailyMissionBonus = 50

// Mission is a snapshot of a task selected for a day's mission set
type Mission struct {
	TaskID     uuid.UUID `json:"task_id"`
	Title      string    `json:"title"`
	CategoryID *string   `json:"category_id,omitempty"`
	Priority   int       `json:"priority"`
	Difficulty int       `json:"difficulty"`
	Points     int       `json:"points"`
	Completed  bool      `json:"completed"`
}

// MissionSet is the set of missions for one calendar day
type MissionSet struct {
	Date         Date      `json:"date"`
	Missions     []Mission `json:"missions"`
	Bonus        int       `json:"bonus"`
	BonusAwarded bool      `json:"bonus_awarded"`
	SyncVersion  int64     `json:"sync_version"`
}

// Contains reports whether the task is one of the set's missions
func (s *MissionSet) Contains(taskID uuid.UUID) bool {
	return s.index(taskID) >= 0
}

// MarkCompleted flags the mission for taskID; it returns false when the task is not in the set
func (s *MissionSet) MarkCompleted(taskID uuid.UUID) bool {
	i := s.index(taskID)
	if i < 0 {
		return false
	}
	s.Missions[i].Completed = true
	return true
}

// AllCompleted reports whether the set is non-empty and every mission is done
func (s *MissionSet) AllCompleted() bool {
	if len(s.Missions) == 0 {
		return false
	}
	for _, m := range s.Missions {
		if !m.Completed {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the set
func (s *MissionSet) Clone() *MissionSet {
	if s == nil {
		return nil
	}
	c := *s
	c.Missions = make([]Mission, len(s.Missions))
	for i, m := range s.Missions {
		m.CategoryID = cloneString(m.CategoryID)
		c.Missions[i] = m
	}
	return &c
}

func (s *MissionSet) index(taskID uuid.UUID) int {
	for i := range s.Missions {
		if s.Missions[i].TaskID == taskID {
			return i
		}
	}
	return -1
}
