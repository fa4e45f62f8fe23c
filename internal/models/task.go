package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "not_started"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// ProgressType represents how progress on a task is tracked
type ProgressType string

const (
	ProgressTypeBoolean     ProgressType = "boolean"
	ProgressTypeIncremental ProgressType = "incremental"
)

// RecurrenceType represents the cadence of a recurring task
type RecurrenceType string

const (
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceCustom  RecurrenceType = "custom"
)

const (
	// DefaultEstimatedMinutes is used when a task is created without an estimate
	DefaultEstimatedMinutes = 30
	// MaxEstimatedMinutes bounds estimates at one week
	MaxEstimatedMinutes = 7 * 24 * 60
	// MinRank and MaxRank bound priority and difficulty
	MinRank = 1
	MaxRank = 5
	// DefaultRank is used when priority or difficulty is omitted
	DefaultRank = 3
)

// RecurrencePattern describes how a completed recurring task regenerates
type RecurrencePattern struct {
	Type                RecurrenceType `json:"type" validate:"recurrence_type"`
	Interval            int            `json:"interval" validate:"gte=0"`
	EndDate             *Date          `json:"end_date,omitempty"`
	EndAfterOccurrences *int           `json:"end_after_occurrences,omitempty" validate:"omitempty,min=1"`
}

// Task represents a tracked task
type Task struct {
	ID                 uuid.UUID          `json:"id"`
	Title              string             `json:"title"`
	CategoryID         *string            `json:"category_id,omitempty"`
	SubcategoryID      *string            `json:"subcategory_id,omitempty"`
	Priority           int                `json:"priority"`
	Difficulty         int                `json:"difficulty"`
	EstimatedMinutes   float64            `json:"estimated_minutes"`
	DueDate            *Date              `json:"due_date,omitempty"`
	DueTime            *TimeOfDay         `json:"due_time,omitempty"`
	Status             TaskStatus         `json:"status"`
	ProgressType       ProgressType       `json:"progress_type"`
	ProgressPercentage int                `json:"progress_percentage"`
	IsRecurring        bool               `json:"is_recurring"`
	RecurrencePattern  *RecurrencePattern `json:"recurrence_pattern,omitempty"`
	Occurrence         int                `json:"occurrence"`
	LastCompletedDate  *Date              `json:"last_completed_date,omitempty"`
	PointsValue        int                `json:"points_value"`
	SyncVersion        int64              `json:"sync_version"`
	CreatedAt          time.Time          `json:"created_at"`
	ModifiedAt         time.Time          `json:"modified_at"`
	CompletedAt        *time.Time         `json:"completed_at,omitempty"`
}

// IsCompleted reports whether the task reached its terminal state
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// Clone returns a deep copy so callers never share pointers with owned state
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.CategoryID = cloneString(t.CategoryID)
	c.SubcategoryID = cloneString(t.SubcategoryID)
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.DueTime != nil {
		tod := *t.DueTime
		c.DueTime = &tod
	}
	if t.LastCompletedDate != nil {
		d := *t.LastCompletedDate
		c.LastCompletedDate = &d
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	if t.RecurrencePattern != nil {
		p := *t.RecurrencePattern
		if p.EndDate != nil {
			d := *p.EndDate
			p.EndDate = &d
		}
		if p.EndAfterOccurrences != nil {
			n := *p.EndAfterOccurrences
			p.EndAfterOccurrences = &n
		}
		c.RecurrencePattern = &p
	}
	return &c
}

// Category groups tasks; references to it are not enforced
type Category struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
