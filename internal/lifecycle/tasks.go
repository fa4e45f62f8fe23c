package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benvon/questlog/internal/apperr"
	"github.com/benvon/questlog/internal/gamification"
	"github.com/benvon/questlog/internal/models"
	"github.com/benvon/questlog/internal/storage"
	"github.com/benvon/questlog/internal/validation"
)

// CreateTaskInput holds the fields accepted on creation
type CreateTaskInput struct {
	Title             string                    `json:"title" validate:"required,max=500"`
	CategoryID        *string                   `json:"category_id,omitempty"`
	SubcategoryID     *string                   `json:"subcategory_id,omitempty"`
	Priority          *int                      `json:"priority,omitempty" validate:"omitempty,min=1,max=5"`
	Difficulty        *int                      `json:"difficulty,omitempty" validate:"omitempty,min=1,max=5"`
	EstimatedMinutes  *float64                  `json:"estimated_minutes,omitempty" validate:"omitempty,gt=0,max=10080"`
	DueDate           *models.Date              `json:"due_date,omitempty"`
	DueTime           *models.TimeOfDay         `json:"due_time,omitempty"`
	ProgressType      models.ProgressType       `json:"progress_type,omitempty" validate:"omitempty,progress_type"`
	IsRecurring       bool                      `json:"is_recurring"`
	RecurrencePattern *models.RecurrencePattern `json:"recurrence_pattern,omitempty"`
}

// UpdateTaskInput is a partial change; nil fields are left as they are.
// An empty CategoryID or SubcategoryID clears the reference.
type UpdateTaskInput struct {
	Title              *string                   `json:"title,omitempty" validate:"omitempty,max=500"`
	CategoryID         *string                   `json:"category_id,omitempty"`
	SubcategoryID      *string                   `json:"subcategory_id,omitempty"`
	Priority           *int                      `json:"priority,omitempty" validate:"omitempty,min=1,max=5"`
	Difficulty         *int                      `json:"difficulty,omitempty" validate:"omitempty,min=1,max=5"`
	EstimatedMinutes   *float64                  `json:"estimated_minutes,omitempty" validate:"omitempty,gt=0,max=10080"`
	DueDate            *models.Date              `json:"due_date,omitempty"`
	DueTime            *models.TimeOfDay         `json:"due_time,omitempty"`
	ClearDue           bool                      `json:"clear_due,omitempty"`
	Status             *models.TaskStatus        `json:"status,omitempty" validate:"omitempty,task_status"`
	ProgressType       *models.ProgressType      `json:"progress_type,omitempty" validate:"omitempty,progress_type"`
	ProgressPercentage *int                      `json:"progress_percentage,omitempty" validate:"omitempty,min=0,max=100"`
	IsRecurring        *bool                     `json:"is_recurring,omitempty"`
	RecurrencePattern  *models.RecurrencePattern `json:"recurrence_pattern,omitempty"`
}

// Create validates input and stores a new not_started task
func (m *Manager) Create(ctx context.Context, in CreateTaskInput) (*models.Task, error) {
	in.Title = validation.SanitizeText(in.Title)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := validateTimeOfDay(in.DueTime); err != nil {
		return nil, err
	}
	if in.IsRecurring && in.RecurrencePattern == nil {
		return nil, apperr.Invalid("recurrence_pattern", "required when is_recurring is true")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	t := &models.Task{
		ID:                uuid.New(),
		Title:             in.Title,
		CategoryID:        nonEmpty(in.CategoryID),
		SubcategoryID:     nonEmpty(in.SubcategoryID),
		Priority:          intOr(in.Priority, models.DefaultRank),
		Difficulty:        intOr(in.Difficulty, models.DefaultRank),
		EstimatedMinutes:  models.DefaultEstimatedMinutes,
		DueDate:           in.DueDate,
		DueTime:           in.DueTime,
		Status:            models.TaskStatusNotStarted,
		ProgressType:      in.ProgressType,
		IsRecurring:       in.IsRecurring,
		RecurrencePattern: in.RecurrencePattern,
		Occurrence:        1,
		SyncVersion:       1,
		CreatedAt:         now,
		ModifiedAt:        now,
	}
	if in.EstimatedMinutes != nil {
		t.EstimatedMinutes = *in.EstimatedMinutes
	}
	if t.ProgressType == "" {
		t.ProgressType = models.ProgressTypeBoolean
	}
	if t.RecurrencePattern != nil && t.RecurrencePattern.Interval == 0 {
		t.RecurrencePattern.Interval = 1
	}
	t.PointsValue = gamification.BasePoints(t.Priority, t.Difficulty, t.EstimatedMinutes)
	t = t.Clone()

	w, err := change(storage.CollectionTasks, t.ID.String(), t, nil)
	if err != nil {
		return nil, err
	}
	if err := m.commit(ctx, []write{w}); err != nil {
		return nil, err
	}

	m.tasks[t.ID] = t
	m.logger.Info("task_created",
		zap.String("task_id", t.ID.String()),
		zap.Int("points_value", t.PointsValue),
		zap.Bool("recurring", t.IsRecurring),
	)
	m.trigger.RequestSync(string(storage.CollectionTasks))
	return t.Clone(), nil
}

// Update merges in into the task. The first transition into completed runs
// the completion pipeline and returns its result; otherwise the result is nil.
func (m *Manager) Update(ctx context.Context, id uuid.UUID, in UpdateTaskInput) (*models.Task, *CompletionResult, error) {
	if in.Title != nil {
		title := validation.SanitizeText(*in.Title)
		if title == "" {
			return nil, nil, apperr.Invalid("title", "must not be empty")
		}
		in.Title = &title
	}
	if err := validation.Struct(in); err != nil {
		return nil, nil, err
	}
	if err := validateTimeOfDay(in.DueTime); err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.tasks[id]
	if !ok {
		return nil, nil, apperr.NotFound("task", id.String())
	}

	next := current.Clone()
	if err := applyUpdate(next, in); err != nil {
		return nil, nil, err
	}

	now := m.now()
	next.ModifiedAt = now
	next.SyncVersion = current.SyncVersion + 1

	if current.IsCompleted() || !next.IsCompleted() {
		w, err := change(storage.CollectionTasks, id.String(), next, current)
		if err != nil {
			return nil, nil, err
		}
		if err := m.commit(ctx, []write{w}); err != nil {
			return nil, nil, err
		}
		m.tasks[id] = next
		m.logger.Debug("task_updated", zap.String("task_id", id.String()), zap.Int64("sync_version", next.SyncVersion))
		m.trigger.RequestSync(string(storage.CollectionTasks))
		return next.Clone(), nil, nil
	}

	completedAt := now
	next.CompletedAt = &completedAt
	res, err := m.completeLocked(ctx, current, next)
	if err != nil {
		return nil, nil, err
	}
	return next.Clone(), res, nil
}

// Complete marks the task completed
func (m *Manager) Complete(ctx context.Context, id uuid.UUID) (*models.Task, *CompletionResult, error) {
	status := models.TaskStatusCompleted
	return m.Update(ctx, id, UpdateTaskInput{Status: &status})
}

// Delete removes the task permanently; it cascades to nothing
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.tasks[id]
	if !ok {
		return apperr.NotFound("task", id.String())
	}
	w, err := change[models.Task](storage.CollectionTasks, id.String(), nil, current)
	if err != nil {
		return err
	}
	if err := m.commit(ctx, []write{w}); err != nil {
		return err
	}

	delete(m.tasks, id)
	m.logger.Info("task_deleted", zap.String("task_id", id.String()))
	m.trigger.RequestSync(string(storage.CollectionTasks))
	return nil
}

func applyUpdate(t *models.Task, in UpdateTaskInput) error {
	if in.Status != nil && t.IsCompleted() && *in.Status != models.TaskStatusCompleted {
		return apperr.Invalid("status", "completed tasks cannot be reopened")
	}

	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.CategoryID != nil {
		t.CategoryID = nonEmpty(in.CategoryID)
	}
	if in.SubcategoryID != nil {
		t.SubcategoryID = nonEmpty(in.SubcategoryID)
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.Difficulty != nil {
		t.Difficulty = *in.Difficulty
	}
	if in.EstimatedMinutes != nil {
		t.EstimatedMinutes = *in.EstimatedMinutes
	}
	if in.ClearDue {
		t.DueDate = nil
		t.DueTime = nil
	}
	if in.DueDate != nil {
		d := *in.DueDate
		t.DueDate = &d
	}
	if in.DueTime != nil {
		tod := *in.DueTime
		t.DueTime = &tod
	}
	if in.ProgressType != nil {
		t.ProgressType = *in.ProgressType
	}
	if in.IsRecurring != nil {
		t.IsRecurring = *in.IsRecurring
	}
	if in.RecurrencePattern != nil {
		p := *in.RecurrencePattern
		if p.Interval == 0 {
			p.Interval = 1
		}
		t.RecurrencePattern = &p
	}
	if t.IsRecurring && t.RecurrencePattern == nil {
		return apperr.Invalid("recurrence_pattern", "required when is_recurring is true")
	}

	if in.ProgressPercentage != nil {
		if t.ProgressType != models.ProgressTypeIncremental {
			return apperr.Invalid("progress_percentage", "only incremental tasks track progress")
		}
		t.ProgressPercentage = *in.ProgressPercentage
		if in.Status == nil && !t.IsCompleted() {
			if t.ProgressPercentage > 0 {
				t.Status = models.TaskStatusInProgress
			} else {
				t.Status = models.TaskStatusNotStarted
			}
		}
	}

	if in.Status != nil && !t.IsCompleted() {
		t.Status = *in.Status
	}
	if t.IsCompleted() && t.ProgressType == models.ProgressTypeIncremental {
		t.ProgressPercentage = 100
	}
	return nil
}

func validateTimeOfDay(t *models.TimeOfDay) error {
	if t == nil {
		return nil
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return apperr.Invalid("due_time", "must be a valid HH:MM time")
	}
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// durationSince is used by completion logging
func durationSince(from, to time.Time) time.Duration {
	if to.Before(from) {
		return 0
	}
	return to.Sub(from)
}
