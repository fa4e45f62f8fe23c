// Package lifecycle owns the task collection and the profile and applies every
// mutation to them, running the gamification pipeline on task completion.
package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benvon/questlog/internal/apperr"
	"github.com/benvon/questlog/internal/gamification"
	"github.com/benvon/questlog/internal/models"
	"github.com/benvon/questlog/internal/notify"
	"github.com/benvon/questlog/internal/remotesync"
	"github.com/benvon/questlog/internal/storage"
)

// Options carries the optional collaborators of a Manager
type Options struct {
	Sink     notify.Sink
	Trigger  remotesync.Trigger
	Logger   *zap.Logger
	Location *time.Location
	Now      func() time.Time
	// Preferences used until a stored record exists
	DefaultPreferences models.Preferences
}

// Manager serializes all operations on the owned state. State is only replaced
// after persistence succeeded, so a failed operation leaves it untouched.
type Manager struct {
	mu sync.Mutex

	store     storage.Store
	catalog   *gamification.Catalog
	evaluator *gamification.Evaluator
	sink      notify.Sink
	trigger   remotesync.Trigger
	logger    *zap.Logger
	loc       *time.Location
	now       func() time.Time

	tasks      map[uuid.UUID]*models.Task
	categories map[string]*models.Category
	profile    *models.Profile
	missions   *models.MissionSet
	prefs      models.Preferences

	prefsHook func(models.Preferences)
}

// New creates a Manager with empty state; call Load to hydrate it from the store
func New(store storage.Store, catalog *gamification.Catalog, opts Options) *Manager {
	m := &Manager{
		store:      store,
		catalog:    catalog,
		evaluator:  gamification.NewEvaluator(catalog.Achievements),
		sink:       opts.Sink,
		trigger:    opts.Trigger,
		logger:     opts.Logger,
		loc:        opts.Location,
		now:        opts.Now,
		tasks:      make(map[uuid.UUID]*models.Task),
		categories: make(map[string]*models.Category),
		profile:    models.NewProfile(),
		prefs:      opts.DefaultPreferences,
	}
	if m.sink == nil {
		m.sink = notify.Noop{}
	}
	if m.trigger == nil {
		m.trigger = remotesync.NoopTrigger{}
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.loc == nil {
		m.loc = time.Local
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Load replaces the owned state with the stored collections. A missing
// profile is created and persisted.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make(map[uuid.UUID]*models.Task)
	raw, err := m.store.List(ctx, storage.CollectionTasks)
	if err != nil {
		return apperr.Persistence("list", string(storage.CollectionTasks), err)
	}
	for key, b := range raw {
		var t models.Task
		if err := json.Unmarshal(b, &t); err != nil {
			return fmt.Errorf("failed to decode task %s: %w", key, err)
		}
		tasks[t.ID] = &t
	}

	categories := make(map[string]*models.Category)
	raw, err = m.store.List(ctx, storage.CollectionCategories)
	if err != nil {
		return apperr.Persistence("list", string(storage.CollectionCategories), err)
	}
	for key, b := range raw {
		var c models.Category
		if err := json.Unmarshal(b, &c); err != nil {
			return fmt.Errorf("failed to decode category %s: %w", key, err)
		}
		categories[c.ID] = &c
	}

	profile := models.NewProfile()
	found, err := storage.GetJSON(ctx, m.store, storage.CollectionProfile, storage.SingletonKey, profile)
	if err != nil {
		return apperr.Persistence("get", string(storage.CollectionProfile), err)
	}
	if profile.TasksCompletedByPriority == nil {
		profile.TasksCompletedByPriority = make(map[int]int)
	}
	if profile.TasksCompletedByDiff == nil {
		profile.TasksCompletedByDiff = make(map[int]int)
	}
	if profile.UnlockedAchievements == nil {
		profile.UnlockedAchievements = []string{}
	}
	profile.Level = gamification.Level(profile.TotalExperience)
	if !found {
		if err := storage.SetJSON(ctx, m.store, storage.CollectionProfile, storage.SingletonKey, profile); err != nil {
			return apperr.Persistence("set", string(storage.CollectionProfile), err)
		}
		m.logger.Info("profile_created")
	}

	var missions *models.MissionSet
	var set models.MissionSet
	ok, err := storage.GetJSON(ctx, m.store, storage.CollectionDailyMissions, storage.SingletonKey, &set)
	if err != nil {
		return apperr.Persistence("get", string(storage.CollectionDailyMissions), err)
	}
	if ok {
		missions = &set
	}

	prefs := m.prefs
	if _, err := storage.GetJSON(ctx, m.store, storage.CollectionPreferences, storage.SingletonKey, &prefs); err != nil {
		return apperr.Persistence("get", string(storage.CollectionPreferences), err)
	}

	m.tasks = tasks
	m.categories = categories
	m.profile = profile
	m.missions = missions
	m.prefs = prefs

	m.logger.Info("state_loaded",
		zap.Int("tasks", len(tasks)),
		zap.Int("categories", len(categories)),
		zap.Int("level", profile.Level),
	)
	return nil
}

// TaskFilter narrows List; zero values match everything
type TaskFilter struct {
	Status     *models.TaskStatus
	CategoryID *string
}

// Get returns a copy of the task
func (m *Manager) Get(id uuid.UUID) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, apperr.NotFound("task", id.String())
	}
	return t.Clone(), nil
}

// List returns copies of matching tasks ordered by creation time
func (m *Manager) List(f TaskFilter) []*models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		if f.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *f.CategoryID) {
			continue
		}
		out = append(out, t.Clone())
	}
	sortTasks(out)
	return out
}

// Profile returns a copy of the profile
func (m *Manager) Profile() *models.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile.Clone()
}

// ProfileView is the profile with its derived leveling figures
type ProfileView struct {
	*models.Profile
	LevelProgressPercent int    `json:"level_progress_percent"`
	NextLevelThreshold   int    `json:"next_level_threshold"`
	Title                string `json:"title"`
	Theme                string `json:"theme"`
}

// ProfileView resolves the title in theme, or in the preferred theme when empty
func (m *Manager) ProfileView(theme string) (*ProfileView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if theme == "" {
		theme = m.prefs.TitleTheme
	}
	if theme == "" {
		theme = m.catalog.DefaultTheme()
	}
	p := m.profile.Clone()
	title, err := m.catalog.TitleFor(theme, p.Level)
	if err != nil {
		return nil, err
	}
	return &ProfileView{
		Profile:              p,
		LevelProgressPercent: gamification.LevelProgressPercent(p),
		NextLevelThreshold:   gamification.NextLevelThreshold(p.Level),
		Title:                title,
		Theme:                theme,
	}, nil
}

// Achievements lists the catalog with the profile's unlock state
func (m *Manager) Achievements() []models.AchievementWithStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evaluator.Statuses(m.profile)
}

// Achievement returns one catalog entry with the profile's unlock state
func (m *Manager) Achievement(id string) (models.AchievementWithStatus, error) {
	a, err := m.catalog.Achievement(id)
	if err != nil {
		return models.AchievementWithStatus{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.AchievementWithStatus{Achievement: a, Unlocked: m.profile.HasAchievement(a.ID)}, nil
}

// StreakStatus is the read-only view used by the streak reminder
type StreakStatus struct {
	CurrentStreakDays int
	Alive             bool
	CompletedToday    bool
}

// StreakStatus reports whether the streak can still be extended today
func (m *Manager) StreakStatus() StreakStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	today := models.DateIn(m.now(), m.loc)
	return StreakStatus{
		CurrentStreakDays: m.profile.CurrentStreakDays,
		Alive:             gamification.StreakAlive(m.profile, today),
		CompletedToday:    m.profile.LastTaskDate != nil && m.profile.LastTaskDate.Equal(today),
	}
}

func (m *Manager) today() models.Date {
	return models.DateIn(m.now(), m.loc)
}

func sortTasks(tasks []*models.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID.String() < tasks[j].ID.String()
	})
}
