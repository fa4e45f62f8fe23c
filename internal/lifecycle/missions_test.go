package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/benvon/questlog/internal/gamification"
	"github.com/benvon/questlog/internal/models"
	"github.com/benvon/questlog/internal/storage"
)

func TestTodayMissions_GeneratesOncePerDay(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	for _, c := range []string{"work", "home", "health"} {
		f.create(t, CreateTaskInput{Title: "task " + c, CategoryID: strPtr(c)})
	}
	f.create(t, CreateTaskInput{Title: "uncategorized"})

	set, err := f.m.TodayMissions(ctx)
	if err != nil {
		t.Fatalf("TodayMissions() error = %v", err)
	}
	if !set.Date.Equal(models.NewDate(2024, 3, 1)) {
		t.Errorf("Expected mission date 2024-03-01, got %s", set.Date)
	}
	if len(set.Missions) != 3 {
		t.Fatalf("Expected 3 missions, got %d", len(set.Missions))
	}
	for _, ms := range set.Missions {
		if ms.CategoryID == nil {
			t.Errorf("Expected only categorized tasks, got %s", ms.Title)
		}
	}

	again, err := f.m.TodayMissions(ctx)
	if err != nil {
		t.Fatalf("TodayMissions() error = %v", err)
	}
	if again.SyncVersion != set.SyncVersion || again.Missions[0].TaskID != set.Missions[0].TaskID {
		t.Errorf("Expected the same set on the same day")
	}

	f.clock.Set(f.clock.Now().Add(24 * time.Hour))
	next, err := f.m.TodayMissions(ctx)
	if err != nil {
		t.Fatalf("TodayMissions() error = %v", err)
	}
	if !next.Date.Equal(models.NewDate(2024, 3, 2)) {
		t.Errorf("Expected regenerated set for 2024-03-02, got %s", next.Date)
	}
	if next.SyncVersion != set.SyncVersion+1 {
		t.Errorf("Expected sync_version %d, got %d", set.SyncVersion+1, next.SyncVersion)
	}

	var stored models.MissionSet
	if _, err := storage.GetJSON(ctx, f.store, storage.CollectionDailyMissions, storage.SingletonKey, &stored); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if !stored.Date.Equal(next.Date) {
		t.Errorf("Expected persisted set for %s, got %s", next.Date, stored.Date)
	}
}

func TestComplete_MissionsAndBonus(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	var tasks []*models.Task
	for _, c := range []string{"work", "home", "health"} {
		tasks = append(tasks, f.create(t, CreateTaskInput{Title: "task " + c, CategoryID: strPtr(c)}))
	}
	if _, err := f.m.TodayMissions(ctx); err != nil {
		t.Fatalf("TodayMissions() error = %v", err)
	}

	bonuses := 0
	for i, task := range tasks {
		res := f.complete(t, task.ID)
		if !res.MissionCompleted {
			t.Errorf("Expected mission %d to be marked completed", i)
		}
		if res.Multipliers.DailyMission != gamification.DailyMissionMultiplier {
			t.Errorf("Expected mission multiplier, got %v", res.Multipliers.DailyMission)
		}
		if res.PointsAwarded != 11 {
			t.Errorf("Expected 11 points, got %d", res.PointsAwarded)
		}
		if res.MissionBonusAwarded > 0 {
			bonuses++
			if i != len(tasks)-1 {
				t.Errorf("Expected bonus only after the last mission, got it at %d", i)
			}
		}
	}
	if bonuses != 1 {
		t.Fatalf("Expected bonus exactly once, got %d", bonuses)
	}

	p := f.m.Profile()
	// 3 * 11 + bonus 50 + first_task 10
	if p.TotalExperience != 93 || p.TotalPoints != 83 {
		t.Errorf("Expected experience 93 and points 83, got %d and %d", p.TotalExperience, p.TotalPoints)
	}

	set, err := f.m.TodayMissions(ctx)
	if err != nil {
		t.Fatalf("TodayMissions() error = %v", err)
	}
	if !set.BonusAwarded || !set.AllCompleted() {
		t.Errorf("Expected completed set with bonus awarded")
	}
	if f.sink.kinds("mission_bonus") != 1 {
		t.Errorf("Expected one mission bonus notification, got %d", f.sink.kinds("mission_bonus"))
	}
}

func TestComplete_StaleMissionSetIgnored(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	task := f.create(t, CreateTaskInput{Title: "yesterday", CategoryID: strPtr("work")})
	if _, err := f.m.TodayMissions(context.Background()); err != nil {
		t.Fatalf("TodayMissions() error = %v", err)
	}

	f.clock.Set(f.clock.Now().Add(24 * time.Hour))
	res := f.complete(t, task.ID)
	if res.MissionCompleted || res.Multipliers.DailyMission != 1 {
		t.Errorf("Expected no mission credit from a stale set, got %+v", res.Multipliers)
	}
}
