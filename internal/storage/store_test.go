package storage

import (
	"context"
	"os"
	"testing"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, CollectionTasks, "missing"); err != nil || ok {
		t.Fatalf("Expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := SetJSON(ctx, s, CollectionTasks, "a", record{Name: "a", Count: 1}); err != nil {
		t.Fatalf("SetJSON() error = %v", err)
	}
	if err := SetJSON(ctx, s, CollectionTasks, "b", record{Name: "b", Count: 2}); err != nil {
		t.Fatalf("SetJSON() error = %v", err)
	}
	if err := SetJSON(ctx, s, CollectionProfile, SingletonKey, record{Name: "p"}); err != nil {
		t.Fatalf("SetJSON() error = %v", err)
	}

	var got record
	ok, err := GetJSON(ctx, s, CollectionTasks, "b", &got)
	if err != nil || !ok {
		t.Fatalf("GetJSON() ok=%v err=%v", ok, err)
	}
	if got.Name != "b" || got.Count != 2 {
		t.Errorf("Expected record b, got %+v", got)
	}

	all, err := s.List(ctx, CollectionTasks)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 records, got %d", len(all))
	}

	if err := s.Delete(ctx, CollectionTasks, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := s.Get(ctx, CollectionTasks, "a"); ok {
		t.Errorf("Expected a to be deleted")
	}

	if err := s.Clear(ctx, CollectionTasks); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	all, _ = s.List(ctx, CollectionTasks)
	if len(all) != 0 {
		t.Errorf("Expected empty collection after clear, got %d", len(all))
	}

	// clearing one collection leaves the others
	if _, ok, _ := s.Get(ctx, CollectionProfile, SingletonKey); !ok {
		t.Errorf("Expected profile to survive clearing tasks")
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte(`{"name":"x"}`)
	if err := s.Set(ctx, CollectionTasks, "x", buf); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	buf[0] = 'X'

	got, _, _ := s.Get(ctx, CollectionTasks, "x")
	if got[0] != '{' {
		t.Errorf("Expected stored value to be independent of caller buffer")
	}
}

func TestRedisStore(t *testing.T) {
	redisURL := os.Getenv("QUESTLOG_TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("QUESTLOG_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("NewRedisClient() error = %v", err)
	}
	s := NewRedisStore(client, "questlog-test")
	defer func() {
		for _, c := range Collections {
			_ = s.Clear(ctx, c)
		}
		_ = s.Close()
	}()

	exerciseStore(t, s)
}

func TestParseCollection(t *testing.T) {
	t.Parallel()

	if c, err := ParseCollection("daily_missions"); err != nil || c != CollectionDailyMissions {
		t.Errorf("Expected daily_missions, got %q err=%v", c, err)
	}
	if _, err := ParseCollection("users"); err == nil {
		t.Errorf("Expected error for unknown collection")
	}
}
