package gamification

import (
	"testing"

	"github.com/benvon/questlog/internal/apperr"
)

func TestLoadCatalog(t *testing.T) {
	t.Parallel()

	c, err := LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(c.Achievements) == 0 {
		t.Fatalf("Expected embedded achievements")
	}

	a, err := c.Achievement("complete_10_p1_tasks")
	if err != nil {
		t.Fatalf("Expected complete_10_p1_tasks in catalog: %v", err)
	}
	if a.Criteria.PriorityMax != 1 || a.Criteria.Target != 10 {
		t.Errorf("Unexpected criteria: %+v", a.Criteria)
	}

	if _, err := c.Achievement("missing"); !apperr.IsNotFound(err) {
		t.Errorf("Expected NotFound, got %v", err)
	}

	if c.DefaultTheme() != "adventurer" {
		t.Errorf("Expected default theme adventurer, got %s", c.DefaultTheme())
	}
	if len(c.Themes()) < 2 {
		t.Errorf("Expected several themes, got %d", len(c.Themes()))
	}
}

func TestParseCatalog_Invalid(t *testing.T) {
	t.Parallel()

	themes := []byte("default: a\nthemes:\n  - name: a\n    titles:\n      - {level: 1, title: One}\n")

	tests := []struct {
		name string
		doc  string
	}{
		{"unknown criteria", "achievements:\n  - {id: x, criteria: {type: level_reached, target: 1}}\n"},
		{"zero target", "achievements:\n  - {id: x, criteria: {type: task_count, target: 0}}\n"},
		{"duplicate id", "achievements:\n  - {id: x, criteria: {type: task_count, target: 1}}\n  - {id: x, criteria: {type: task_count, target: 2}}\n"},
		{"priority out of range", "achievements:\n  - {id: x, criteria: {type: task_count_priority, target: 1, priority_max: 9}}\n"},
		{"missing id", "achievements:\n  - {criteria: {type: task_count, target: 1}}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseCatalog([]byte(tt.doc), themes)
			if !apperr.IsComputation(err) {
				t.Errorf("Expected computation error, got %v", err)
			}
		})
	}
}

func TestParseCatalog_UnknownDefaultTheme(t *testing.T) {
	t.Parallel()

	themes := []byte("default: missing\nthemes:\n  - name: a\n    titles:\n      - {level: 1, title: One}\n")
	if _, err := ParseCatalog([]byte("achievements: []\n"), themes); !apperr.IsComputation(err) {
		t.Errorf("Expected computation error, got %v", err)
	}
}

func TestTheme_Title(t *testing.T) {
	t.Parallel()

	themes := []byte("default: a\nthemes:\n  - name: a\n    titles:\n      - {level: 5, title: Five}\n      - {level: 1, title: One}\n      - {level: 10, title: Ten}\n")
	c, err := ParseCatalog([]byte("achievements: []\n"), themes)
	if err != nil {
		t.Fatalf("ParseCatalog() error = %v", err)
	}

	tests := []struct {
		level int
		want  string
	}{
		{1, "One"},
		{4, "One"},
		{5, "Five"},
		{9, "Five"},
		{10, "Ten"},
		{99, "Ten"},
	}

	for _, tt := range tests {
		got, err := c.TitleFor("", tt.level)
		if err != nil {
			t.Fatalf("TitleFor() error = %v", err)
		}
		if got != tt.want {
			t.Errorf("TitleFor(%d) = %q, want %q", tt.level, got, tt.want)
		}
	}

	if _, err := c.TitleFor("nope", 1); !apperr.IsNotFound(err) {
		t.Errorf("Expected NotFound for unknown theme, got %v", err)
	}
}
