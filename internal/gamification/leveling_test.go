package gamification

import (
	"testing"

	"github.com/benvon/questlog/internal/models"
)

func TestLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		experience int
		want       int
	}{
		{0, 1},
		{99, 1},
		{100, 1},
		{400, 2},
		{900, 3},
		{999, 3},
		{1000, 3},
		{2400, 4},
		{9999, 8},
		{10000, 8},
		{12800, 8},
		{20000, 10},
		{49999, 15},
		{50000, 15},
		{62500, 15},
		{64000, 16},
		{250000, 31},
	}

	for _, tt := range tests {
		if got := Level(tt.experience); got != tt.want {
			t.Errorf("Level(%d) = %d, want %d", tt.experience, got, tt.want)
		}
	}
}

func TestLevel_Monotonic(t *testing.T) {
	t.Parallel()

	prev := Level(0)
	for e := 1; e <= 120000; e++ {
		lvl := Level(e)
		if lvl < prev {
			t.Fatalf("Level(%d) = %d dropped below Level(%d) = %d", e, lvl, e-1, prev)
		}
		prev = lvl
	}
}

func TestNextLevelThreshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level int
		want  int
	}{
		{1, 400},
		{3, 1600},
		{9, 10000},
		{10, 18150},
		{24, 93750},
		{25, 135200},
		{50, 650250},
	}

	for _, tt := range tests {
		if got := NextLevelThreshold(tt.level); got != tt.want {
			t.Errorf("NextLevelThreshold(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestLevelProgressPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		experience int
		want       int
	}{
		{0, 0},
		{200, 50},
		{400, 0},
		{900, 0},
		{1250, 50},
		{1600, 99},
		{1700, 99},
		{2399, 99},
	}

	for _, tt := range tests {
		p := models.NewProfile()
		p.TotalExperience = tt.experience
		got := LevelProgressPercent(p)
		if got != tt.want {
			t.Errorf("LevelProgressPercent(%d) = %d, want %d", tt.experience, got, tt.want)
		}
		if got < 0 || got > 99 {
			t.Errorf("LevelProgressPercent(%d) out of range: %d", tt.experience, got)
		}
	}
}

func TestLevelProgressPercent_ResetsOnLevelUp(t *testing.T) {
	t.Parallel()

	p := models.NewProfile()
	prevLevel, prevPct := 1, 0
	for e := 0; e <= 12000; e += 10 {
		p.TotalExperience = e
		lvl, pct := Level(e), LevelProgressPercent(p)
		if pct > 99 {
			t.Fatalf("LevelProgressPercent(%d) = %d, want at most 99 before the next level", e, pct)
		}
		if lvl == prevLevel && pct < prevPct {
			t.Fatalf("LevelProgressPercent(%d) = %d decreased within level %d", e, pct, lvl)
		}
		prevLevel, prevPct = lvl, pct
	}
}
