package gamification

import "github.com/benvon/questlog/internal/models"

type bracket struct {
	min     int
	divisor int
}

// experience brackets, ascending by lower bound
var experienceBrackets = []bracket{
	{min: 0, divisor: 100},
	{min: 1000, divisor: 150},
	{min: 10000, divisor: 200},
	{min: 50000, divisor: 250},
}

// Level maps cumulative experience to a level >= 1 via floor(sqrt(e / divisor)).
// Crossing into a bracket with a larger divisor never lowers the level: each
// bracket is floored at the highest level reachable in the one before it.
func Level(experience int) int {
	if experience < 0 {
		experience = 0
	}
	i := bracketIndex(experience)
	lvl := isqrt(experience / experienceBrackets[i].divisor)
	if i > 0 {
		if floor := Level(experienceBrackets[i].min - 1); lvl < floor {
			lvl = floor
		}
	}
	if lvl < 1 {
		lvl = 1
	}
	return lvl
}

// NextLevelThreshold returns divisor * (level+1)^2 with the divisor chosen by level
func NextLevelThreshold(level int) int {
	var divisor int
	switch {
	case level < 10:
		divisor = 100
	case level < 25:
		divisor = 150
	case level < 50:
		divisor = 200
	default:
		divisor = 250
	}
	next := level + 1
	return divisor * next * next
}

// LevelProgressPercent interpolates the profile's experience between the
// threshold of its current level and the next one. Bracket floors can hold a
// level past its nominal threshold, so the result stays at 99 until Level
// itself increases.
func LevelProgressPercent(p *models.Profile) int {
	lvl := Level(p.TotalExperience)
	lower := 0
	if lvl > 1 {
		lower = NextLevelThreshold(lvl - 1)
	}
	upper := NextLevelThreshold(lvl)
	if upper <= lower {
		return 99
	}
	pct := (p.TotalExperience - lower) * 100 / (upper - lower)
	switch {
	case pct < 0:
		return 0
	case pct > 99:
		return 99
	}
	return pct
}

func bracketIndex(experience int) int {
	idx := 0
	for i, b := range experienceBrackets {
		if experience >= b.min {
			idx = i
		}
	}
	return idx
}

// isqrt returns floor(sqrt(n)) for n >= 0
func isqrt(n int) int {
	if n < 2 {
		return n
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
