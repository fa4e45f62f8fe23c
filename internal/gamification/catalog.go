package gamification

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/benvon/questlog/internal/apperr"
	"github.com/benvon/questlog/internal/models"
)

//go:embed catalog/achievements.yaml
var achievementsYAML []byte

//go:embed catalog/themes.yaml
var themesYAML []byte

// TitleThreshold assigns a title to every level at or above Level
type TitleThreshold struct {
	Level int    `json:"level" yaml:"level"`
	Title string `json:"title" yaml:"title"`
}

// Theme is a named, ascending list of title thresholds
type Theme struct {
	Name   string           `json:"name" yaml:"name"`
	Titles []TitleThreshold `json:"titles" yaml:"titles"`
}

// Title returns the highest title whose level is <= level, or "" when none applies
func (t Theme) Title(level int) string {
	title := ""
	for _, th := range t.Titles {
		if th.Level > level {
			break
		}
		title = th.Title
	}
	return title
}

// Catalog is the static, read-only set of achievements and title themes
type Catalog struct {
	Achievements []models.Achievement
	themes       map[string]Theme
	themeOrder   []string
	defaultTheme string
}

type achievementsFile struct {
	Achievements []models.Achievement `yaml:"achievements"`
}

type themesFile struct {
	Default string  `yaml:"default"`
	Themes  []Theme `yaml:"themes"`
}

// LoadCatalog parses the embedded catalogs
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(achievementsYAML, themesYAML)
}

// ParseCatalog parses and validates achievement and theme YAML documents
func ParseCatalog(achievementsDoc, themesDoc []byte) (*Catalog, error) {
	var af achievementsFile
	if err := yaml.Unmarshal(achievementsDoc, &af); err != nil {
		return nil, fmt.Errorf("failed to parse achievement catalog: %w", err)
	}
	var tf themesFile
	if err := yaml.Unmarshal(themesDoc, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse theme catalog: %w", err)
	}

	seen := make(map[string]bool, len(af.Achievements))
	for _, a := range af.Achievements {
		if a.ID == "" {
			return nil, apperr.Computation("achievement without id")
		}
		if seen[a.ID] {
			return nil, apperr.Computation("duplicate achievement id %q", a.ID)
		}
		seen[a.ID] = true
		if err := validateCriteria(a); err != nil {
			return nil, err
		}
	}

	c := &Catalog{
		Achievements: af.Achievements,
		themes:       make(map[string]Theme, len(tf.Themes)),
		defaultTheme: tf.Default,
	}
	for _, th := range tf.Themes {
		if th.Name == "" || len(th.Titles) == 0 {
			return nil, apperr.Computation("theme %q has no titles", th.Name)
		}
		sort.SliceStable(th.Titles, func(i, j int) bool { return th.Titles[i].Level < th.Titles[j].Level })
		c.themes[th.Name] = th
		c.themeOrder = append(c.themeOrder, th.Name)
	}
	if _, ok := c.themes[c.defaultTheme]; !ok {
		return nil, apperr.Computation("default theme %q is not defined", c.defaultTheme)
	}
	return c, nil
}

func validateCriteria(a models.Achievement) error {
	cr := a.Criteria
	if cr.Target <= 0 {
		return apperr.Computation("achievement %q: target must be positive", a.ID)
	}
	if a.Reward < 0 {
		return apperr.Computation("achievement %q: reward must not be negative", a.ID)
	}
	switch cr.Type {
	case models.CriteriaTaskCount, models.CriteriaStreakDays:
	case models.CriteriaTaskCountPriority:
		if cr.PriorityMax < models.MinRank || cr.PriorityMax > models.MaxRank {
			return apperr.Computation("achievement %q: priority_max %d out of range", a.ID, cr.PriorityMax)
		}
	case models.CriteriaTaskCountDifficulty:
		if cr.DifficultyMin < models.MinRank || cr.DifficultyMin > models.MaxRank {
			return apperr.Computation("achievement %q: difficulty_min %d out of range", a.ID, cr.DifficultyMin)
		}
	default:
		return apperr.Computation("achievement %q: unknown criteria type %q", a.ID, cr.Type)
	}
	return nil
}

// Achievement looks up a catalog entry by id
func (c *Catalog) Achievement(id string) (models.Achievement, error) {
	for _, a := range c.Achievements {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Achievement{}, apperr.NotFound("achievement", id)
}

// Theme returns the named theme, falling back to the default for an empty name
func (c *Catalog) Theme(name string) (Theme, error) {
	if name == "" {
		name = c.defaultTheme
	}
	th, ok := c.themes[name]
	if !ok {
		return Theme{}, apperr.NotFound("theme", name)
	}
	return th, nil
}

// Themes lists themes in catalog order
func (c *Catalog) Themes() []Theme {
	out := make([]Theme, 0, len(c.themeOrder))
	for _, name := range c.themeOrder {
		out = append(out, c.themes[name])
	}
	return out
}

// DefaultTheme returns the name of the fallback theme
func (c *Catalog) DefaultTheme() string {
	return c.defaultTheme
}

// TitleFor resolves the title for level in the named theme
func (c *Catalog) TitleFor(theme string, level int) (string, error) {
	th, err := c.Theme(theme)
	if err != nil {
		return "", err
	}
	return th.Title(level), nil
}
