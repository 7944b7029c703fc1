// Package badges implements the badge progress, streak, XP and mission engine.
package badges

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/limitless/internal/constants"
	"github.com/julianstephens/limitless/internal/logger"
	"github.com/julianstephens/limitless/internal/votes"
)

//go:embed data/*.json
var defaultData embed.FS

// Exercise is one XP-earning action of a badge.
type Exercise struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	XP   int    `json:"xp"`
}

type Badge struct {
	Slug              string         `json:"slug"`
	Name              string         `json:"name"`
	Emoji             string         `json:"emoji"`
	IdentityStatement string         `json:"identityStatement"`
	Category          votes.Category `json:"category"`
	Exercises         []Exercise     `json:"exercises"`
}

// MissionTemplate is a mission that can be assigned to a badge.
type MissionTemplate struct {
	ID              string `json:"id"`
	BadgeSlug       string `json:"badgeSlug"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	SuccessCriteria string `json:"successCriteria"`
	RewardXP        int    `json:"rewardXp"`
	FailXP          int    `json:"failXp"`
	MinTier         int    `json:"minTier"`
}

// Catalog is the static badge and mission reference data.
type Catalog struct {
	Badges   []Badge           `json:"badges"`
	Missions []MissionTemplate `json:"missions"`
}

// LoadCatalog reads badges.json and missions.json from dataDir, falling back
// to the built-in defaults for any file that is absent.
func LoadCatalog(dataDir string) (*Catalog, error) {
	var c Catalog

	badgeData, err := readCatalogFile(dataDir, constants.BadgesFileName)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(badgeData, &c); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", constants.BadgesFileName, err)
	}

	missionData, err := readCatalogFile(dataDir, constants.MissionsFileName)
	if err != nil {
		return nil, err
	}
	var missions struct {
		Missions []MissionTemplate `json:"missions"`
	}
	if err := json.Unmarshal(missionData, &missions); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", constants.MissionsFileName, err)
	}
	c.Missions = missions.Missions

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := LoadCatalog("")
	if err != nil {
		panic(fmt.Sprintf("built-in badge catalog is invalid: %v", err))
	}
	return c
}

func readCatalogFile(dataDir, name string) ([]byte, error) {
	if dataDir != "" {
		path := filepath.Join(dataDir, name)
		data, err := os.ReadFile(path)
		if err == nil {
			logger.Debug("Using catalog override", "path", path)
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}
	return defaultData.ReadFile("data/" + name)
}

// Validate checks identifiers are unique and every reference resolves.
func (c *Catalog) Validate() error {
	if len(c.Badges) == 0 {
		return fmt.Errorf("catalog has no badges")
	}

	slugs := map[string]bool{}
	for _, b := range c.Badges {
		if b.Slug == "" {
			return fmt.Errorf("badge %q has no slug", b.Name)
		}
		if slugs[b.Slug] {
			return fmt.Errorf("duplicate badge slug %q", b.Slug)
		}
		slugs[b.Slug] = true
		if !b.Category.Valid() {
			return fmt.Errorf("badge %q has unknown category %q", b.Slug, b.Category)
		}

		exercises := map[string]bool{}
		for _, e := range b.Exercises {
			if e.ID == "" || exercises[e.ID] {
				return fmt.Errorf("badge %q has a missing or duplicate exercise id %q", b.Slug, e.ID)
			}
			exercises[e.ID] = true
			if e.XP < 0 {
				return fmt.Errorf("exercise %s/%s has negative xp", b.Slug, e.ID)
			}
		}
	}

	missions := map[string]bool{}
	for _, m := range c.Missions {
		if m.ID == "" || missions[m.ID] {
			return fmt.Errorf("missing or duplicate mission id %q", m.ID)
		}
		missions[m.ID] = true
		if !slugs[m.BadgeSlug] {
			return fmt.Errorf("mission %q references unknown badge %q", m.ID, m.BadgeSlug)
		}
		if m.MinTier < 1 {
			return fmt.Errorf("mission %q has minTier below 1", m.ID)
		}
		if m.RewardXP < 0 {
			return fmt.Errorf("mission %q has negative rewardXp", m.ID)
		}
	}
	return nil
}

// Badge returns the badge with slug.
func (c *Catalog) Badge(slug string) (*Badge, bool) {
	for i := range c.Badges {
		if c.Badges[i].Slug == slug {
			return &c.Badges[i], true
		}
	}
	return nil, false
}

// Exercise returns exercise id of badge slug.
func (c *Catalog) Exercise(slug, id string) (*Badge, *Exercise, bool) {
	b, ok := c.Badge(slug)
	if !ok {
		return nil, nil, false
	}
	for i := range b.Exercises {
		if b.Exercises[i].ID == id {
			return b, &b.Exercises[i], true
		}
	}
	return b, nil, false
}

// Eligible returns the missions of slug available at tier.
func (c *Catalog) Eligible(slug string, tier int) []MissionTemplate {
	var out []MissionTemplate
	for _, m := range c.Missions {
		if m.BadgeSlug == slug && m.MinTier <= tier {
			out = append(out, m)
		}
	}
	return out
}

// Slugs returns every badge slug in catalog order.
func (c *Catalog) Slugs() []string {
	out := make([]string, 0, len(c.Badges))
	for _, b := range c.Badges {
		out = append(out, b.Slug)
	}
	return out
}
