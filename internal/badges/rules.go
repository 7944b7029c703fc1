package badges

import (
	"fmt"
	"math"

	"github.com/julianstephens/limitless/internal/utils"
)

type Tier struct {
	Level      int    `json:"level" yaml:"level"`
	Name       string `json:"name" yaml:"name"`
	XPRequired int    `json:"xpRequired" yaml:"xpRequired"`
}

// StreakBonus multiplies XP once a streak reaches Days.
type StreakBonus struct {
	Days       int     `json:"daysThreshold" yaml:"daysThreshold"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// Rules holds every tunable number of the engine.
type Rules struct {
	Tiers   []Tier        `yaml:"tiers"`
	Streaks []StreakBonus `yaml:"streaks"`

	ConvictionHigh      float64 `yaml:"convictionHigh"`
	ConvictionLow       float64 `yaml:"convictionLow"`
	ConvictionBonusXP   int     `yaml:"convictionBonusXp"`
	ConvictionPenaltyXP int     `yaml:"convictionPenaltyXp"`
	BossVictoryXP       int     `yaml:"bossVictoryXp"`
	BossDefeatXP        int     `yaml:"bossDefeatXp"`
	NoActionVoteWeight  float64 `yaml:"noActionVoteWeight"`
}

func DefaultRules() Rules {
	return Rules{
		Tiers: []Tier{
			{Level: 1, Name: "Initiate", XPRequired: 0},
			{Level: 2, Name: "Apprentice", XPRequired: 750},
			{Level: 3, Name: "Practitioner", XPRequired: 3000},
			{Level: 4, Name: "Adept", XPRequired: 10000},
			{Level: 5, Name: "Master", XPRequired: 30000},
		},
		Streaks: []StreakBonus{
			{Days: 7, Multiplier: 1.25},
			{Days: 14, Multiplier: 1.5},
			{Days: 30, Multiplier: 2.0},
		},
		ConvictionHigh:      7,
		ConvictionLow:       4,
		ConvictionBonusXP:   15,
		ConvictionPenaltyXP: 10,
		BossVictoryXP:       100,
		BossDefeatXP:        25,
		NoActionVoteWeight:  0.5,
	}
}

// Validate checks that the tier table starts at zero XP with strictly
// increasing thresholds and that every tunable is usable.
func (r Rules) Validate() error {
	if len(r.Tiers) == 0 {
		return fmt.Errorf("badge rules need at least one tier")
	}
	if r.Tiers[0].XPRequired != 0 {
		return fmt.Errorf("first tier %q must require 0 xp", r.Tiers[0].Name)
	}
	for i := 1; i < len(r.Tiers); i++ {
		prev, cur := r.Tiers[i-1], r.Tiers[i]
		if cur.XPRequired <= prev.XPRequired || cur.Level <= prev.Level {
			return fmt.Errorf("tier %q must come after %q with a higher level and threshold", cur.Name, prev.Name)
		}
	}
	for _, s := range r.Streaks {
		if s.Days < 1 || s.Multiplier <= 0 {
			return fmt.Errorf("invalid streak bonus %d days x%.2f", s.Days, s.Multiplier)
		}
	}
	if r.ConvictionLow > r.ConvictionHigh {
		return fmt.Errorf("convictionLow (%.1f) exceeds convictionHigh (%.1f)", r.ConvictionLow, r.ConvictionHigh)
	}
	if r.NoActionVoteWeight <= 0 {
		return fmt.Errorf("noActionVoteWeight must be positive")
	}
	return nil
}

// TierFor returns the highest tier whose threshold xp has reached.
func (r Rules) TierFor(xp int) Tier {
	best := r.Tiers[0]
	for _, t := range r.Tiers {
		if t.XPRequired <= xp && t.Level >= best.Level {
			best = t
		}
	}
	return best
}

// Multiplier returns the XP multiplier earned by streak days.
func (r Rules) Multiplier(streak int) float64 {
	multiplier, best := 1.0, 0
	for _, s := range r.Streaks {
		if s.Days <= streak && s.Days > best {
			multiplier, best = s.Multiplier, s.Days
		}
	}
	return multiplier
}

// Progress is the persistent state of one badge.
type Progress struct {
	Tier               int    `json:"tier"`
	TierName           string `json:"tierName"`
	XP                 int    `json:"xp"`
	ExercisesCompleted int    `json:"exercisesCompleted"`
	MissionsCompleted  int    `json:"missionsCompleted"`
	MissionsFailed     int    `json:"missionsFailed"`
	BossEncounters     int    `json:"bossEncounters"`
	CurrentStreak      int    `json:"currentStreak"`
	LongestStreak      int    `json:"longestStreak"`
	LastActivityDate   string `json:"lastActivityDate,omitempty"`
}

// NewProgress returns the progress of a badge that has earned nothing yet.
func (r Rules) NewProgress() *Progress {
	first := r.TierFor(0)
	return &Progress{Tier: first.Level, TierName: first.Name}
}

// UpdateStreak records activity on today. Same-day calls are no-ops.
func (r Rules) UpdateStreak(p *Progress, today string) {
	if p.LastActivityDate == today {
		return
	}
	yesterday, err := utils.AddDays(today, -1)
	if err == nil && p.LastActivityDate == yesterday {
		p.CurrentStreak++
	} else {
		p.CurrentStreak = 1
	}
	p.LastActivityDate = today
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
}

// ApplyXP adds raw XP scaled by the streak multiplier, clamps at zero and
// recomputes the tier. It returns the change actually applied. Halves round
// up, so -12.5 becomes -12.
func (r Rules) ApplyXP(p *Progress, raw int) int {
	delta := int(math.Floor(float64(raw)*r.Multiplier(p.CurrentStreak) + 0.5))
	before := p.XP
	p.XP += delta
	if p.XP < 0 {
		p.XP = 0
	}
	tier := r.TierFor(p.XP)
	p.Tier, p.TierName = tier.Level, tier.Name
	return p.XP - before
}
