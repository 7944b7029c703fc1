package badges

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/limitless/internal/daily"
	"github.com/julianstephens/limitless/internal/documents"
	"github.com/julianstephens/limitless/internal/errors"
	"github.com/julianstephens/limitless/internal/events"
	"github.com/julianstephens/limitless/internal/utils"
	"github.com/julianstephens/limitless/internal/votes"
)

// ProgressFile is the badge-progress document.
type ProgressFile struct {
	Badges map[string]*Progress `json:"badges"`
}

// Engine owns every badge mutation. Operations are serialized.
type Engine struct {
	mu sync.Mutex

	docs    *daily.Service
	votes   *votes.Service
	boss    *events.Log
	catalog *Catalog
	rules   Rules
	rng     *rand.Rand
	newID   func() string
}

type Options struct {
	Docs    *daily.Service
	Votes   *votes.Service
	Boss    *events.Log
	Catalog *Catalog
	Rules   Rules
	// Rand picks missions. Defaults to a time-seeded source.
	Rand *rand.Rand
}

func NewEngine(opts Options) *Engine {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		docs:    opts.Docs,
		votes:   opts.Votes,
		boss:    opts.Boss,
		catalog: opts.Catalog,
		rules:   opts.Rules,
		rng:     rng,
		newID:   uuid.NewString,
	}
}

func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

func (e *Engine) Rules() Rules {
	return e.rules
}

// Progress returns the stored badge-progress document.
func (e *Engine) Progress() (ProgressFile, error) {
	var f ProgressFile
	if err := e.docs.Store().Read(documents.BadgeProgress).Into(&f); err != nil {
		return f, err
	}
	if f.Badges == nil {
		f.Badges = map[string]*Progress{}
	}
	return f, nil
}

// replace overwrites doc in place with the JSON form of v.
func replace(doc documents.Document, v any) error {
	fresh, err := documents.FromStruct(v)
	if err != nil {
		return err
	}
	for k := range doc {
		delete(doc, k)
	}
	for k, val := range fresh {
		doc[k] = val
	}
	return nil
}

// updateProgress runs fn on the progress of slug, creating it when absent,
// and persists the result.
func (e *Engine) updateProgress(slug string, fn func(p *Progress, today string)) (Progress, error) {
	var out Progress
	_, err := e.docs.Update(documents.BadgeProgress, func(doc documents.Document, now time.Time) error {
		var f ProgressFile
		if err := doc.Into(&f); err != nil {
			return err
		}
		if f.Badges == nil {
			f.Badges = map[string]*Progress{}
		}
		p, ok := f.Badges[slug]
		if !ok {
			p = e.rules.NewProgress()
			f.Badges[slug] = p
		}
		fn(p, utils.FormatDate(now))
		out = *p
		return replace(doc, f)
	})
	return out, err
}

// award records activity for slug and applies raw XP. bump increments the
// counter that the activity belongs to.
func (e *Engine) award(slug string, raw int, bump func(p *Progress)) (int, Progress, error) {
	var applied int
	p, err := e.updateProgress(slug, func(p *Progress, today string) {
		e.rules.UpdateStreak(p, today)
		applied = e.rules.ApplyXP(p, raw)
		if bump != nil {
			bump(p)
		}
	})
	return applied, p, err
}

// logDaily appends entry to the list field of today's badge-daily document.
func (e *Engine) logDaily(field string, entry map[string]any, xp int) error {
	_, err := e.docs.Update(documents.BadgeDaily, func(doc documents.Document, now time.Time) error {
		if _, ok := entry["timestamp"]; !ok {
			entry["timestamp"] = documents.Timestamp(now)
		}
		doc[field] = append(doc.List(field), entry)
		doc["xpEarned"] = doc.Int("xpEarned") + xp
		return nil
	})
	return err
}

// ExerciseResult is returned by RecordExercise.
type ExerciseResult struct {
	BadgeSlug  string   `json:"badgeSlug"`
	ExerciseID string   `json:"exerciseId"`
	XPAwarded  int      `json:"xpAwarded"`
	Progress   Progress `json:"progress"`
}

// RecordExercise awards the XP of one completed exercise.
func (e *Engine) RecordExercise(slug, exerciseID string) (ExerciseResult, error) {
	badge, ex, ok := e.catalog.Exercise(slug, exerciseID)
	if badge == nil {
		return ExerciseResult{}, errors.Invalid("unknown badge %q", slug)
	}
	if !ok {
		return ExerciseResult{}, errors.Invalid("unknown exercise %q for badge %q", exerciseID, slug)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	applied, p, err := e.award(slug, ex.XP, func(p *Progress) { p.ExercisesCompleted++ })
	if err != nil {
		return ExerciseResult{}, err
	}
	if err := e.logDaily("exercises", map[string]any{
		"badgeSlug":  slug,
		"exerciseId": ex.ID,
		"name":       ex.Name,
		"xp":         applied,
	}, applied); err != nil {
		return ExerciseResult{}, err
	}

	return ExerciseResult{BadgeSlug: slug, ExerciseID: ex.ID, XPAwarded: applied, Progress: p}, nil
}

// BossInput is a reported boss encounter.
type BossInput struct {
	BadgeSlug string `json:"badgeSlug"`
	Boss      string `json:"boss"`
	Outcome   string `json:"outcome"`
	Notes     string `json:"notes"`
}

const (
	OutcomeVictory = "victory"
	OutcomeDefeat  = "defeat"
)

// BossResult is returned by RecordBossEncounter.
type BossResult struct {
	Encounter map[string]any `json:"encounter"`
	XPAwarded int            `json:"xpAwarded"`
	Progress  Progress       `json:"progress"`
}

// RecordBossEncounter logs a boss encounter and awards victory or defeat XP.
func (e *Engine) RecordBossEncounter(in BossInput) (BossResult, error) {
	if _, ok := e.catalog.Badge(in.BadgeSlug); !ok {
		return BossResult{}, errors.Invalid("unknown badge %q", in.BadgeSlug)
	}
	var raw int
	switch in.Outcome {
	case OutcomeVictory:
		raw = e.rules.BossVictoryXP
	case OutcomeDefeat:
		raw = e.rules.BossDefeatXP
	default:
		return BossResult{}, errors.Invalid("outcome must be %q or %q", OutcomeVictory, OutcomeDefeat)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	applied, p, err := e.award(in.BadgeSlug, raw, func(p *Progress) { p.BossEncounters++ })
	if err != nil {
		return BossResult{}, err
	}

	encounter := map[string]any{
		"id":        e.newID(),
		"badgeSlug": in.BadgeSlug,
		"boss":      in.Boss,
		"outcome":   in.Outcome,
		"notes":     in.Notes,
		"xpAwarded": applied,
	}
	if e.boss != nil {
		if _, err := e.boss.Append([]map[string]any{encounter}); err != nil {
			return BossResult{}, err
		}
	}
	entry := make(map[string]any, len(encounter))
	for k, v := range encounter {
		entry[k] = v
	}
	if err := e.logDaily("bossEncounters", entry, applied); err != nil {
		return BossResult{}, err
	}

	return BossResult{Encounter: encounter, XPAwarded: applied, Progress: p}, nil
}
