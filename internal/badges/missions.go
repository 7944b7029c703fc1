package badges

import (
	"time"

	"github.com/julianstephens/limitless/internal/constants"
	"github.com/julianstephens/limitless/internal/documents"
	"github.com/julianstephens/limitless/internal/errors"
	"github.com/julianstephens/limitless/internal/logger"
	"github.com/julianstephens/limitless/internal/utils"
)

// Mission statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusExpired   = "expired"
)

// Mission is an assigned mission instance.
type Mission struct {
	MissionID       string  `json:"missionId"`
	BadgeSlug       string  `json:"badgeSlug"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	SuccessCriteria string  `json:"successCriteria"`
	RewardXP        int     `json:"rewardXp"`
	FailXP          int     `json:"failXp"`
	MinTier         int     `json:"minTier"`
	AssignedAt      string  `json:"assignedAt"`
	Status          string  `json:"status"`
	CompletedAt     *string `json:"completedAt"`
	XPAwarded       *int    `json:"xpAwarded"`
	Notes           *string `json:"notes"`
}

// MissionsFile is the badge-missions document.
type MissionsFile struct {
	Active           []Mission `json:"active"`
	Completed        []Mission `json:"completed"`
	LastAssignedDate *string   `json:"lastAssignedDate"`
}

// Missions returns the stored badge-missions document.
func (e *Engine) Missions() (MissionsFile, error) {
	var f MissionsFile
	err := e.docs.Store().Read(documents.BadgeMissions).Into(&f)
	return normalize(f), err
}

func normalize(f MissionsFile) MissionsFile {
	if f.Active == nil {
		f.Active = []Mission{}
	}
	if f.Completed == nil {
		f.Completed = []Mission{}
	}
	return f
}

// trimHistory keeps the most recent limit resolved missions.
func trimHistory(completed []Mission, limit int) []Mission {
	if len(completed) <= limit {
		return completed
	}
	return append([]Mission(nil), completed[len(completed)-limit:]...)
}

// AssignMissions picks one mission per badge slug for today. An empty slugs
// list means every badge. A second call on the same day returns the existing
// assignment unchanged.
func (e *Engine) AssignMissions(slugs []string) (MissionsFile, error) {
	for _, slug := range slugs {
		if _, ok := e.catalog.Badge(slug); !ok {
			return MissionsFile{}, errors.Invalid("unknown badge %q", slug)
		}
	}
	if len(slugs) == 0 {
		slugs = e.catalog.Slugs()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	progress, err := e.Progress()
	if err != nil {
		return MissionsFile{}, err
	}

	var out MissionsFile
	_, err = e.docs.Update(documents.BadgeMissions, func(doc documents.Document, now time.Time) error {
		var f MissionsFile
		if err := doc.Into(&f); err != nil {
			return err
		}
		f = normalize(f)

		today := utils.FormatDate(now)
		if f.LastAssignedDate != nil && *f.LastAssignedDate == today {
			out = f
			return nil
		}

		ts := documents.Timestamp(now)
		for _, m := range f.Active {
			if m.Status == StatusPending {
				m.Status = StatusExpired
				m.CompletedAt = &ts
				zero := 0
				m.XPAwarded = &zero
			}
			f.Completed = append(f.Completed, m)
		}
		f.Active = []Mission{}

		for _, slug := range slugs {
			tier := 1
			if p, ok := progress.Badges[slug]; ok {
				tier = p.Tier
			}
			eligible := e.catalog.Eligible(slug, tier)
			if len(eligible) == 0 {
				logger.Debug("No eligible missions", "badge", slug, "tier", tier)
				continue
			}
			t := eligible[e.rng.Intn(len(eligible))]
			f.Active = append(f.Active, Mission{
				MissionID:       t.ID,
				BadgeSlug:       t.BadgeSlug,
				Title:           t.Title,
				Description:     t.Description,
				SuccessCriteria: t.SuccessCriteria,
				RewardXP:        t.RewardXP,
				FailXP:          t.FailXP,
				MinTier:         t.MinTier,
				AssignedAt:      ts,
				Status:          StatusPending,
			})
		}

		f.Completed = trimHistory(f.Completed, constants.MissionHistoryLimit)
		f.LastAssignedDate = &today
		out = f
		return replace(doc, f)
	})
	if err != nil {
		return MissionsFile{}, err
	}
	return out, nil
}

// CompleteResult is returned by CompleteMission.
type CompleteResult struct {
	Mission   Mission  `json:"mission"`
	XPAwarded int      `json:"xpAwarded"`
	Progress  Progress `json:"progress"`
}

// CompleteMission resolves a pending mission as completed or failed. Success
// awards rewardXp; failure deducts failXp.
func (e *Engine) CompleteMission(missionID, status, notes string) (CompleteResult, error) {
	if missionID == "" {
		return CompleteResult{}, errors.Invalid("missionId required")
	}
	if status == "" {
		status = StatusCompleted
	}
	if status != StatusCompleted && status != StatusFailed {
		return CompleteResult{}, errors.Invalid("status must be %q or %q", StatusCompleted, StatusFailed)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := e.Missions()
	if err != nil {
		return CompleteResult{}, err
	}
	idx := -1
	for i, m := range current.Active {
		if m.MissionID == missionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return CompleteResult{}, errors.NotFound("mission %q is not active", missionID)
	}
	mission := current.Active[idx]
	if mission.Status != StatusPending {
		return CompleteResult{}, errors.Conflict("mission %q is %s, not pending", missionID, mission.Status)
	}

	raw := mission.RewardXP
	if status == StatusFailed {
		raw = -abs(mission.FailXP)
	}
	applied, err := e.previewXP(mission.BadgeSlug, raw)
	if err != nil {
		return CompleteResult{}, err
	}

	// Resolve before saving XP. A failed XP write reopens the mission.
	before := e.docs.Store().Read(documents.BadgeMissions)
	var resolved Mission
	_, err = e.docs.Update(documents.BadgeMissions, func(doc documents.Document, now time.Time) error {
		var f MissionsFile
		if err := doc.Into(&f); err != nil {
			return err
		}
		f = normalize(f)

		active := make([]Mission, 0, len(f.Active))
		for _, m := range f.Active {
			if m.MissionID == missionID && m.Status == StatusPending {
				ts := documents.Timestamp(now)
				m.Status = status
				m.CompletedAt = &ts
				m.XPAwarded = &applied
				if notes != "" {
					m.Notes = &notes
				}
				resolved = m
				f.Completed = append(f.Completed, m)
				continue
			}
			active = append(active, m)
		}
		f.Active = active
		f.Completed = trimHistory(f.Completed, constants.MissionHistoryLimit)
		return replace(doc, f)
	})
	if err != nil {
		return CompleteResult{}, err
	}

	applied, p, err := e.award(mission.BadgeSlug, raw, func(p *Progress) {
		if status == StatusCompleted {
			p.MissionsCompleted++
		} else {
			p.MissionsFailed++
		}
	})
	if err != nil {
		if rbErr := e.docs.Store().Write(documents.BadgeMissions, before); rbErr != nil {
			logger.Error("Failed to reopen mission after XP write failure", "mission", missionID, "error", rbErr)
		}
		return CompleteResult{}, err
	}

	if err := e.logDaily("missions", map[string]any{
		"missionId": missionID,
		"badgeSlug": mission.BadgeSlug,
		"status":    status,
		"xp":        applied,
	}, applied); err != nil {
		return CompleteResult{}, err
	}

	return CompleteResult{Mission: resolved, XPAwarded: applied, Progress: p}, nil
}

// previewXP returns the XP that awarding raw to slug would apply today,
// without saving anything.
func (e *Engine) previewXP(slug string, raw int) (int, error) {
	f, err := e.Progress()
	if err != nil {
		return 0, err
	}
	p := e.rules.NewProgress()
	if existing, ok := f.Badges[slug]; ok {
		copied := *existing
		p = &copied
	}
	e.rules.UpdateStreak(p, e.docs.Today())
	return e.rules.ApplyXP(p, raw), nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
