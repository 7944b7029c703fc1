package badges

import (
	"strings"
	"time"

	"github.com/julianstephens/limitless/internal/documents"
	"github.com/julianstephens/limitless/internal/errors"
	"github.com/julianstephens/limitless/internal/votes"
)

// VFSource marks votes generated by the affirmation game.
const VFSource = "vf-game"

// NoActionTaken is the action of the vote recorded for passive affirmations.
const NoActionTaken = "no action taken"

// Affirmation is one submitted affirmation slot.
type Affirmation struct {
	Slot        int            `json:"slot"`
	BadgeSlug   string         `json:"badgeSlug"`
	Text        string         `json:"text"`
	Category    votes.Category `json:"category"`
	Conviction  *float64       `json:"conviction"`
	Reinforcing []string       `json:"reinforcingActions"`
	Weakening   []string       `json:"weakeningActions"`
}

// AffirmationResult reports what one slot produced.
type AffirmationResult struct {
	Slot           int `json:"slot"`
	XPAwarded      int `json:"xpAwarded"`
	VotesGenerated int `json:"votesGenerated"`
}

// VFResult is returned by PlayVFGame.
type VFResult struct {
	XPAwarded      int                 `json:"xpAwarded"`
	VotesGenerated int                 `json:"votesGenerated"`
	Affirmations   []AffirmationResult `json:"affirmations"`
	Votes          []votes.Vote        `json:"votes"`
}

func actions(list []string) []string {
	out := []string{}
	for _, a := range list {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// convictionXP is the raw XP a conviction score earns.
func (r Rules) convictionXP(conviction *float64) int {
	switch {
	case conviction == nil:
		return 0
	case *conviction > r.ConvictionHigh:
		return r.ConvictionBonusXP
	case *conviction < r.ConvictionLow:
		return -abs(r.ConvictionPenaltyXP)
	default:
		return 0
	}
}

// PlayVFGame scores affirmation slots: conviction earns or costs XP on the
// slot's badge and every listed action becomes a vote.
func (e *Engine) PlayVFGame(affirmations []Affirmation) (VFResult, error) {
	if len(affirmations) == 0 {
		return VFResult{}, errors.Invalid("affirmations required")
	}
	slots := make(map[int]bool, len(affirmations))
	for _, a := range affirmations {
		if slots[a.Slot] {
			return VFResult{}, errors.Invalid("duplicate affirmation slot %d", a.Slot)
		}
		slots[a.Slot] = true
		if _, ok := e.catalog.Badge(a.BadgeSlug); !ok {
			return VFResult{}, errors.Invalid("unknown badge %q", a.BadgeSlug)
		}
		if a.Conviction != nil && (*a.Conviction < 0 || *a.Conviction > 10) {
			return VFResult{}, errors.Invalid("conviction must be between 0 and 10")
		}
		if a.Category != "" && !a.Category.Valid() {
			return VFResult{}, errors.Invalid("unknown category %q", a.Category)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	result := VFResult{Affirmations: []AffirmationResult{}, Votes: []votes.Vote{}}
	var inputs []votes.Input
	entries := make([]map[string]any, 0, len(affirmations))

	for _, a := range affirmations {
		badge, _ := e.catalog.Badge(a.BadgeSlug)
		category := a.Category
		if category == "" {
			category = badge.Category
		}

		reinforcing, weakening := actions(a.Reinforcing), actions(a.Weakening)
		var slotVotes []votes.Input
		for _, action := range reinforcing {
			slotVotes = append(slotVotes, votes.Input{Action: action, Category: category, Polarity: votes.Positive, Source: VFSource})
		}
		for _, action := range weakening {
			slotVotes = append(slotVotes, votes.Input{Action: action, Category: category, Polarity: votes.Negative, Source: VFSource})
		}
		if a.Conviction != nil && len(reinforcing) == 0 && len(weakening) == 0 {
			w := e.rules.NoActionVoteWeight
			slotVotes = append(slotVotes, votes.Input{Action: NoActionTaken, Category: category, Polarity: votes.Negative, Source: VFSource, Weight: &w})
		}
		inputs = append(inputs, slotVotes...)

		applied := 0
		if a.Conviction != nil {
			var err error
			applied, _, err = e.award(a.BadgeSlug, e.rules.convictionXP(a.Conviction), nil)
			if err != nil {
				return VFResult{}, err
			}
		}

		result.XPAwarded += applied
		result.VotesGenerated += len(slotVotes)
		result.Affirmations = append(result.Affirmations, AffirmationResult{Slot: a.Slot, XPAwarded: applied, VotesGenerated: len(slotVotes)})

		var conviction any
		if a.Conviction != nil {
			conviction = *a.Conviction
		}
		entries = append(entries, map[string]any{
			"slot":               a.Slot,
			"badgeSlug":          a.BadgeSlug,
			"text":               a.Text,
			"category":           string(category),
			"conviction":         conviction,
			"reinforcingActions": reinforcing,
			"weakeningActions":   weakening,
			"xpAwarded":          applied,
			"votesGenerated":     len(slotVotes),
		})
	}

	if len(inputs) > 0 {
		added, err := e.votes.Append(inputs)
		if err != nil {
			return VFResult{}, err
		}
		result.Votes = added
	}

	_, err := e.docs.Update(documents.VFGame, func(doc documents.Document, now time.Time) error {
		ts := documents.Timestamp(now)
		list := doc.List("affirmations")
		for _, entry := range entries {
			entry["timestamp"] = ts
			list = upsertSlot(list, entry)
		}
		doc["affirmations"] = list
		doc["votesGenerated"] = doc.Int("votesGenerated") + result.VotesGenerated
		doc["xpAwarded"] = doc.Int("xpAwarded") + result.XPAwarded
		return nil
	})
	if err != nil {
		return VFResult{}, err
	}

	for _, entry := range entries {
		if err := e.logDaily("affirmations", map[string]any{
			"slot":       entry["slot"],
			"badgeSlug":  entry["badgeSlug"],
			"conviction": entry["conviction"],
			"xp":         entry["xpAwarded"],
		}, entry["xpAwarded"].(int)); err != nil {
			return VFResult{}, err
		}
	}
	return result, nil
}

// upsertSlot replaces the affirmation with the same slot or appends entry.
func upsertSlot(list []any, entry map[string]any) []any {
	for i, existing := range list {
		obj, ok := existing.(map[string]any)
		if !ok {
			continue
		}
		if slot, ok := obj["slot"].(float64); ok && int(slot) == entry["slot"].(int) {
			list[i] = entry
			return list
		}
		if slot, ok := obj["slot"].(int); ok && slot == entry["slot"].(int) {
			list[i] = entry
			return list
		}
	}
	return append(list, entry)
}
