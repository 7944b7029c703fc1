package votes

import (
	"fmt"
	"testing"
	"time"

	"github.com/julianstephens/limitless/internal/clock"
	"github.com/julianstephens/limitless/internal/daily"
	"github.com/julianstephens/limitless/internal/storage"
)

func newTestService(t *testing.T) (*Service, *daily.Service) {
	t.Helper()
	c := clock.NewFixed(time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC))
	docs := daily.NewService(daily.NewStore(storage.NewMemoryStore()), nil, c)
	s := NewService(docs)
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("vote-%d", n)
	}
	return s, docs
}

func weight(w float64) *float64 { return &w }

func TestAppendFiltersInvalidVotes(t *testing.T) {
	s, docs := newTestService(t)

	added, err := s.Append([]Input{
		{Action: "cooked dinner", Category: Nutrition, Polarity: Positive},
		{Action: "doomscrolled", Category: "screens", Polarity: Negative},
		{Action: "skipped gym", Category: Physical, Polarity: "neutral"},
		{Action: "   ", Category: Work, Polarity: Positive},
		{Action: "deep work", Category: Work, Polarity: Positive, Source: "timer", Weight: weight(2)},
	})
	if err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("Append() added %d votes, want 2", len(added))
	}
	if added[0].ID != "vote-1" || added[0].Source != DefaultSource || added[0].Weight != DefaultWeight {
		t.Errorf("defaults not applied: %+v", added[0])
	}
	if added[1].Weight != 2 || added[1].Source != "timer" {
		t.Errorf("explicit fields lost: %+v", added[1])
	}
	if added[0].Timestamp != "2026-10-15T20:00:00Z" {
		t.Errorf("timestamp = %q", added[0].Timestamp)
	}

	doc := docs.Store().Read("votes")
	if doc.Date() != "2026-10-15" {
		t.Errorf("votes date = %q", doc.Date())
	}
	if len(doc.List("votes")) != 2 || doc.Int("positiveCount") != 2 || doc.Int("negativeCount") != 0 {
		t.Errorf("votes document = %v", doc)
	}
}

func TestAppendAllInvalidStillWritesToday(t *testing.T) {
	s, docs := newTestService(t)
	added, err := s.Append([]Input{{Action: "x", Category: "bogus", Polarity: Positive}})
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 0 {
		t.Errorf("added = %v, want none", added)
	}
	if got := len(docs.Store().Read("votes").List("votes")); got != 0 {
		t.Errorf("stored %d votes, want 0", got)
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("%s should be valid", c)
		}
	}
	if Category("mental_power").Valid() {
		t.Error("mental_power should be invalid")
	}
}
