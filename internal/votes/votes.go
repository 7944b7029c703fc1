// Package votes validates and appends identity votes to the daily votes document.
package votes

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/limitless/internal/daily"
	"github.com/julianstephens/limitless/internal/documents"
	"github.com/julianstephens/limitless/internal/logger"
)

type Category string

const (
	Nutrition     Category = "nutrition"
	Work          Category = "work"
	MentalPower   Category = "mental-power"
	Personality   Category = "personality"
	Creativity    Category = "creativity"
	Physical      Category = "physical"
	Relationships Category = "relationships"
)

// Categories lists every accepted category.
var Categories = []Category{Nutrition, Work, MentalPower, Personality, Creativity, Physical, Relationships}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Polarity string

const (
	Positive Polarity = "positive"
	Negative Polarity = "negative"
)

func (p Polarity) Valid() bool {
	return p == Positive || p == Negative
}

const (
	DefaultSource = "manual"
	DefaultWeight = 1.0
)

// Vote is one stored vote.
type Vote struct {
	ID        string   `json:"id"`
	Timestamp string   `json:"timestamp"`
	Action    string   `json:"action"`
	Category  Category `json:"category"`
	Polarity  Polarity `json:"polarity"`
	Source    string   `json:"source"`
	Weight    float64  `json:"weight"`
}

// Input is a submitted vote before validation.
type Input struct {
	Action    string   `json:"action"`
	Category  Category `json:"category"`
	Polarity  Polarity `json:"polarity"`
	Source    string   `json:"source"`
	Weight    *float64 `json:"weight"`
	Timestamp string   `json:"timestamp"`
}

// Valid reports whether the input has a known category and polarity and a non-empty action.
func (in Input) Valid() bool {
	return in.Category.Valid() && in.Polarity.Valid() && strings.TrimSpace(in.Action) != ""
}

// Service appends votes through the daily document lifecycle.
type Service struct {
	docs  *daily.Service
	newID func() string
}

func NewService(docs *daily.Service) *Service {
	return &Service{docs: docs, newID: uuid.NewString}
}

// Build turns valid inputs into votes stamped at now. Invalid inputs are dropped.
func (s *Service) Build(inputs []Input, now time.Time) []Vote {
	out := make([]Vote, 0, len(inputs))
	for _, in := range inputs {
		if !in.Valid() {
			logger.Debug("Dropping invalid vote", "category", in.Category, "polarity", in.Polarity)
			continue
		}
		v := Vote{
			ID:        s.newID(),
			Timestamp: in.Timestamp,
			Action:    strings.TrimSpace(in.Action),
			Category:  in.Category,
			Polarity:  in.Polarity,
			Source:    in.Source,
			Weight:    DefaultWeight,
		}
		if v.Timestamp == "" {
			v.Timestamp = documents.Timestamp(now)
		}
		if v.Source == "" {
			v.Source = DefaultSource
		}
		if in.Weight != nil {
			v.Weight = *in.Weight
		}
		out = append(out, v)
	}
	return out
}

// Append validates inputs and appends the valid ones to today's votes
// document. It returns the stored votes.
func (s *Service) Append(inputs []Input) ([]Vote, error) {
	var added []Vote
	_, err := s.docs.Update(documents.Votes, func(doc documents.Document, now time.Time) error {
		added = s.Build(inputs, now)
		AppendTo(doc, added)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// AppendTo adds votes to a votes document in place.
func AppendTo(doc documents.Document, votes []Vote) {
	list := doc.List("votes")
	for _, v := range votes {
		list = append(list, map[string]any{
			"id":        v.ID,
			"timestamp": v.Timestamp,
			"action":    v.Action,
			"category":  string(v.Category),
			"polarity":  string(v.Polarity),
			"source":    v.Source,
			"weight":    v.Weight,
		})
	}
	if list == nil {
		list = []any{}
	}
	doc["votes"] = list
}
