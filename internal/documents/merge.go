package documents

import (
	"strings"
	"time"

	"github.com/julianstephens/limitless/internal/errors"
)

// Validate rejects a payload that lacks one of the schema's required keys.
func (s *Schema) Validate(payload Document) error {
	for _, key := range s.Required {
		if Blank(payload[key]) {
			return errors.Invalid("%s required", strings.Join(s.Required, " and "))
		}
	}
	return nil
}

// Merge copies allow-listed payload keys onto doc and applies the
// type-specific payload handler. Unknown keys are dropped.
func (s *Schema) Merge(doc, payload Document, now time.Time) error {
	for _, key := range s.Fields {
		if v, ok := payload[key]; ok {
			doc[key] = v
		}
	}
	if s.Apply != nil {
		return s.Apply(doc, payload, now)
	}
	return nil
}

// Finish recomputes derived fields and stamps timestamps before a write.
func (s *Schema) Finish(doc Document, now time.Time) {
	if s.Recount != nil {
		s.Recount(doc, now)
	}
	if s.TrackTimestamps {
		ts := Timestamp(now)
		if Blank(doc["createdAt"]) {
			doc["createdAt"] = ts
		}
		doc["updatedAt"] = ts
	}
}

// upsert replaces the element of list whose id matches, or appends item.
func upsert(list []any, item map[string]any) []any {
	for i, existing := range list {
		if obj, ok := existing.(map[string]any); ok && sameID(obj["id"], item["id"]) {
			list[i] = item
			return list
		}
	}
	return append(list, item)
}

// find returns the element of list whose id matches.
func find(list []any, id any) map[string]any {
	for _, existing := range list {
		if obj, ok := existing.(map[string]any); ok && sameID(obj["id"], id) {
			return obj
		}
	}
	return nil
}

func applyMorningItem(doc, payload Document, now time.Time) error {
	ts := payload.String("timestamp")
	if ts == "" {
		ts = Timestamp(now)
	}
	if doc.IsNull("startedAt") {
		doc["startedAt"] = Timestamp(now)
	}
	doc["items"] = upsert(doc.List("items"), map[string]any{
		"id":        payload["itemId"],
		"status":    payload["status"],
		"timestamp": ts,
	})
	return nil
}

func recountMorningItems(doc Document, _ time.Time) {
	completed, skipped := 0, 0
	for _, item := range doc.List("items") {
		obj, _ := item.(map[string]any)
		switch obj["status"] {
		case "done":
			completed++
		case "skipped":
			skipped++
		}
	}
	if doc.List("items") == nil {
		doc["items"] = []any{}
	}
	doc["completedCount"] = completed
	doc["skippedCount"] = skipped
}

// SessionFields are the per-session keys a work-sessions merge may set.
var SessionFields = []string{"startedAt", "endedAt", "notes"}

func applyWorkSession(doc, payload Document, _ time.Time) error {
	id := payload["sessionId"]
	sessions := doc.List("sessions")

	session := find(sessions, id)
	if session == nil {
		session = map[string]any{"id": id, "startedAt": nil, "endedAt": nil}
	}
	for _, key := range SessionFields {
		if v, ok := payload[key]; ok {
			session[key] = v
		}
	}
	doc["sessions"] = upsert(sessions, session)
	return nil
}

func recountWorkSessions(doc Document, _ time.Time) {
	completed := 0
	for _, s := range doc.List("sessions") {
		if obj, ok := s.(map[string]any); ok && obj["endedAt"] != nil {
			completed++
		}
	}
	if doc.List("sessions") == nil {
		doc["sessions"] = []any{}
	}
	doc["completedSessions"] = completed
}

func recountVotes(doc Document, _ time.Time) {
	positive, negative := 0, 0
	byCategory := map[string]any{}
	for _, v := range doc.List("votes") {
		vote, ok := v.(map[string]any)
		if !ok {
			continue
		}
		category, _ := vote["category"].(string)
		polarity, _ := vote["polarity"].(string)
		counts, _ := byCategory[category].(map[string]any)
		if counts == nil {
			counts = map[string]any{"positive": 0, "negative": 0}
			byCategory[category] = counts
		}
		switch polarity {
		case "positive":
			positive++
			counts["positive"] = counts["positive"].(int) + 1
		case "negative":
			negative++
			counts["negative"] = counts["negative"].(int) + 1
		}
	}
	if doc.List("votes") == nil {
		doc["votes"] = []any{}
	}
	doc["positiveCount"] = positive
	doc["negativeCount"] = negative
	doc["byCategory"] = byCategory
}

func markNightRoutineComplete(doc Document, now time.Time) {
	if !doc.IsNull("completedAt") {
		return
	}
	if doc.Bool("letGoCompleted") && doc.Bool("nervousSystemCompleted") && doc.Bool("planCompleted") {
		doc["completedAt"] = Timestamp(now)
	}
}
