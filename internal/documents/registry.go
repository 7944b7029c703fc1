package documents

import (
	"sort"
	"time"
)

// Document names.
const (
	MorningBlockLog  = "morning-block-log"
	CreativeBlockLog = "creative-block-log"
	SleepData        = "sleep-data"
	FitmindData      = "fitmind-data"
	MorningState     = "morning-state"
	CreativeState    = "creative-state"
	WorkSessions     = "work-sessions"
	Votes            = "votes"
	NightRoutine     = "night-routine"
	MiddayCheckin    = "midday-checkin"
	BadgeDaily       = "badge-daily"
	VFGame           = "vf-game"

	BadgeProgress = "badge-progress"
	BadgeMissions = "badge-missions"
)

// Schema describes one named document.
type Schema struct {
	Name string
	// Daily documents are scoped to a calendar date and roll over.
	Daily bool
	// Stub returns a fresh default value.
	Stub func() Document
	// Fields is the allow-list copied from a merge payload.
	Fields []string
	// Required payload keys; a merge missing any of them is rejected untouched.
	Required []string
	// TrackTimestamps sets createdAt once and updatedAt on every write.
	TrackTimestamps bool
	// Mergeable documents accept POST /{name} field merges.
	Mergeable bool
	// Apply handles payload keys outside the allow-list. Optional.
	Apply func(doc, payload Document, now time.Time) error
	// Recount recomputes derived fields after every mutation. Optional.
	Recount func(doc Document, now time.Time)
}

var registry = map[string]*Schema{}

func register(s *Schema) {
	registry[s.Name] = s
}

func init() {
	register(&Schema{
		Name:  MorningBlockLog,
		Daily: true,
		Stub: func() Document {
			return Document{
				"date": nil, "startedAt": nil, "completedAt": nil,
				"items": []any{}, "completedCount": 0, "skippedCount": 0,
			}
		},
		Fields:    []string{"startedAt", "completedAt"},
		Required:  []string{"itemId", "status"},
		Mergeable: true,
		Apply:     applyMorningItem,
		Recount:   recountMorningItems,
	})
	register(&Schema{
		Name:  CreativeBlockLog,
		Daily: true,
		Stub: func() Document {
			return Document{"date": nil, "startedAt": nil, "completedAt": nil, "status": "not_started"}
		},
		Fields:    []string{"startedAt", "completedAt", "status"},
		Mergeable: true,
	})
	register(stateSchema(SleepData, func() Document {
		return Document{
			"date": nil, "source": nil, "hoursSlept": nil, "quality": nil,
			"sleepScore": nil, "wakeUpMood": nil, "notes": "", "rawExtracted": map[string]any{},
		}
	}))
	register(stateSchema(FitmindData, func() Document {
		return Document{
			"date": nil, "source": nil, "workoutCompleted": nil,
			"duration": nil, "type": nil, "score": nil, "notes": "",
		}
	}))
	register(stateSchema(MorningState, func() Document {
		return Document{
			"date": nil, "energyScore": nil, "mentalClarity": nil, "emotionalState": nil,
			"insights": []any{}, "dayPriority": nil, "resistanceNoted": nil,
			"resistanceDescription": nil, "overallMorningScore": nil, "rawNotes": "",
		}
	}))
	register(stateSchema(CreativeState, func() Document {
		return Document{
			"date": nil, "activities": []any{}, "energyScore": nil, "creativeOutput": nil,
			"insights": []any{}, "nutrition": map[string]any{"logged": false, "meal": nil, "notes": ""},
			"moodShift": nil, "rawNotes": "",
		}
	}))
	register(stateSchema(MiddayCheckin, func() Document {
		return Document{
			"date": nil, "energyScore": nil, "focusScore": nil, "mood": nil,
			"nutritionLogged": false, "meal": nil, "notes": "",
		}
	}))
	register(&Schema{
		Name:  WorkSessions,
		Daily: true,
		Stub: func() Document {
			return Document{"date": nil, "sessions": []any{}, "completedSessions": 0}
		},
		Required:  []string{"sessionId"},
		Mergeable: true,
		Apply:     applyWorkSession,
		Recount:   recountWorkSessions,
	})
	register(&Schema{
		Name:  Votes,
		Daily: true,
		Stub: func() Document {
			return Document{
				"date": nil, "votes": []any{},
				"positiveCount": 0, "negativeCount": 0, "byCategory": map[string]any{},
			}
		},
		Recount: recountVotes,
	})
	register(&Schema{
		Name:  NightRoutine,
		Daily: true,
		Stub: func() Document {
			return Document{
				"date":                   nil,
				"letGoCompleted":         false,
				"letGoTimestamp":         nil,
				"nervousSystemCompleted": false,
				"nervousSystemTimestamp": nil,
				"planCompleted":          false,
				"planTimestamp":          nil,
				"tomorrowPlan":           nil,
				"completedAt":            nil,
			}
		},
		Fields: []string{
			"letGoCompleted", "letGoTimestamp",
			"nervousSystemCompleted", "nervousSystemTimestamp",
			"planCompleted", "planTimestamp", "tomorrowPlan",
		},
		TrackTimestamps: true,
		Mergeable:       true,
		Recount:         markNightRoutineComplete,
	})
	register(&Schema{
		Name:  BadgeDaily,
		Daily: true,
		Stub: func() Document {
			return Document{
				"date": nil, "exercises": []any{}, "missions": []any{},
				"bossEncounters": []any{}, "affirmations": []any{}, "xpEarned": 0,
			}
		},
	})
	register(&Schema{
		Name:  VFGame,
		Daily: true,
		Stub: func() Document {
			return Document{"date": nil, "affirmations": []any{}, "votesGenerated": 0, "xpAwarded": 0}
		},
	})
	register(&Schema{
		Name: BadgeProgress,
		Stub: func() Document {
			return Document{"badges": map[string]any{}}
		},
	})
	register(&Schema{
		Name: BadgeMissions,
		Stub: func() Document {
			return Document{"active": []any{}, "completed": []any{}, "lastAssignedDate": nil}
		},
	})
}

// stateSchema builds a self-reported state document: every stub field except
// date is mergeable and writes are timestamped.
func stateSchema(name string, stub func() Document) *Schema {
	fields := make([]string, 0)
	for key := range stub() {
		if key != "date" {
			fields = append(fields, key)
		}
	}
	sort.Strings(fields)
	return &Schema{
		Name:            name,
		Daily:           true,
		Stub:            stub,
		Fields:          fields,
		TrackTimestamps: true,
		Mergeable:       true,
	}
}

// Lookup returns the schema registered for name.
func Lookup(name string) (*Schema, bool) {
	s, ok := registry[name]
	return s, ok
}

// Stub returns a fresh stub for name, or nil for an unknown name.
func Stub(name string) Document {
	if s, ok := registry[name]; ok {
		return s.Stub()
	}
	return nil
}

// Names returns every registered document name, sorted.
func Names() []string {
	return names(func(*Schema) bool { return true })
}

// DailyNames returns the names that roll over and are archived, sorted.
func DailyNames() []string {
	return names(func(s *Schema) bool { return s.Daily })
}

// MergeableNames returns the names that accept field merges, sorted.
func MergeableNames() []string {
	return names(func(s *Schema) bool { return s.Mergeable })
}

func names(keep func(*Schema) bool) []string {
	out := []string{}
	for name, s := range registry {
		if keep(s) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
