package daily

import (
	"github.com/julianstephens/limitless/internal/documents"
	"github.com/julianstephens/limitless/internal/logger"
)

// Transition is what Resolve did to reach today's document.
type Transition int

const (
	// Current means the stored document already belongs to today.
	Current Transition = iota
	// Created means there was no dated document; a stub for today was produced.
	Created
	// Rolled means a previous day's document was archived and replaced.
	Rolled
)

func (t Transition) String() string {
	switch t {
	case Created:
		return "created"
	case Rolled:
		return "rolled"
	default:
		return "current"
	}
}

// Archiver snapshots every daily document under date.
type Archiver interface {
	Archive(date, today string) error
}

// Rollover decides whether a daily document belongs to today.
type Rollover struct {
	store    *Store
	archiver Archiver
}

func NewRollover(store *Store, archiver Archiver) *Rollover {
	return &Rollover{store: store, archiver: archiver}
}

// Resolve returns the document for name as it should look on today.
// Non-daily documents pass through. An archive failure is logged and the
// rollover still happens.
func (r *Rollover) Resolve(name, today string) (documents.Document, Transition) {
	doc := r.store.Read(name)
	schema, ok := documents.Lookup(name)
	if !ok || !schema.Daily {
		return doc, Current
	}

	stored := doc.Date()
	switch {
	case stored == today:
		return doc, Current
	case stored == "":
		fresh := schema.Stub()
		fresh.SetDate(today)
		return fresh, Created
	}

	if r.archiver != nil {
		if err := r.archiver.Archive(stored, today); err != nil {
			logger.Error("Archive failed, rolling over anyway", "date", stored, "document", name, "error", err)
		}
	}
	logger.Info("Rolled over document", "document", name, "from", stored, "to", today)

	fresh := schema.Stub()
	fresh.SetDate(today)
	return fresh, Rolled
}
