package daily

import (
	"sync"
	"time"

	"github.com/julianstephens/limitless/internal/clock"
	"github.com/julianstephens/limitless/internal/documents"
	"github.com/julianstephens/limitless/internal/errors"
	"github.com/julianstephens/limitless/internal/utils"
)

// Service runs every document mutation as one locked read-modify-write.
type Service struct {
	store    *Store
	rollover *Rollover
	clock    clock.Clock

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(store *Store, archiver Archiver, c clock.Clock) *Service {
	return &Service{
		store:    store,
		rollover: NewRollover(store, archiver),
		clock:    c,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *Service) Store() *Store {
	return s.store
}

func (s *Service) Clock() clock.Clock {
	return s.clock
}

// Today is the current calendar date according to the service clock.
func (s *Service) Today() string {
	return clock.Today(s.clock)
}

func (s *Service) lock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

// Get returns the stored document for name, or its stub.
func (s *Service) Get(name string) (documents.Document, error) {
	if _, ok := documents.Lookup(name); !ok {
		return nil, errors.NotFound("unknown document %q", name)
	}
	return s.store.Read(name), nil
}

// Update resolves name for today, applies fn and persists the result.
// Nothing is written when fn returns an error.
func (s *Service) Update(name string, fn func(doc documents.Document, now time.Time) error) (documents.Document, error) {
	schema, ok := documents.Lookup(name)
	if !ok {
		return nil, errors.NotFound("unknown document %q", name)
	}

	l := s.lock(name)
	l.Lock()
	defer l.Unlock()

	now := s.clock.Now()
	today := utils.FormatDate(now)

	doc, _ := s.rollover.Resolve(name, today)
	if schema.Daily {
		doc.SetDate(today)
	}
	if err := fn(doc, now); err != nil {
		return nil, err
	}
	schema.Finish(doc, now)

	if err := s.store.Write(name, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Merge applies a field-merge payload to name. A payload missing a required
// identifier is rejected before the stored document is touched.
func (s *Service) Merge(name string, payload documents.Document) (documents.Document, error) {
	schema, ok := documents.Lookup(name)
	if !ok || !schema.Mergeable {
		return nil, errors.NotFound("document %q does not accept updates", name)
	}
	if err := schema.Validate(payload); err != nil {
		return nil, err
	}
	return s.Update(name, func(doc documents.Document, now time.Time) error {
		return schema.Merge(doc, payload, now)
	})
}

// MergeStamped merges payload after defaulting field to the current timestamp.
func (s *Service) MergeStamped(name, field string, payload documents.Document) (documents.Document, error) {
	if payload == nil {
		payload = documents.Document{}
	}
	if documents.Blank(payload[field]) {
		payload[field] = documents.Timestamp(s.clock.Now())
	}
	return s.Merge(name, payload)
}
