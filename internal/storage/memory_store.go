package storage

import (
	"sort"
	"sync"

	"github.com/julianstephens/limitless/internal/constants"
	"github.com/julianstephens/limitless/internal/utils"
)

// MemoryStore is a process-local Provider used by tests and --storage memory.
type MemoryStore struct {
	mu        sync.RWMutex
	documents map[string][]byte
	snapshots map[string]map[string][]byte
	logs      map[string][][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents: make(map[string][]byte),
		snapshots: make(map[string]map[string][]byte),
		logs:      make(map[string][][]byte),
	}
}

func (s *MemoryStore) Init() error  { return nil }
func (s *MemoryStore) Load() error  { return nil }
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Kind() string          { return constants.StorageMemory }
func (s *MemoryStore) GetConfigPath() string { return ":memory:" }

func (s *MemoryStore) ReadDocument(name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.documents[name]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(data), nil
}

func (s *MemoryStore) WriteDocument(name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[name] = clone(data)
	return nil
}

func (s *MemoryStore) ListDocuments() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.documents))
	for name := range s.documents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) CreateSnapshot(date string, docs map[string][]byte) error {
	if !utils.IsValidDate(date) {
		return ErrInvalidName
	}
	for name := range docs {
		if err := ValidateName(name); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snapshots[date]; ok {
		return ErrSnapshotExists
	}
	snapshot := make(map[string][]byte, len(docs))
	for name, data := range docs {
		snapshot[name] = clone(data)
	}
	s.snapshots[date] = snapshot
	return nil
}

func (s *MemoryStore) HasSnapshot(date string) (bool, error) {
	if !utils.IsValidDate(date) {
		return false, ErrInvalidName
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.snapshots[date]
	return ok, nil
}

func (s *MemoryStore) ReadSnapshot(date string) (map[string][]byte, error) {
	if !utils.IsValidDate(date) {
		return nil, ErrInvalidName
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[date]
	if !ok {
		return nil, ErrNotFound
	}
	docs := make(map[string][]byte, len(snapshot))
	for name, data := range snapshot {
		docs[name] = clone(data)
	}
	return docs, nil
}

func (s *MemoryStore) ListSnapshots() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dates := make([]string, 0, len(s.snapshots))
	for date := range s.snapshots {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates, nil
}

func (s *MemoryStore) DeleteSnapshot(date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, date)
	return nil
}

func (s *MemoryStore) AppendLog(name string, records [][]byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range records {
		s.logs[name] = append(s.logs[name], clone(record))
	}
	return nil
}

func (s *MemoryStore) ReadLog(name string) ([][]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([][]byte, 0, len(s.logs[name]))
	for _, record := range s.logs[name] {
		records = append(records, clone(record))
	}
	return records, nil
}

func clone(data []byte) []byte {
	return append([]byte(nil), data...)
}
