package archive

import (
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/julianstephens/limitless/internal/documents"
	"github.com/julianstephens/limitless/internal/errors"
	"github.com/julianstephens/limitless/internal/logger"
	"github.com/julianstephens/limitless/internal/storage"
	"github.com/julianstephens/limitless/internal/utils"
)

// SnapshotInfo describes one archived day.
type SnapshotInfo struct {
	Date      string
	Documents []string
	Size      int64
}

// Manager handles history snapshots
type Manager struct {
	provider      storage.Provider
	names         []string
	retentionDays int
}

// NewManager creates a manager that archives the given document names and
// keeps snapshots for retentionDays.
func NewManager(provider storage.Provider, names []string, retentionDays int) *Manager {
	return &Manager{
		provider:      provider,
		names:         names,
		retentionDays: retentionDays,
	}
}

func (m *Manager) RetentionDays() int {
	return m.retentionDays
}

// Archive snapshots every known daily document under date. It is a no-op if
// the snapshot already exists. Documents that were never written are omitted.
// A successful snapshot is followed by a prune relative to today.
func (m *Manager) Archive(date, today string) error {
	if !utils.IsValidDate(date) {
		return fmt.Errorf("cannot archive invalid date %q", date)
	}

	exists, err := m.provider.HasSnapshot(date)
	if err != nil {
		return fmt.Errorf("failed to check snapshot %s: %w", date, err)
	}
	if exists {
		logger.Debug("Snapshot already exists", "date", date)
		return nil
	}

	docs := make(map[string][]byte, len(m.names))
	for _, name := range m.names {
		data, err := m.provider.ReadDocument(name)
		if err != nil {
			if stderrors.Is(err, storage.ErrNotFound) {
				continue
			}
			return fmt.Errorf("failed to read %s for snapshot %s: %w", name, date, err)
		}
		docs[name] = data
	}

	if err := m.provider.CreateSnapshot(date, docs); err != nil {
		if stderrors.Is(err, storage.ErrSnapshotExists) {
			return nil
		}
		return fmt.Errorf("failed to create snapshot %s: %w", date, err)
	}
	logger.Info("Archived day", "date", date, "documents", len(docs))

	if _, err := m.Prune(today); err != nil {
		logger.Warn("Failed to prune history", "error", err)
	}
	return nil
}

// Prune deletes every snapshot dated before today minus the retention window
// and returns the removed dates.
func (m *Manager) Prune(today string) ([]string, error) {
	cutoff, err := utils.AddDays(today, -m.retentionDays)
	if err != nil {
		return nil, err
	}

	dates, err := m.provider.ListSnapshots()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	removed := []string{}
	for _, date := range dates {
		// Zero-padded ISO dates order lexicographically
		if date >= cutoff {
			continue
		}
		if err := m.provider.DeleteSnapshot(date); err != nil {
			return removed, fmt.Errorf("failed to remove snapshot %s: %w", date, err)
		}
		removed = append(removed, date)
	}
	if len(removed) > 0 {
		logger.Info("Pruned history", "removed", len(removed), "cutoff", cutoff)
	}
	return removed, nil
}

// Dates returns archived dates, newest first.
func (m *Manager) Dates() ([]string, error) {
	dates, err := m.provider.ListSnapshots()
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

// List returns every snapshot with its contents summarized, newest first.
func (m *Manager) List() ([]SnapshotInfo, error) {
	dates, err := m.Dates()
	if err != nil {
		return nil, err
	}

	infos := make([]SnapshotInfo, 0, len(dates))
	for _, date := range dates {
		docs, err := m.provider.ReadSnapshot(date)
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot %s: %w", date, err)
		}
		info := SnapshotInfo{Date: date, Documents: []string{}}
		for name, data := range docs {
			info.Documents = append(info.Documents, name)
			info.Size += int64(len(data))
		}
		sort.Strings(info.Documents)
		infos = append(infos, info)
	}
	return infos, nil
}

// Snapshot returns every document archived under date, decoded.
func (m *Manager) Snapshot(date string) (map[string]documents.Document, error) {
	if !utils.IsValidDate(date) {
		return nil, errors.Invalid("invalid date %q: expected YYYY-MM-DD", date)
	}
	raw, err := m.provider.ReadSnapshot(date)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return nil, errors.NotFound("no snapshot for %s", date)
		}
		return nil, err
	}

	docs := make(map[string]documents.Document, len(raw))
	for name, data := range raw {
		doc, err := documents.Decode(data)
		if err != nil {
			logger.Warn("Skipping corrupt snapshot entry", "date", date, "document", name, "error", err)
			continue
		}
		docs[name] = doc
	}
	return docs, nil
}

// File returns one document from the snapshot for date.
func (m *Manager) File(date, name string) (documents.Document, error) {
	if !utils.IsValidDate(date) {
		return nil, errors.Invalid("invalid date %q: expected YYYY-MM-DD", date)
	}
	if !m.known(name) {
		return nil, errors.Invalid("unknown document %q", name)
	}

	docs, err := m.Snapshot(date)
	if err != nil {
		return nil, err
	}
	doc, ok := docs[name]
	if !ok {
		return nil, errors.NotFound("%s was not archived on %s", name, date)
	}
	return doc, nil
}

// Restore copies the snapshot for date back into the working set, re-dated
// to today so the next request does not roll it over. Stale documents are
// archived under their own dates first. Documents already dated today are
// overwritten. Returns the restored names.
func (m *Manager) Restore(date, today string) ([]string, error) {
	if !utils.IsValidDate(date) {
		return nil, errors.Invalid("invalid date %q: expected YYYY-MM-DD", date)
	}
	raw, err := m.provider.ReadSnapshot(date)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return nil, errors.NotFound("no snapshot for %s", date)
		}
		return nil, err
	}

	if _, err := m.ArchiveStale(today); err != nil {
		return nil, fmt.Errorf("failed to archive before restore: %w", err)
	}

	restored := []string{}
	for _, name := range m.names {
		data, ok := raw[name]
		if !ok {
			continue
		}
		doc, err := documents.Decode(data)
		if err != nil {
			logger.Warn("Skipping corrupt snapshot entry", "date", date, "document", name, "error", err)
			continue
		}
		doc.SetDate(today)
		if data, err = doc.Encode(); err != nil {
			return restored, fmt.Errorf("failed to encode %s: %w", name, err)
		}
		if err := m.provider.WriteDocument(name, data); err != nil {
			return restored, fmt.Errorf("failed to restore %s: %w", name, err)
		}
		restored = append(restored, name)
	}
	logger.Info("Restored snapshot", "date", date, "documents", len(restored))
	return restored, nil
}

// ArchiveStale snapshots every day other than today that the working set
// still carries. Returns the dates it archived or found already archived.
func (m *Manager) ArchiveStale(today string) ([]string, error) {
	archived := []string{}
	for _, stored := range m.storedDates() {
		if stored == today {
			continue
		}
		if err := m.Archive(stored, today); err != nil {
			return archived, fmt.Errorf("failed to archive %s: %w", stored, err)
		}
		archived = append(archived, stored)
	}
	return archived, nil
}

// storedDates returns the distinct valid dates carried by the working set.
func (m *Manager) storedDates() []string {
	seen := map[string]bool{}
	dates := []string{}
	for _, name := range m.names {
		data, err := m.provider.ReadDocument(name)
		if err != nil {
			continue
		}
		doc, err := documents.Decode(data)
		if err != nil {
			continue
		}
		date := doc.Date()
		if utils.IsValidDate(date) && !seen[date] {
			seen[date] = true
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)
	return dates
}

func (m *Manager) known(name string) bool {
	for _, n := range m.names {
		if n == name {
			return true
		}
	}
	return false
}
