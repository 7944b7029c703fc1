// Package events appends and reads newline-delimited JSON record logs.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/limitless/internal/clock"
	"github.com/julianstephens/limitless/internal/documents"
	"github.com/julianstephens/limitless/internal/logger"
	"github.com/julianstephens/limitless/internal/storage"
)

// Log is one append-only record log. Records are never rewritten or pruned.
type Log struct {
	provider storage.Provider
	name     string
	clock    clock.Clock
}

func NewLog(provider storage.Provider, name string, c clock.Clock) *Log {
	return &Log{provider: provider, name: name, clock: c}
}

func (l *Log) Name() string {
	return l.name
}

// Append stores records in order, stamping a timestamp on any record that
// lacks one. It returns the number of records added.
func (l *Log) Append(records []map[string]any) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	now := documents.Timestamp(l.clock.Now())
	lines := make([][]byte, 0, len(records))
	for i, record := range records {
		if record == nil {
			record = map[string]any{}
		}
		if documents.Blank(record["timestamp"]) {
			record["timestamp"] = now
		}
		data, err := json.Marshal(record)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		lines = append(lines, data)
	}

	if err := l.provider.AppendLog(l.name, lines); err != nil {
		return 0, err
	}
	return len(lines), nil
}

// All returns every record in append order. Lines that do not parse as JSON
// objects are skipped.
func (l *Log) All() ([]map[string]any, error) {
	lines, err := l.provider.ReadLog(l.name)
	if err != nil {
		return nil, err
	}

	records := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		var record map[string]any
		if err := json.Unmarshal(line, &record); err != nil || record == nil {
			logger.Debug("Skipping unreadable log record", "log", l.name, "error", err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// Count returns the number of readable records.
func (l *Log) Count() (int, error) {
	records, err := l.All()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
