package storage

import (
	"errors"
	"regexp"
)

var (
	// ErrNotFound is returned when a document, snapshot or snapshot entry does not exist
	ErrNotFound = errors.New("not found")
	// ErrSnapshotExists is returned by CreateSnapshot when the date was already archived
	ErrSnapshotExists = errors.New("snapshot already exists")
	// ErrInvalidName is returned for names that cannot be used as a storage key
	ErrInvalidName = errors.New("invalid name")
)

// Provider persists named JSON documents, write-once history snapshots and
// append-only record logs. Values are opaque bytes; decoding and stub
// semantics live in the daily package.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Documents
	ReadDocument(name string) ([]byte, error)
	WriteDocument(name string, data []byte) error
	ListDocuments() ([]string, error)

	// Snapshots
	// CreateSnapshot stores docs under date. It returns ErrSnapshotExists and
	// leaves the existing snapshot untouched if date was already archived.
	CreateSnapshot(date string, docs map[string][]byte) error
	HasSnapshot(date string) (bool, error)
	ReadSnapshot(date string) (map[string][]byte, error)
	// ListSnapshots returns archived dates in ascending order.
	ListSnapshots() ([]string, error)
	DeleteSnapshot(date string) error

	// Logs
	AppendLog(name string, records [][]byte) error
	ReadLog(name string) ([][]byte, error)

	// Utils
	Kind() string
	GetConfigPath() string
}

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// ValidateName rejects names that could escape the data directory or collide with reserved entries.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) || name == "history" || name == "logs" {
		return ErrInvalidName
	}
	return nil
}
