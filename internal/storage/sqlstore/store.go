// Package sqlstore implements storage.Provider on top of database/sql.
// The sqlite and postgres packages embed Store and supply connection setup.
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/limitless/internal/constants"
	"github.com/julianstephens/limitless/internal/logger"
	"github.com/julianstephens/limitless/internal/migration"
	"github.com/julianstephens/limitless/internal/storage"
	"github.com/julianstephens/limitless/internal/utils"
	"github.com/julianstephens/limitless/migrations"
)

type Store struct {
	db      *sql.DB
	dialect string
	target  string
}

// New returns a Store for dialect ("sqlite" or "postgres"). target is what
// GetConfigPath reports.
func New(dialect, target string) *Store {
	return &Store{dialect: dialect, target: target}
}

// Attach sets the open database handle.
func (s *Store) Attach(db *sql.DB) {
	s.db = db
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) Kind() string {
	return s.dialect
}

func (s *Store) GetConfigPath() string {
	return s.target
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, s.dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s migrations: %w", s.dialect, err)
	}
	return migration.NewRunner(s.db, subFS, s.dialect), nil
}

// Migrate applies pending schema migrations.
func (s *Store) Migrate() error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	_, err = runner.ApplyMigrations(func(msg string) {
		logger.Info(msg, "storage", s.dialect)
	})
	return err
}

// ValidateSchema fails unless the database is at the embedded schema version.
func (s *Store) ValidateSchema() error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != constants.StoragePostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) ready() error {
	if s.db == nil {
		return fmt.Errorf("%s storage is not open", s.dialect)
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(constants.TimestampFormat)
}

func (s *Store) ReadDocument(name string) ([]byte, error) {
	if err := storage.ValidateName(name); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	var body string
	err := s.db.QueryRow(s.rebind("SELECT body FROM documents WHERE name = ?"), name).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read document %s: %w", name, err)
	}
	return []byte(body), nil
}

func (s *Store) WriteDocument(name string, data []byte) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.db.Exec(s.rebind(`
		INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`), name, string(data), now())
	if err != nil {
		return fmt.Errorf("failed to write document %s: %w", name, err)
	}
	return nil
}

func (s *Store) ListDocuments() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query("SELECT name FROM documents ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) CreateSnapshot(date string, docs map[string][]byte) error {
	if !utils.IsValidDate(date) {
		return storage.ErrInvalidName
	}
	for name := range docs {
		if err := storage.ValidateName(name); err != nil {
			return fmt.Errorf("snapshot entry %q: %w", name, err)
		}
	}
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot %s: %w", date, err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRow(s.rebind("SELECT COUNT(*) FROM snapshots WHERE snapshot_date = ?"), date).Scan(&count); err != nil {
		return fmt.Errorf("failed to check snapshot %s: %w", date, err)
	}
	if count > 0 {
		return storage.ErrSnapshotExists
	}

	if _, err := tx.Exec(s.rebind("INSERT INTO snapshots (snapshot_date, created_at) VALUES (?, ?)"), date, now()); err != nil {
		return fmt.Errorf("failed to create snapshot %s: %w", date, err)
	}
	for name, data := range docs {
		if _, err := tx.Exec(s.rebind("INSERT INTO snapshot_entries (snapshot_date, name, body) VALUES (?, ?, ?)"), date, name, string(data)); err != nil {
			return fmt.Errorf("failed to write snapshot entry %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot %s: %w", date, err)
	}
	return nil
}

func (s *Store) HasSnapshot(date string) (bool, error) {
	if !utils.IsValidDate(date) {
		return false, storage.ErrInvalidName
	}
	if err := s.ready(); err != nil {
		return false, err
	}
	var count int
	if err := s.db.QueryRow(s.rebind("SELECT COUNT(*) FROM snapshots WHERE snapshot_date = ?"), date).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check snapshot %s: %w", date, err)
	}
	return count > 0, nil
}

func (s *Store) ReadSnapshot(date string) (map[string][]byte, error) {
	exists, err := s.HasSnapshot(date)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, storage.ErrNotFound
	}

	rows, err := s.db.Query(s.rebind("SELECT name, body FROM snapshot_entries WHERE snapshot_date = ?"), date)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", date, err)
	}
	defer rows.Close()

	docs := make(map[string][]byte)
	for rows.Next() {
		var name, body string
		if err := rows.Scan(&name, &body); err != nil {
			return nil, err
		}
		docs[name] = []byte(body)
	}
	return docs, rows.Err()
}

func (s *Store) ListSnapshots() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query("SELECT snapshot_date FROM snapshots ORDER BY snapshot_date")
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	dates := []string{}
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		dates = append(dates, date)
	}
	return dates, rows.Err()
}

func (s *Store) DeleteSnapshot(date string) error {
	if !utils.IsValidDate(date) {
		return storage.ErrInvalidName
	}
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete of snapshot %s: %w", date, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(s.rebind("DELETE FROM snapshot_entries WHERE snapshot_date = ?"), date); err != nil {
		return fmt.Errorf("failed to delete snapshot entries %s: %w", date, err)
	}
	if _, err := tx.Exec(s.rebind("DELETE FROM snapshots WHERE snapshot_date = ?"), date); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", date, err)
	}
	return tx.Commit()
}

func (s *Store) AppendLog(name string, records [][]byte) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin append to log %s: %w", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	created := now()
	for _, record := range records {
		if _, err := tx.Exec(s.rebind("INSERT INTO log_records (log, body, created_at) VALUES (?, ?, ?)"), name, string(record), created); err != nil {
			return fmt.Errorf("failed to append to log %s: %w", name, err)
		}
	}
	return tx.Commit()
}

func (s *Store) ReadLog(name string) ([][]byte, error) {
	if err := storage.ValidateName(name); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(s.rebind("SELECT body FROM log_records WHERE log = ? ORDER BY id"), name)
	if err != nil {
		return nil, fmt.Errorf("failed to read log %s: %w", name, err)
	}
	defer rows.Close()

	records := [][]byte{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		records = append(records, []byte(body))
	}
	return records, rows.Err()
}
