package storage

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/julianstephens/limitless/internal/constants"
	"github.com/julianstephens/limitless/internal/utils"
)

const documentSuffix = ".json"

// FileStore keeps one JSON file per document in a flat directory,
// one history/<date>/ directory per snapshot and one .jsonl file per log.
type FileStore struct {
	dir   string
	logMu sync.Mutex
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Init() error {
	if err := os.MkdirAll(s.historyDir(), 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

func (s *FileStore) Load() error {
	info, err := os.Stat(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
		}
		return fmt.Errorf("failed to read data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data path is not a directory: %s", s.dir)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) Kind() string {
	return constants.StorageFile
}

func (s *FileStore) GetConfigPath() string {
	return s.dir
}

func (s *FileStore) historyDir() string {
	return filepath.Join(s.dir, constants.HistoryDirName)
}

func (s *FileStore) documentPath(name string) string {
	return filepath.Join(s.dir, name+documentSuffix)
}

func (s *FileStore) ReadDocument(name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.documentPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read document %s: %w", name, err)
	}
	return data, nil
}

func (s *FileStore) WriteDocument(name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return writeFileAtomic(s.documentPath(name), data)
}

func (s *FileStore) ListDocuments() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), documentSuffix) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), documentSuffix)
		if ValidateName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileStore) CreateSnapshot(date string, docs map[string][]byte) error {
	if !utils.IsValidDate(date) {
		return ErrInvalidName
	}
	if err := os.MkdirAll(s.historyDir(), 0700); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	final := filepath.Join(s.historyDir(), date)
	if _, err := os.Stat(final); err == nil {
		return ErrSnapshotExists
	}

	// Staged in a hidden directory and renamed into place; a partial snapshot is never visible.
	staging, err := os.MkdirTemp(s.historyDir(), "."+date+"-")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	for name, data := range docs {
		if err := ValidateName(name); err != nil {
			_ = os.RemoveAll(staging)
			return fmt.Errorf("snapshot entry %q: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(staging, name+documentSuffix), data, 0600); err != nil {
			_ = os.RemoveAll(staging)
			return fmt.Errorf("failed to write snapshot entry %s: %w", name, err)
		}
	}

	if err := os.Rename(staging, final); err != nil {
		_ = os.RemoveAll(staging)
		if _, statErr := os.Stat(final); statErr == nil {
			return ErrSnapshotExists
		}
		return fmt.Errorf("failed to finalize snapshot %s: %w", date, err)
	}
	return nil
}

func (s *FileStore) HasSnapshot(date string) (bool, error) {
	if !utils.IsValidDate(date) {
		return false, ErrInvalidName
	}
	info, err := os.Stat(filepath.Join(s.historyDir(), date))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

func (s *FileStore) ReadSnapshot(date string) (map[string][]byte, error) {
	if !utils.IsValidDate(date) {
		return nil, ErrInvalidName
	}
	dir := filepath.Join(s.historyDir(), date)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", date, err)
	}

	docs := make(map[string][]byte, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), documentSuffix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot entry %s: %w", entry.Name(), err)
		}
		docs[strings.TrimSuffix(entry.Name(), documentSuffix)] = data
	}
	return docs, nil
}

func (s *FileStore) ListSnapshots() ([]string, error) {
	entries, err := os.ReadDir(s.historyDir())
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	dates := []string{}
	for _, entry := range entries {
		if entry.IsDir() && utils.IsValidDate(entry.Name()) {
			dates = append(dates, entry.Name())
		}
	}
	sort.Strings(dates)
	return dates, nil
}

func (s *FileStore) DeleteSnapshot(date string) error {
	if !utils.IsValidDate(date) {
		return ErrInvalidName
	}
	return os.RemoveAll(filepath.Join(s.historyDir(), date))
}

func (s *FileStore) logPath(name string) string {
	return filepath.Join(s.dir, name+constants.LogFileSuffix)
}

func (s *FileStore) AppendLog(name string, records [][]byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, record := range records {
		if bytes.ContainsAny(record, "\r\n") {
			return fmt.Errorf("log record for %s spans multiple lines", name)
		}
		buf.Write(record)
		buf.WriteByte('\n')
	}

	s.logMu.Lock()
	defer s.logMu.Unlock()

	f, err := os.OpenFile(s.logPath(name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log %s: %w", name, err)
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to append to log %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) ReadLog(name string) ([][]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	f, err := os.Open(s.logPath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return [][]byte{}, nil
		}
		return nil, fmt.Errorf("failed to open log %s: %w", name, err)
	}
	defer f.Close()

	records := [][]byte{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		records = append(records, append([]byte(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log %s: %w", name, err)
	}
	return records, nil
}

// writeFileAtomic writes to a temporary file and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove temporary file %s: %v\n", tempPath, removeErr)
		}
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
