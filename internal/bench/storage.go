package bench

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	HistoryFile  = "benchmark-history.json"
	BaselineFile = "benchmark-baseline.json"
	LoadTestFile = "load-test-history.json"
)

// Storage persists benchmark history, baseline and load-test history as
// pretty-printed JSON arrays in one directory. Writes are whole-file
// read-modify-write, serialized per Storage value; separate processes sharing
// the directory are not coordinated.
type Storage struct {
	mu  sync.RWMutex
	dir string
}

// NewStorage returns storage rooted at dir. Nothing is created until the
// first write.
func NewStorage(dir string) *Storage {
	return &Storage{dir: dir}
}

// Dir returns the storage directory
func (s *Storage) Dir() string {
	return s.dir
}

// ReadHistory returns every persisted benchmark record, oldest first
func (s *Storage) ReadHistory() ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return readJSON[Record](s.path(HistoryFile))
}

// Persist appends rec to the benchmark history
func (s *Storage) Persist(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.path(HistoryFile)
	records, err := readJSON[Record](path)
	if err != nil {
		return err
	}
	return writeJSON(path, append(records, rec))
}

// ReadBaseline returns the baseline records
func (s *Storage) ReadBaseline() ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return readJSON[Record](s.path(BaselineFile))
}

// UpdateBaseline replaces the baseline with one record per mode stamped now.
// Records are written in AllModes order.
func (s *Storage) UpdateBaseline(results map[Mode]Result, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]Record, 0, len(results))
	for _, mode := range AllModes {
		if res, ok := results[mode]; ok {
			records = append(records, Record{Timestamp: now, Mode: mode, Result: res})
		}
	}
	return writeJSON(s.path(BaselineFile), records)
}

// BaselineMap indexes the baseline by mode; the last record for a mode wins
func (s *Storage) BaselineMap() (map[Mode]Record, error) {
	records, err := s.ReadBaseline()
	if err != nil {
		return nil, err
	}
	out := make(map[Mode]Record, len(records))
	for _, rec := range records {
		out[rec.Mode] = rec
	}
	return out, nil
}

// ReadLoadTests returns every persisted load test, oldest first
func (s *Storage) ReadLoadTests() ([]LoadTestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return readJSON[LoadTestRecord](s.path(LoadTestFile))
}

// PersistLoadTest appends rec to the load-test history
func (s *Storage) PersistLoadTest(rec LoadTestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.path(LoadTestFile)
	records, err := readJSON[LoadTestRecord](path)
	if err != nil {
		return err
	}
	return writeJSON(path, append(records, rec))
}

func (s *Storage) path(name string) string {
	return filepath.Join(s.dir, name)
}

// readJSON treats a missing file as an empty collection
func readJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []T{}, nil
		}
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &IOError{Op: "decode", Path: path, Err: err}
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func writeJSON[T any](path string, records []T) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &IOError{Op: "encode", Path: path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &IOError{Op: "mkdir", Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
