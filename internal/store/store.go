// Package store persists the last observed duration of each named operation.
//
// Persistence is best-effort: every I/O failure is logged at DEBUG and
// swallowed, so a broken cache directory can only cost the estimate, never
// the operation itself.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/psantana5/loadtime/pkg/logging"
)

// DefaultDirName is the cache directory created under ~/.cache.
const DefaultDirName = "loadtime"

const fileExt = ".json"

var errNoDir = errors.New("no store directory")

// Record is the persisted state of one operation.
type Record struct {
	// TotalTime is the duration of the last completed run in seconds, or nil.
	TotalTime *float64 `json:"total_time"`
}

// Seconds returns the recorded total and whether one exists.
func (r Record) Seconds() (float64, bool) {
	if r.TotalTime == nil {
		return 0, false
	}
	return *r.TotalTime, true
}

// WithSeconds returns a record holding s. Negative and non-finite values
// produce an empty record.
func WithSeconds(s float64) Record {
	if s < 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return Record{}
	}
	return Record{TotalTime: &s}
}

// Entry is a record together with where it lives on disk.
type Entry struct {
	Key       string    `json:"key" yaml:"key"`
	Path      string    `json:"path" yaml:"path"`
	TotalTime *float64  `json:"total_time" yaml:"total_time"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Store reads and writes records as one JSON file per operation.
type Store struct {
	dir    string
	logger *logging.Logger
}

// New creates a store rooted at dir. A nil logger discards diagnostics.
func New(dir string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Store{
		dir:    dir,
		logger: logger.WithField("component", "store"),
	}
}

// DefaultDir returns ~/.cache/<dirName>.
func DefaultDir(dirName string) (string, error) {
	if dirName == "" {
		dirName = DefaultDirName
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, ".cache", dirName), nil
}

// SanitizeName maps an operation name to a filesystem-safe key.
func SanitizeName(name string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(name)
}

// Dir returns the directory records are stored in.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the record file for name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, SanitizeName(name)+fileExt)
}

// Load returns the record for name and writes it back, so the file exists
// after the first access. Missing or unreadable records load as empty.
func (s *Store) Load(name string) Record {
	rec, err := s.read(name)
	if err != nil {
		s.logger.Debug("Discarding unreadable record", map[string]interface{}{
			"name":  name,
			"error": err.Error(),
		})
		rec = Record{}
	}

	s.Save(name, rec)
	return rec
}

// Save overwrites the record for name. Failures are logged and dropped.
func (s *Store) Save(name string, rec Record) {
	if rec.TotalTime != nil {
		rec = WithSeconds(*rec.TotalTime)
	}
	if err := s.write(name, rec); err != nil {
		s.logger.Debug("Failed to save record", map[string]interface{}{
			"name":  name,
			"error": err.Error(),
		})
	}
}

// Clear resets the recorded total for name.
func (s *Store) Clear(name string) {
	s.Save(name, Record{})
}

// List returns every record in the store sorted by key.
func (s *Store) List() ([]Entry, error) {
	if s.dir == "" {
		return nil, errNoDir
	}
	files, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), fileExt) {
			continue
		}
		key := strings.TrimSuffix(f.Name(), fileExt)
		rec, err := s.read(key)
		if err != nil {
			s.logger.Debug("Skipping unreadable record", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			continue
		}

		entry := Entry{
			Key:       key,
			Path:      filepath.Join(s.dir, f.Name()),
			TotalTime: rec.TotalTime,
		}
		if info, err := f.Info(); err == nil {
			entry.UpdatedAt = info.ModTime()
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func (s *Store) read(name string) (Record, error) {
	if s.dir == "" {
		return Record{}, errNoDir
	}
	data, err := os.ReadFile(s.Path(name))
	if os.IsNotExist(err) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to read record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to parse record: %w", err)
	}
	if rec.TotalTime != nil {
		rec = WithSeconds(*rec.TotalTime)
	}
	return rec, nil
}

// write replaces the record file atomically via a temp file and rename.
func (s *Store) write(name string, rec Record) error {
	if s.dir == "" {
		return errNoDir
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	path := s.Path(name)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp record: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp record: %w", err)
	}
	return nil
}
