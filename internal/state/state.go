// Package state persists which files a run has already normalized, so a
// re-run over the same tree skips them unless forced.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/pkg/types"
)

// Record describes one normalized file. Path is the location after any
// rename performed by the run that recorded it.
type Record struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Hash      string    `json:"hash,omitempty"`
	Fields    string    `json:"fields,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type State struct {
	mu       sync.RWMutex
	filePath string
	// Keyed by the file path at scan time.
	Processed map[string]Record `json:"processed"`
	LastRun   time.Time         `json:"last_run"`
}

func New(filePath string) *State {
	return &State{
		filePath:  filePath,
		Processed: make(map[string]Record),
	}
}

// Load reads the state file; a missing file yields an empty state.
func Load(filePath string) (*State, error) {
	s := New(filePath)

	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *State) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.filePath, data, 0644)
}

// Lookup returns the record for a scan path, if one exists.
func (s *State) Lookup(path string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.Processed[path]
	return r, ok
}

// MarkProcessed records a normalized file. newPath is its location after
// the save; fields is the committed field set.
func (s *State) MarkProcessed(scanPath, newPath string, size int64, hash string, fields types.TagSet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.Processed[scanPath] = Record{
		Path:      newPath,
		Size:      size,
		Hash:      hash,
		Fields:    fields.String(),
		Timestamp: now,
	}
	s.LastRun = now
}

// Forget drops the record for a scan path.
func (s *State) Forget(scanPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.Processed, scanPath)
}
