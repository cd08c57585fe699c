package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/pkg/types"
)

// UserDataManager manages persisted user data: web UI settings and the
// history of recorded runs.
type UserDataManager struct {
	dataDir string
}

// validatePath checks for potentially malicious characters in paths.
// Prevents XSS attacks by rejecting paths with HTML/script patterns.
// Note: <> alone are allowed as they're valid in Unix filenames.
func validatePath(path string) error {
	if path == "" {
		return nil // Empty paths are allowed
	}

	lowerPath := strings.ToLower(path)

	// Check for HTML tags (must have both < and tag name)
	htmlTagPatterns := []string{
		"<script",
		"</script",
		"<iframe",
		"<object",
		"<embed",
		"<img",
	}

	for _, pattern := range htmlTagPatterns {
		if strings.Contains(lowerPath, pattern) {
			return fmt.Errorf("path contains HTML tag pattern: %s", pattern)
		}
	}

	// Check for event handlers and javascript
	dangerousPatterns := []string{
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"onmouseover=",
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerPath, pattern) {
			return fmt.Errorf("path contains potentially malicious pattern: %s", pattern)
		}
	}

	// Check maximum length (paths longer than 4096 are suspicious)
	if len(path) > 4096 {
		return fmt.Errorf("path too long (max 4096 characters)")
	}

	return nil
}

// NewUserDataManager creates a manager rooted at the user data dir.
func NewUserDataManager() (*UserDataManager, error) {
	return NewUserDataManagerAt(DataDir())
}

// NewUserDataManagerAt creates a manager rooted at dir.
func NewUserDataManagerAt(dir string) (*UserDataManager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &UserDataManager{dataDir: dir}, nil
}

// SaveSettings saves user settings to disk.
func (m *UserDataManager) SaveSettings(settings *types.UserSettings) error {
	if err := validatePath(settings.LastSource); err != nil {
		return &ValidationError{
			Field:   "last_source",
			Message: fmt.Sprintf("invalid source path: %v", err),
		}
	}

	return m.writeJSON("settings.json", settings)
}

// LoadSettings loads user settings from disk.
// Returns default settings if the file doesn't exist.
func (m *UserDataManager) LoadSettings() (*types.UserSettings, error) {
	filename := filepath.Join(m.dataDir, "settings.json")
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return &types.UserSettings{Theme: "light"}, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings types.UserSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	return &settings, nil
}

// SaveRunHistory saves the run history to disk.
func (m *UserDataManager) SaveRunHistory(history *types.RunHistory) error {
	return m.writeJSON("run-history.json", history)
}

// LoadRunHistory loads the run history from disk.
// Returns an empty history if the file doesn't exist.
func (m *UserDataManager) LoadRunHistory() (*types.RunHistory, error) {
	filename := filepath.Join(m.dataDir, "run-history.json")
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return &types.RunHistory{Entries: []types.RunHistoryEntry{}}, nil
		}
		return nil, fmt.Errorf("failed to read run history file: %w", err)
	}

	var history types.RunHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run history: %w", err)
	}

	return &history, nil
}

// AddHistoryEntry prepends a run to the history with an automatic
// 100-entry limit.
func (m *UserDataManager) AddHistoryEntry(entry types.RunHistoryEntry) error {
	history, err := m.LoadRunHistory()
	if err != nil {
		return fmt.Errorf("failed to load run history: %w", err)
	}

	// Newest first.
	history.Entries = append([]types.RunHistoryEntry{entry}, history.Entries...)

	if len(history.Entries) > 100 {
		history.Entries = history.Entries[:100]
	}

	if err := m.SaveRunHistory(history); err != nil {
		return fmt.Errorf("failed to save run history: %w", err)
	}

	return nil
}

// writeJSON atomically writes v as indented JSON under the data dir.
func (m *UserDataManager) writeJSON(name string, v interface{}) error {
	filename := filepath.Join(m.dataDir, name)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	// Atomic write: write to temp file then rename
	tmpFile := filename + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmpFile, filename); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename %s: %w", name, err)
	}

	return nil
}
