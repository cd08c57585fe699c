package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/pkg/types"
)

// PresetManager manages saved run configuration presets.
type PresetManager struct {
	presetsDir string
}

// NewPresetManager creates a preset manager rooted at the user data dir.
func NewPresetManager() (*PresetManager, error) {
	return NewPresetManagerAt(filepath.Join(DataDir(), "presets"))
}

// NewPresetManagerAt creates a preset manager rooted at dir.
func NewPresetManagerAt(dir string) (*PresetManager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create presets directory: %w", err)
	}
	return &PresetManager{presetsDir: dir}, nil
}

// ConfigToPreset converts a Config to a named ConfigPreset.
func ConfigToPreset(cfg *Config, name, description string) *types.ConfigPreset {
	return &types.ConfigPreset{
		Name:        name,
		Description: description,
		Run:         cfg.RunConfig(),
		CreatedAt:   time.Now(),
	}
}

// PresetToConfig converts a ConfigPreset back to a Config, filling the
// ambient settings from the defaults.
func PresetToConfig(preset *types.ConfigPreset) *Config {
	cfg := DefaultConfig()
	cfg.Source = preset.Run.Source
	cfg.FixDimensions = preset.Run.FixDimensions
	cfg.FixRename = preset.Run.FixRename
	cfg.Description = preset.Run.Description
	cfg.Date = preset.Run.Date
	cfg.ConflictPolicy = preset.Run.ConflictPolicy
	cfg.CheckMethod = preset.Run.CheckMethod
	cfg.DryRun = preset.Run.DryRun
	cfg.Backup = preset.Run.Backup
	cfg.Verify = preset.Run.Verify
	cfg.Force = preset.Run.Force
	return cfg
}

// SavePreset saves a preset to disk.
func (pm *PresetManager) SavePreset(preset *types.ConfigPreset) error {
	if preset.Name == "" {
		return fmt.Errorf("preset name cannot be empty")
	}

	filename := filepath.Join(pm.presetsDir, preset.Name+".json")
	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write preset file: %w", err)
	}

	return nil
}

// LoadPreset loads a preset from disk.
func (pm *PresetManager) LoadPreset(name string) (*types.ConfigPreset, error) {
	filename := filepath.Join(pm.presetsDir, name+".json")
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var preset types.ConfigPreset
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preset: %w", err)
	}

	return &preset, nil
}

// DeletePreset deletes a preset from disk.
func (pm *PresetManager) DeletePreset(name string) error {
	filename := filepath.Join(pm.presetsDir, name+".json")
	if err := os.Remove(filename); err != nil {
		return fmt.Errorf("failed to delete preset file: %w", err)
	}
	return nil
}

// ListPresets lists all available presets.
func (pm *PresetManager) ListPresets() ([]types.ConfigPreset, error) {
	entries, err := os.ReadDir(pm.presetsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets directory: %w", err)
	}

	var presets []types.ConfigPreset
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		name := entry.Name()[:len(entry.Name())-5] // Remove ".json"
		preset, err := pm.LoadPreset(name)
		if err != nil {
			continue // Skip invalid presets
		}
		presets = append(presets, *preset)
	}

	return presets, nil
}
