package config

import (
	"testing"

	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/pkg/types"
)

func TestPresetSaveLoadRoundTrip(t *testing.T) {
	pm, err := NewPresetManagerAt(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	cfg := &Config{
		Source:        "/photos",
		FixDimensions: true,
		FixRename:     true,
		Description:   "Holiday",
	}
	preset := ConfigToPreset(cfg, "holiday", "my holiday run")

	if err := pm.SavePreset(preset); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := pm.LoadPreset("holiday")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Name != "holiday" || loaded.Description != "my holiday run" {
		t.Errorf("unexpected preset: %+v", loaded)
	}
	if loaded.Run.Source != "/photos" || !loaded.Run.FixDimensions || !loaded.Run.FixRename {
		t.Errorf("unexpected run snapshot: %+v", loaded.Run)
	}

	back := PresetToConfig(loaded)
	if back.Source != "/photos" || !back.FixDimensions || back.Description != "Holiday" {
		t.Errorf("unexpected config: %+v", back)
	}
	// Ambient paths come from the defaults.
	if back.StateFile == "" {
		t.Error("defaults not applied")
	}
}

func TestSavePreset_EmptyName(t *testing.T) {
	pm, err := NewPresetManagerAt(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	if err := pm.SavePreset(&types.ConfigPreset{}); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestListAndDeletePresets(t *testing.T) {
	pm, err := NewPresetManagerAt(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	for _, name := range []string{"one", "two"} {
		preset := ConfigToPreset(DefaultConfig(), name, "")
		if err := pm.SavePreset(preset); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	presets, err := pm.ListPresets()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(presets) != 2 {
		t.Fatalf("expected 2 presets, got %d", len(presets))
	}

	if err := pm.DeletePreset("one"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	presets, err = pm.ListPresets()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(presets) != 1 || presets[0].Name != "two" {
		t.Fatalf("unexpected presets after delete: %+v", presets)
	}

	if err := pm.DeletePreset("missing"); err == nil {
		t.Fatal("expected error deleting missing preset")
	}
}
