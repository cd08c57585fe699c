package config

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/pkg/types"
)

func TestSettingsRoundTrip(t *testing.T) {
	m, err := NewUserDataManagerAt(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	// Missing file yields defaults.
	settings, err := m.LoadSettings()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if settings.Theme != "light" {
		t.Errorf("unexpected default theme: %q", settings.Theme)
	}

	settings.Theme = "dark"
	settings.LastSource = "/photos"
	if err := m.SaveSettings(settings); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := m.LoadSettings()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Theme != "dark" || loaded.LastSource != "/photos" {
		t.Fatalf("unexpected settings: %+v", loaded)
	}
}

func TestSaveSettings_RejectsMaliciousPath(t *testing.T) {
	m, err := NewUserDataManagerAt(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	err = m.SaveSettings(&types.UserSettings{LastSource: "<script>alert(1)</script>"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRunHistory_NewestFirstAndCapped(t *testing.T) {
	m, err := NewUserDataManagerAt(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	// Missing file yields empty history.
	history, err := m.LoadRunHistory()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(history.Entries) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(history.Entries))
	}

	for i := 0; i < 3; i++ {
		entry := types.RunHistoryEntry{
			ID:        fmt.Sprintf("run-%d", i),
			Status:    types.RunStatusSuccess,
			CreatedAt: time.Now(),
		}
		if err := m.AddHistoryEntry(entry); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	history, err = m.LoadRunHistory()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(history.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(history.Entries))
	}
	if history.Entries[0].ID != "run-2" {
		t.Errorf("newest entry must be first: %q", history.Entries[0].ID)
	}
}

func TestRunHistory_Limit(t *testing.T) {
	m, err := NewUserDataManagerAt(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	history := &types.RunHistory{}
	for i := 0; i < 100; i++ {
		history.Entries = append(history.Entries, types.RunHistoryEntry{ID: fmt.Sprintf("run-%d", i)})
	}
	if err := m.SaveRunHistory(history); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := m.AddHistoryEntry(types.RunHistoryEntry{ID: "run-new"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	loaded, err := m.LoadRunHistory()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.Entries) != 100 {
		t.Fatalf("history must cap at 100, got %d", len(loaded.Entries))
	}
	if loaded.Entries[0].ID != "run-new" {
		t.Errorf("newest entry must survive the cap: %q", loaded.Entries[0].ID)
	}
}

func TestValidatePath(t *testing.T) {
	cases := []struct {
		path string
		ok   bool
	}{
		{"", true},
		{"/photos/2020", true},
		{"/photos/<weird> name", true},
		{"<script>", false},
		{"javascript:alert(1)", false},
		{"/a/onerror=x", false},
	}
	for _, c := range cases {
		err := validatePath(c.path)
		if c.ok && err != nil {
			t.Errorf("validatePath(%q) unexpected error: %v", c.path, err)
		}
		if !c.ok && err == nil {
			t.Errorf("validatePath(%q) expected error", c.path)
		}
	}
}
