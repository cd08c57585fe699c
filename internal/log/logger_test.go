package log

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/pkg/types"
)

func fixResult() types.FixResult {
	var fields types.TagSet
	fields.Insert(types.TagDescription)
	fields.Insert(types.TagFileName)

	return types.FixResult{
		Entry:  types.FileEntry{Path: "/photos/IMG_1.jpg", Name: "IMG_1.jpg"},
		Path:   "/photos/2006_10_29-16_27_21.jpg",
		Fields: fields,
		Action: types.FixActionFixed,
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "run.log")
	l, err := New(logPath, true, false)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	l.LogFix(fixResult(), 5*time.Millisecond)
	l.Info("run complete")
	if err := l.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}

	var entry LogEntry
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid json log line: %v", err)
	}
	if entry.Level != "INFO" {
		t.Errorf("unexpected level: %q", entry.Level)
	}
	if entry.Path != "/photos/IMG_1.jpg" {
		t.Errorf("unexpected path: %q", entry.Path)
	}
	if entry.NewPath != "/photos/2006_10_29-16_27_21.jpg" {
		t.Errorf("unexpected new path: %q", entry.NewPath)
	}
	if entry.Fields != "Description, FileName" {
		t.Errorf("unexpected fields: %q", entry.Fields)
	}
	if entry.Action != types.FixActionFixed {
		t.Errorf("unexpected action: %q", entry.Action)
	}
}

func TestLogger_TextOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")
	l, err := New(logPath, false, true)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	result := fixResult()
	result.Action = types.FixActionFailed
	result.Error = "disk full"
	l.LogFix(result, 0)
	if err := l.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "ERROR") {
		t.Errorf("failed result must log at ERROR: %q", line)
	}
	if !strings.Contains(line, "disk full") {
		t.Errorf("error message missing: %q", line)
	}
}

func TestLogger_ErrorEntry(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")
	l, err := New(logPath, true, false)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	l.Error("cannot scan source", os.ErrPermission)
	if err := l.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}

	var entry LogEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("invalid json log line: %v", err)
	}
	if entry.Level != "ERROR" || entry.Error == "" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}
