package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBackup_CopiesContentAndModTime(t *testing.T) {
	srcDir := t.TempDir()
	backupDir := filepath.Join(t.TempDir(), "backups")

	src := filepath.Join(srcDir, "photo.jpg")
	if err := os.WriteFile(src, []byte("original bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	modTime := time.Date(2020, 5, 1, 12, 0, 0, 0, time.Local)
	if err := os.Chtimes(src, modTime, modTime); err != nil {
		t.Fatal(err)
	}

	b := New(backupDir)
	dest, err := b.Backup(src)
	if err != nil {
		t.Fatalf("backup failed: %v", err)
	}
	if dest != filepath.Join(backupDir, "photo.jpg") {
		t.Fatalf("unexpected backup path: %q", dest)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	if string(data) != "original bytes" {
		t.Fatalf("unexpected backup content: %q", data)
	}

	info, err := os.Stat(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(modTime) {
		t.Errorf("mod time not preserved: %v", info.ModTime())
	}

	// No stray .part file.
	if _, err := os.Stat(dest + ".part"); !os.IsNotExist(err) {
		t.Error("partial file left behind")
	}
}

func TestBackup_UniqueNamesOnCollision(t *testing.T) {
	srcDir1 := t.TempDir()
	srcDir2 := t.TempDir()
	backupDir := t.TempDir()

	src1 := filepath.Join(srcDir1, "photo.jpg")
	src2 := filepath.Join(srcDir2, "photo.jpg")
	if err := os.WriteFile(src1, []byte("one"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src2, []byte("two"), 0644); err != nil {
		t.Fatal(err)
	}

	b := New(backupDir)
	dest1, err := b.Backup(src1)
	if err != nil {
		t.Fatalf("backup failed: %v", err)
	}
	dest2, err := b.Backup(src2)
	if err != nil {
		t.Fatalf("backup failed: %v", err)
	}

	if dest1 == dest2 {
		t.Fatalf("collision not resolved: %q", dest1)
	}
	if filepath.Base(dest2) != "photo_1.jpg" {
		t.Errorf("unexpected collision name: %q", dest2)
	}
}

func TestBackup_MissingSource(t *testing.T) {
	b := New(t.TempDir())
	if _, err := b.Backup(filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Fatal("expected error for missing source")
	}
}
