package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/pkg/types"
)

func writeEntry(t *testing.T, dir, name, content string) types.FileEntry {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	return types.FileEntry{Path: path, Name: name, Size: info.Size()}
}

func TestUnchangedChecker_NameSize(t *testing.T) {
	dir := t.TempDir()
	entry := writeEntry(t, dir, "a.jpg", "same size")

	c := NewUnchangedChecker(types.CheckMethodNameSize)

	ok, err := c.IsUnchanged(entry, entry.Size, "")
	if err != nil || !ok {
		t.Fatalf("matching size must be unchanged: %v %v", ok, err)
	}

	ok, err = c.IsUnchanged(entry, entry.Size+1, "")
	if err != nil || ok {
		t.Fatalf("differing size must not be unchanged: %v %v", ok, err)
	}
}

func TestUnchangedChecker_Hash(t *testing.T) {
	dir := t.TempDir()
	entry := writeEntry(t, dir, "a.jpg", "content")

	hash, err := HashFile(entry.Path)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	c := NewUnchangedChecker(types.CheckMethodHash)

	ok, err := c.IsUnchanged(entry, entry.Size, hash)
	if err != nil || !ok {
		t.Fatalf("matching hash must be unchanged: %v %v", ok, err)
	}

	ok, err = c.IsUnchanged(entry, entry.Size, "deadbeef")
	if err != nil || ok {
		t.Fatalf("differing hash must not be unchanged: %v %v", ok, err)
	}
}

func TestHashFile_Deterministic(t *testing.T) {
	dir := t.TempDir()
	entry := writeEntry(t, dir, "a.jpg", "payload")

	h1, err := HashFile(entry.Path)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	h2, err := HashFile(entry.Path)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if h1 != h2 || len(h1) != 64 {
		t.Fatalf("unexpected hashes: %q %q", h1, h2)
	}
}
