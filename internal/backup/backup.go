// Package backup copies originals aside before a run mutates them.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type Backupper struct {
	dir string
}

func New(dir string) *Backupper {
	return &Backupper{dir: dir}
}

// Backup copies the file at path into the backup directory, preserving its
// base name and modification time. The copy goes through a .part file so a
// crash never leaves a truncated backup behind. Returns the backup path.
func (b *Backupper) Backup(path string) (string, error) {
	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return "", err
	}

	dest := uniqueName(filepath.Join(b.dir, filepath.Base(path)))
	partPath := dest + ".part"

	if err := atomicCopy(path, partPath, dest); err != nil {
		os.Remove(partPath)
		return "", fmt.Errorf("failed to back up %s: %w", path, err)
	}
	return dest, nil
}

// uniqueName appends _1, _2, ... until the name is free.
func uniqueName(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)

	for i := 1; i < 10000; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
	return path
}

func atomicCopy(src, partDest, finalDest string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(partDest)
	if err != nil {
		return err
	}

	_, err = io.Copy(dstFile, srcFile)
	if closeErr := dstFile.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	// Preserve modification time
	info, err := srcFile.Stat()
	if err == nil {
		os.Chtimes(partDest, info.ModTime(), info.ModTime())
	}

	return os.Rename(partDest, finalDest)
}
