package policy

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/pkg/types"
)

// UnchangedChecker recognizes files already processed by a previous run so
// they can be skipped. The name-size method trusts the recorded size; the
// hash method re-reads the file content.
type UnchangedChecker struct {
	method types.CheckMethod
}

func NewUnchangedChecker(method types.CheckMethod) *UnchangedChecker {
	return &UnchangedChecker{method: method}
}

// IsUnchanged reports whether entry still matches its recorded size and
// hash from the state file.
func (u *UnchangedChecker) IsUnchanged(entry types.FileEntry, recordedSize int64, recordedHash string) (bool, error) {
	if entry.Size != recordedSize {
		return false, nil
	}
	if u.method == types.CheckMethodNameSize {
		return true, nil
	}

	hash, err := HashFile(entry.Path)
	if err != nil {
		return false, err
	}
	return hash == recordedHash, nil
}

// HashFile returns the hex sha256 of the file content.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
