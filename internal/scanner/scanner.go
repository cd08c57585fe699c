// Package scanner walks a source tree and collects candidate image files
// by extension. Content sniffing happens later, at load time.
package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/pkg/types"
)

// DefaultExtensions are the extensions scanned when the config lists none.
var DefaultExtensions = []string{"jpg", "jpeg", "png"}

type Scanner struct {
	includeExt map[string]bool
}

func New(extensions []string) *Scanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	extMap := make(map[string]bool)
	for _, ext := range extensions {
		extMap[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	return &Scanner{includeExt: extMap}
}

// Scan walks root and returns the matching files in path order, so runs
// over the same tree process files in a stable sequence.
func (s *Scanner) Scan(root string) ([]types.FileEntry, error) {
	var entries []types.FileEntry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if !s.includeExt[ext] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		entries = append(entries, types.FileEntry{
			Path:      path,
			Name:      d.Name(),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			Extension: ext,
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}
