// Package verify cross-checks committed tag writes with an independent
// EXIF decoder, so a codec bug cannot silently corrupt a whole run.
package verify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/pkg/types"
)

type Verifier struct{}

func New() *Verifier {
	return &Verifier{}
}

// Verify re-reads the file at path and checks every committed field
// against the values the save claims to have written. The independent
// decoder only reads JPEG containers; PNG files are accepted unchecked.
func (v *Verifier) Verify(path, description, exifDate string, width, height uint32, fields types.TagSet) error {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("verify: cannot open %s: %w", path, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return fmt.Errorf("verify: cannot decode EXIF in %s: %w", path, err)
	}

	if fields.Contains(types.TagDescription) {
		got, err := stringField(x, exif.ImageDescription)
		if err != nil {
			return fmt.Errorf("verify: description missing in %s: %w", path, err)
		}
		if got != description {
			return fmt.Errorf("verify: description mismatch in %s: wrote %q, read %q", path, description, got)
		}
	}

	if fields.Contains(types.TagDate) {
		got, err := stringField(x, exif.DateTimeOriginal)
		if err != nil {
			return fmt.Errorf("verify: date missing in %s: %w", path, err)
		}
		if got != exifDate {
			return fmt.Errorf("verify: date mismatch in %s: wrote %q, read %q", path, exifDate, got)
		}
	}

	if fields.Contains(types.TagDimensions) {
		gotW, err := intField(x, exif.PixelXDimension)
		if err != nil {
			return fmt.Errorf("verify: width missing in %s: %w", path, err)
		}
		gotH, err := intField(x, exif.PixelYDimension)
		if err != nil {
			return fmt.Errorf("verify: height missing in %s: %w", path, err)
		}
		if uint32(gotW) != width || uint32(gotH) != height {
			return fmt.Errorf("verify: dimension mismatch in %s: wrote %dx%d, read %dx%d",
				path, width, height, gotW, gotH)
		}
	}

	return nil
}

func stringField(x *exif.Exif, name exif.FieldName) (string, error) {
	tag, err := x.Get(name)
	if err != nil {
		return "", err
	}
	return tag.StringVal()
}

func intField(x *exif.Exif, name exif.FieldName) (int, error) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, err
	}
	return tag.Int(0)
}
