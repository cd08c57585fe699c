// Package exifcodec wraps the EXIF container libraries behind a small tag
// store: typed first-match reads of the decoded tags, staged writes on an
// IFD builder, and a whole-file flush.
package exifcodec

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
	pngstructure "github.com/dsoprea/go-png-image-structure/v2"
)

// ErrUnsupportedFormat is returned for containers the codec cannot rewrite.
var ErrUnsupportedFormat = errors.New("unsupported container format")

// Format selects the container parser.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// IFD paths used for staged writes, in the builder's fully-qualified form.
const (
	IfdRoot = "IFD0"
	IfdExif = "IFD0/Exif0"
)

// FormatForMIME maps a sniffed MIME type to a supported Format.
func FormatForMIME(mime string) (Format, bool) {
	switch mime {
	case "image/jpeg":
		return FormatJPEG, true
	case "image/png":
		return FormatPNG, true
	}
	return "", false
}

// URational is an unsigned EXIF rational value.
type URational struct {
	Numerator   uint32
	Denominator uint32
}

// SRational is a signed EXIF rational value.
type SRational struct {
	Numerator   int32
	Denominator int32
}

// Store holds the decoded tags of one image file plus staged writes.
// It is exclusively owned by the Metadata aggregate that opened it.
type Store struct {
	format       Format
	jpegSegments *jpegstructure.SegmentList
	pngChunks    *pngstructure.ChunkSlice
	entries      []exif.ExifTag
	builder      *exif.IfdBuilder
}

// Open parses the container at path and decodes its EXIF block. A file
// without any EXIF block yields a Store with TagCount() == 0; writes are
// still possible (the builder starts from scratch).
func Open(path string, format Format) (*Store, error) {
	s := &Store{format: format}

	var rawExif []byte
	var exifErr error

	switch format {
	case FormatJPEG:
		intfc, err := jpegstructure.NewJpegMediaParser().ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse JPEG container: %w", err)
		}
		s.jpegSegments = intfc.(*jpegstructure.SegmentList)
		_, rawExif, exifErr = s.jpegSegments.Exif()
		s.builder, err = s.jpegSegments.ConstructExifBuilder()
		if err != nil {
			s.builder = newEmptyBuilder()
		}

	case FormatPNG:
		intfc, err := pngstructure.NewPngMediaParser().ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PNG container: %w", err)
		}
		s.pngChunks = intfc.(*pngstructure.ChunkSlice)
		_, rawExif, exifErr = s.pngChunks.Exif()
		s.builder, err = s.pngChunks.ConstructExifBuilder()
		if err != nil {
			s.builder = newEmptyBuilder()
		}

	default:
		return nil, ErrUnsupportedFormat
	}

	if exifErr == nil && len(rawExif) > 0 {
		entries, _, err := exif.GetFlatExifData(rawExif, &exif.ScanOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to decode EXIF block: %w", err)
		}
		s.entries = entries
	}

	return s, nil
}

// newEmptyBuilder creates a root IFD builder for files without EXIF.
func newEmptyBuilder() *exif.IfdBuilder {
	im := exifcommon.NewIfdMapping()
	if err := exifcommon.LoadStandardIfds(im); err != nil {
		// The standard table is compiled in; this cannot fail at runtime.
		panic(err)
	}
	ti := exif.NewTagIndex()
	return exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity,
		exifcommon.EncodeDefaultByteOrder)
}

// TagCount reports the number of tags decoded at open time.
func (s *Store) TagCount() int {
	return len(s.entries)
}

// GetString returns the first ASCII tag with the given name.
func (s *Store) GetString(name string) (string, bool) {
	for _, e := range s.entries {
		if e.TagName != name {
			continue
		}
		if v, ok := e.Value.(string); ok {
			return strings.TrimRight(v, "\x00"), true
		}
	}
	return "", false
}

// GetUint16 returns the first SHORT tag with the given name.
func (s *Store) GetUint16(name string) (uint16, bool) {
	for _, e := range s.entries {
		if e.TagName != name {
			continue
		}
		if v, ok := e.Value.([]uint16); ok && len(v) > 0 {
			return v[0], true
		}
	}
	return 0, false
}

// GetUint32 returns the first LONG tag with the given name. SHORT values
// are widened: dimension tags appear in the wild with either type.
func (s *Store) GetUint32(name string) (uint32, bool) {
	for _, e := range s.entries {
		if e.TagName != name {
			continue
		}
		switch v := e.Value.(type) {
		case []uint32:
			if len(v) > 0 {
				return v[0], true
			}
		case []uint16:
			if len(v) > 0 {
				return uint32(v[0]), true
			}
		}
	}
	return 0, false
}

// GetURational returns the first RATIONAL tag with the given name.
func (s *Store) GetURational(name string) (URational, bool) {
	for _, e := range s.entries {
		if e.TagName != name {
			continue
		}
		if v, ok := e.Value.([]exifcommon.Rational); ok && len(v) > 0 {
			return URational{Numerator: v[0].Numerator, Denominator: v[0].Denominator}, true
		}
	}
	return URational{}, false
}

// GetSRational returns the first SRATIONAL tag with the given name.
func (s *Store) GetSRational(name string) (SRational, bool) {
	for _, e := range s.entries {
		if e.TagName != name {
			continue
		}
		if v, ok := e.Value.([]exifcommon.SignedRational); ok && len(v) > 0 {
			return SRational{Numerator: v[0].Numerator, Denominator: v[0].Denominator}, true
		}
	}
	return SRational{}, false
}

// SetString stages an ASCII tag write.
func (s *Store) SetString(ifdPath, name, value string) error {
	ib, err := exif.GetOrCreateIbFromRootIb(s.builder, ifdPath)
	if err != nil {
		return fmt.Errorf("failed to resolve IFD %s: %w", ifdPath, err)
	}
	if err := ib.SetStandardWithName(name, value); err != nil {
		return fmt.Errorf("failed to set tag %s: %w", name, err)
	}
	return nil
}

// SetUint16 stages a SHORT tag write.
func (s *Store) SetUint16(ifdPath, name string, value uint16) error {
	ib, err := exif.GetOrCreateIbFromRootIb(s.builder, ifdPath)
	if err != nil {
		return fmt.Errorf("failed to resolve IFD %s: %w", ifdPath, err)
	}
	if err := ib.SetStandardWithName(name, []uint16{value}); err != nil {
		return fmt.Errorf("failed to set tag %s: %w", name, err)
	}
	return nil
}

// SetURational stages a RATIONAL tag write.
func (s *Store) SetURational(ifdPath, name string, value URational) error {
	ib, err := exif.GetOrCreateIbFromRootIb(s.builder, ifdPath)
	if err != nil {
		return fmt.Errorf("failed to resolve IFD %s: %w", ifdPath, err)
	}
	raw := []exifcommon.Rational{{Numerator: value.Numerator, Denominator: value.Denominator}}
	if err := ib.SetStandardWithName(name, raw); err != nil {
		return fmt.Errorf("failed to set tag %s: %w", name, err)
	}
	return nil
}

// SetSRational stages a SRATIONAL tag write.
func (s *Store) SetSRational(ifdPath, name string, value SRational) error {
	ib, err := exif.GetOrCreateIbFromRootIb(s.builder, ifdPath)
	if err != nil {
		return fmt.Errorf("failed to resolve IFD %s: %w", ifdPath, err)
	}
	raw := []exifcommon.SignedRational{{Numerator: value.Numerator, Denominator: value.Denominator}}
	if err := ib.SetStandardWithName(name, raw); err != nil {
		return fmt.Errorf("failed to set tag %s: %w", name, err)
	}
	return nil
}

// SetUint32 stages a LONG tag write.
func (s *Store) SetUint32(ifdPath, name string, value uint32) error {
	ib, err := exif.GetOrCreateIbFromRootIb(s.builder, ifdPath)
	if err != nil {
		return fmt.Errorf("failed to resolve IFD %s: %w", ifdPath, err)
	}
	if err := ib.SetStandardWithName(name, []uint32{value}); err != nil {
		return fmt.Errorf("failed to set tag %s: %w", name, err)
	}
	return nil
}

// WriteToFile applies the staged writes to the container and rewrites the
// whole file at path.
func (s *Store) WriteToFile(path string) error {
	b := new(bytes.Buffer)

	switch s.format {
	case FormatJPEG:
		if err := s.jpegSegments.SetExif(s.builder); err != nil {
			return fmt.Errorf("failed to update EXIF segment: %w", err)
		}
		if err := s.jpegSegments.Write(b); err != nil {
			return fmt.Errorf("failed to serialize JPEG: %w", err)
		}

	case FormatPNG:
		if err := s.pngChunks.SetExif(s.builder); err != nil {
			return fmt.Errorf("failed to update eXIf chunk: %w", err)
		}
		if err := s.pngChunks.WriteTo(b); err != nil {
			return fmt.Errorf("failed to serialize PNG: %w", err)
		}

	default:
		return ErrUnsupportedFormat
	}

	return os.WriteFile(path, b.Bytes(), 0644)
}
