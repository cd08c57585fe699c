// Package metadata owns the per-file metadata aggregate: loading EXIF and
// pixel data, dirty-tracked field updates, and the save transaction that
// commits staged tag writes and an optional rename in one call.
package metadata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/internal/exifcodec"
	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/internal/imagefile"
	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/internal/namer"
	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/pkg/types"
)

// ExifTimeFormat is the fixed timestamp layout used by the EXIF date tags.
const ExifTimeFormat = "2006:01:02 15:04:05"

var (
	// ErrUnknownFileType is returned when content sniffing finds no match.
	ErrUnknownFileType = errors.New("unknown file type")
	// ErrUnsupportedFileType is returned for recognized non-image files.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrNoExif is returned for images whose tag store is empty. Images
	// without any EXIF block are out of scope even when otherwise valid.
	ErrNoExif = errors.New("no EXIF data in this file")
)

// RenameError reports a failed rename during save. No tags were written.
type RenameError struct {
	From string
	To   string
	Err  error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("failed to rename %s to %s: %v", e.From, e.To, e.Err)
}

func (e *RenameError) Unwrap() error { return e.Err }

// TagWriteError reports a failed tag flush during save. A rename performed
// earlier in the same save is not rolled back.
type TagWriteError struct {
	Path string
	Err  error
}

func (e *TagWriteError) Error() string {
	return fmt.Sprintf("failed to write tags to %s: %v", e.Path, e.Err)
}

func (e *TagWriteError) Unwrap() error { return e.Err }

// tagStore is the codec contract the aggregate relies on.
type tagStore interface {
	TagCount() int
	GetString(name string) (string, bool)
	GetUint16(name string) (uint16, bool)
	GetUint32(name string) (uint32, bool)
	GetURational(name string) (exifcodec.URational, bool)
	GetSRational(name string) (exifcodec.SRational, bool)
	SetString(ifdPath, name, value string) error
	SetUint32(ifdPath, name string, value uint32) error
	WriteToFile(path string) error
}

// Metadata is the in-memory model of one image file's metadata. Setters
// stage tag writes immediately but nothing touches the disk until Save.
type Metadata struct {
	path        string
	store       tagStore
	width       uint32
	height      uint32
	date        time.Time
	description string
	camera      types.CameraInfo
	modified    types.TagSet
}

// Load builds a Metadata aggregate for the image at path. Each gate is a
// hard precondition: type sniffing, pixel dimension decode, then the tag
// store, which must contain at least one tag.
func Load(path string) (*Metadata, error) {
	kind, err := imagefile.Sniff(path)
	if err != nil {
		if errors.Is(err, imagefile.ErrUnknownFormat) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFileType, path)
		}
		return nil, err
	}
	if !kind.IsImage() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, kind.MIME)
	}

	width, height, err := imagefile.Dimensions(path)
	if err != nil {
		return nil, err
	}

	format, ok := exifcodec.FormatForMIME(kind.MIME)
	if !ok {
		return nil, fmt.Errorf("cannot read EXIF container for %s: %w",
			kind.MIME, exifcodec.ErrUnsupportedFormat)
	}
	store, err := exifcodec.Open(path, format)
	if err != nil {
		return nil, err
	}
	if store.TagCount() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoExif, path)
	}

	m := &Metadata{
		path:   path,
		store:  store,
		width:  width,
		height: height,
	}

	// First present date tag wins; an unparsable value means no date,
	// not an error.
	if raw, ok := firstString(store, "DateTimeOriginal", "DateTimeDigitized"); ok {
		if date, err := time.ParseInLocation(ExifTimeFormat, raw, time.Local); err == nil {
			m.date = date
		}
	}

	m.description, _ = store.GetString("ImageDescription")
	m.camera = deriveCameraInfo(store)

	return m, nil
}

func firstString(store tagStore, names ...string) (string, bool) {
	for _, name := range names {
		if v, ok := store.GetString(name); ok {
			return v, true
		}
	}
	return "", false
}

// Path returns the current file location, updated in place on rename.
func (m *Metadata) Path() string { return m.path }

// Width returns the pixel width read from the image data.
func (m *Metadata) Width() uint32 { return m.width }

// Height returns the pixel height read from the image data.
func (m *Metadata) Height() uint32 { return m.height }

// Date returns the capture date, or the zero time when unknown.
func (m *Metadata) Date() time.Time { return m.date }

// ExifDate returns the capture date in EXIF form, or "" when unknown.
func (m *Metadata) ExifDate() string {
	if m.date.IsZero() {
		return ""
	}
	return m.date.Format(ExifTimeFormat)
}

// Description returns the image description, or "" when absent.
func (m *Metadata) Description() string { return m.description }

// CameraInfo returns the camera description derived at load time.
func (m *Metadata) CameraInfo() types.CameraInfo { return m.camera }

// Modified returns the set of fields staged since load or last save.
func (m *Metadata) Modified() types.TagSet { return m.modified }

// SetDescription updates the description. Setting the current value is a
// no-op. The file is not modified until Save.
func (m *Metadata) SetDescription(description string) error {
	if m.description == description {
		return nil
	}
	if err := m.store.SetString(exifcodec.IfdRoot, "ImageDescription", description); err != nil {
		return err
	}
	m.description = description
	m.modified.Insert(types.TagDescription)
	return nil
}

// SetDate updates the capture date. Both date tags are kept in sync: the
// model has one date concept surfaced through two tags. The file is not
// modified until Save.
func (m *Metadata) SetDate(date time.Time) error {
	if !m.date.IsZero() && m.date.Equal(date) {
		return nil
	}
	raw := date.Format(ExifTimeFormat)
	if err := m.store.SetString(exifcodec.IfdExif, "DateTimeOriginal", raw); err != nil {
		return err
	}
	if err := m.store.SetString(exifcodec.IfdExif, "DateTimeDigitized", raw); err != nil {
		return err
	}
	m.date = date
	m.modified.Insert(types.TagDate)
	return nil
}

// SetDateFromExif parses an EXIF date string and delegates to SetDate.
// On parse failure the aggregate is left unchanged.
func (m *Metadata) SetDateFromExif(raw string) error {
	date, err := time.ParseInLocation(ExifTimeFormat, raw, time.Local)
	if err != nil {
		return fmt.Errorf("cannot parse date %q: %w", raw, err)
	}
	return m.SetDate(date)
}

// FixDimensions compares the EXIF dimension tags against the true pixel
// dimensions and stages corrected values on mismatch. Absent tags count
// as mismatched. Reports whether a fix was staged. The file is not
// modified until Save.
func (m *Metadata) FixDimensions() (bool, error) {
	width, wok := m.store.GetUint32("PixelXDimension")
	height, hok := m.store.GetUint32("PixelYDimension")

	if wok && hok && width == m.width && height == m.height {
		return false, nil
	}

	if err := m.store.SetUint32(exifcodec.IfdExif, "PixelXDimension", m.width); err != nil {
		return false, err
	}
	if err := m.store.SetUint32(exifcodec.IfdExif, "PixelYDimension", m.height); err != nil {
		return false, err
	}
	m.modified.Insert(types.TagDimensions)
	return true, nil
}

// FixFileName marks the file to be renamed after its capture date. The
// target name is computed at save time so that SetDescription/SetDate
// calls made in the same session are reflected in it.
func (m *Metadata) FixFileName() {
	m.modified.Insert(types.TagFileName)
}

// RenameTarget returns the path a save with the FileName field staged
// would rename the file to. ok is false when no date is known.
func (m *Metadata) RenameTarget() (string, bool) {
	if m.date.IsZero() {
		return "", false
	}
	name := namer.TargetName(m.date, m.description, filepath.Ext(m.path))
	return filepath.Join(filepath.Dir(m.path), name), true
}

// Save commits the staged changes: rename first (when the FileName field
// is staged and a target can be computed), then the tag flush. The order
// guarantees a failed rename leaves the file untouched; the reverse does
// not hold — a tag-write failure after a successful rename leaves the
// file renamed with stale tags, the modified set intact, and a retried
// Save will detect that no rename is needed and retry only the write.
// Returns the set of fields committed; an empty modified set is a no-op.
func (m *Metadata) Save() (types.TagSet, error) {
	if m.modified.IsEmpty() {
		return 0, nil
	}

	if m.modified.Contains(types.TagFileName) {
		target, ok := m.RenameTarget()
		if !ok || filepath.Base(target) == filepath.Base(m.path) {
			// No date to derive a name from, or already well named.
			m.modified.Remove(types.TagFileName)
		} else {
			if err := renameNoReplace(m.path, target); err != nil {
				return 0, &RenameError{From: m.path, To: target, Err: err}
			}
			m.path = target
		}
	}

	// The set may have drained to empty above; nothing is staged then.
	if m.modified.IsEmpty() {
		return 0, nil
	}

	if err := m.store.WriteToFile(m.path); err != nil {
		return 0, &TagWriteError{Path: m.path, Err: err}
	}

	saved := m.modified
	m.modified.Clear()
	return saved, nil
}

// renameNoReplace renames without overwriting an existing target.
func renameNoReplace(from, to string) error {
	if _, err := os.Stat(to); err == nil {
		return fmt.Errorf("target already exists: %s", to)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.Rename(from, to)
}
