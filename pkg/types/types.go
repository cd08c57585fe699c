// Package types defines core data structures used across PhotosNorm modules.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Tag identifies a logical metadata field tracked for modification.
type Tag uint8

const (
	TagDescription Tag = 1 << iota
	TagDate
	TagDimensions
	TagFileName
)

func (t Tag) String() string {
	switch t {
	case TagDescription:
		return "Description"
	case TagDate:
		return "Date"
	case TagDimensions:
		return "Dimensions"
	case TagFileName:
		return "FileName"
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

// allTags lists every Tag in display order.
var allTags = []Tag{TagDescription, TagDate, TagDimensions, TagFileName}

// TagSet records which logical fields changed since load or last save.
type TagSet uint8

func (s *TagSet) Insert(t Tag) {
	*s |= TagSet(t)
}

func (s *TagSet) Remove(t Tag) {
	*s &^= TagSet(t)
}

func (s TagSet) Contains(t Tag) bool {
	return s&TagSet(t) != 0
}

func (s TagSet) IsEmpty() bool {
	return s == 0
}

func (s *TagSet) Clear() {
	*s = 0
}

// String renders the set as a comma-joined list, or "None" when empty.
func (s TagSet) String() string {
	if s.IsEmpty() {
		return "None"
	}
	var names []string
	for _, t := range allTags {
		if s.Contains(t) {
			names = append(names, t.String())
		}
	}
	return strings.Join(names, ", ")
}

// CameraInfo is the camera/exposure description derived from EXIF at load
// time. Every field is independently optional: empty strings and zero
// ISO/Focal mean the source tags were absent.
type CameraInfo struct {
	Camera       string  `json:"camera,omitempty"`
	Exposure     string  `json:"exposure,omitempty"`
	ExposureBias string  `json:"exposure_bias,omitempty"`
	Aperture     string  `json:"aperture,omitempty"`
	ISO          uint16  `json:"iso,omitempty"`
	Focal        float64 `json:"focal,omitempty"`
	Flash        string  `json:"flash,omitempty"`
}

func (c CameraInfo) String() string {
	orElse := func(s, fallback string) string {
		if s == "" {
			return fallback
		}
		return s
	}

	iso := "Undefined"
	if c.ISO != 0 {
		iso = fmt.Sprintf("%d", c.ISO)
	}
	focal := "Undefined"
	if c.Focal != 0 {
		focal = fmt.Sprintf("%g mm", c.Focal)
	}

	return fmt.Sprintf("%s, Exposure: %s, Bias: %s, Aperture: %s, ISO: %s, Focal: %s, Flash: %s",
		orElse(c.Camera, "Unknown camera"),
		orElse(c.Exposure, "Undefined"),
		orElse(c.ExposureBias, "Undefined"),
		orElse(c.Aperture, "Undefined"),
		iso,
		focal,
		orElse(c.Flash, "Undefined"),
	)
}

// FileEntry represents a scanned image file.
type FileEntry struct {
	// Path is the absolute path to the file.
	Path string
	// Name is the base filename.
	Name string
	// Size is the file size in bytes.
	Size int64
	// ModTime is the file modification time.
	ModTime time.Time
	// Extension is the lowercase file extension without dot (e.g., "jpg").
	Extension string
}

// FixAction indicates what happened to a file during a normalize run.
type FixAction string

const (
	FixActionFixed     FixAction = "fixed"
	FixActionUnchanged FixAction = "unchanged"
	FixActionSkipped   FixAction = "skipped"
	FixActionWouldFix  FixAction = "would-fix"
	FixActionFailed    FixAction = "failed"
)

// FixResult reports the outcome of normalizing one file.
type FixResult struct {
	// Entry is the scanned source file.
	Entry FileEntry
	// Path is the file location after the run (differs from Entry.Path
	// when the file was renamed).
	Path string
	// Fields lists the fields committed by the save.
	Fields TagSet
	// Action indicates what was done.
	Action FixAction
	// Error contains the failure message if any.
	Error string
}

// ConflictPolicy defines how a batch run handles rename target collisions.
type ConflictPolicy string

const (
	// ConflictPolicyFail surfaces the collision as a save error.
	ConflictPolicyFail ConflictPolicy = "fail"
	// ConflictPolicySkip drops the rename for that file and keeps going.
	ConflictPolicySkip ConflictPolicy = "skip"
)

// CheckMethod defines how already-normalized files are recognized.
type CheckMethod string

const (
	CheckMethodNameSize CheckMethod = "name-size"
	CheckMethodHash     CheckMethod = "hash"
)

// RunSummary contains statistics for a completed normalize run.
type RunSummary struct {
	ScannedFiles int           `json:"scanned_files"`
	Processed    int           `json:"processed"`
	Fixed        int           `json:"fixed"`
	Renamed      int           `json:"renamed"`
	Unchanged    int           `json:"unchanged"`
	Skipped      int           `json:"skipped"`
	Failed       int           `json:"failed"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Duration     time.Duration `json:"duration"`
}

// RunConfig is the configuration snapshot stored with a history entry.
type RunConfig struct {
	Source         string         `json:"source"`
	FixDimensions  bool           `json:"fix_dimensions"`
	FixRename      bool           `json:"fix_rename"`
	Description    string         `json:"description,omitempty"`
	Date           string         `json:"date,omitempty"`
	ConflictPolicy ConflictPolicy `json:"conflict_policy"`
	CheckMethod    CheckMethod    `json:"check_method"`
	DryRun         bool           `json:"dry_run"`
	Backup         bool           `json:"backup"`
	Verify         bool           `json:"verify"`
	Force          bool           `json:"force"`
}

// RunStatus represents the overall status of a recorded run.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// RunHistoryEntry is one recorded normalize run.
type RunHistoryEntry struct {
	ID        string     `json:"id"`
	Summary   RunSummary `json:"summary"`
	Config    RunConfig  `json:"config"`
	Status    RunStatus  `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// RunHistory holds recorded runs, newest first.
type RunHistory struct {
	Entries []RunHistoryEntry `json:"entries"`
}

// UserSettings holds web UI preferences.
type UserSettings struct {
	Theme      string `json:"theme"`
	LastSource string `json:"last_source"`
}

// ConfigPreset represents a saved configuration preset.
type ConfigPreset struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Run         RunConfig `json:"run"`
	CreatedAt   time.Time `json:"created_at"`
}
