// Package namer computes normalized file names from capture metadata.
package namer

import (
	"strings"
	"time"
)

// NameTimeFormat is the date layout of a normalized file name.
const NameTimeFormat = "2006_01_02-15_04_05"

// forbidden are characters that cannot appear in a portable file name.
const forbidden = `/\:*?"<>|`

// TargetName returns the normalized name for a file captured at t: the
// formatted date, an optional " - description" suffix and the original
// extension (including its leading dot). The result is sanitized for use
// on common file systems.
func TargetName(t time.Time, description, ext string) string {
	name := t.Format(NameTimeFormat)
	if description != "" {
		name += " - " + description
	}
	name += ext
	return Sanitize(name)
}

// Sanitize replaces path separators, reserved characters and control
// characters with underscores.
func Sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(forbidden, r) {
			return '_'
		}
		return r
	}, name)
}
