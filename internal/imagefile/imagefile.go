// Package imagefile identifies image files by content and reads pixel
// dimensions from the image data.
package imagefile

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/h2non/filetype"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnknownFormat is returned when no magic-byte signature matches.
var ErrUnknownFormat = errors.New("unknown file format")

// sniffLen is the number of leading bytes needed to match any signature
// known to the filetype matcher.
const sniffLen = 261

// Kind describes a detected file format.
type Kind struct {
	// MIME is the detected MIME type (e.g. "image/jpeg").
	MIME string
	// Extension is the canonical extension for the format, without dot.
	Extension string
}

// IsImage reports whether the detected MIME type is in the image family.
func (k Kind) IsImage() bool {
	return strings.HasPrefix(k.MIME, "image/")
}

// Sniff identifies a file by its magic bytes. The file extension is never
// consulted.
func Sniff(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return Kind{}, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Kind{}, err
	}

	t, err := filetype.Match(head[:n])
	if err != nil {
		return Kind{}, err
	}
	if t == filetype.Unknown {
		return Kind{}, ErrUnknownFormat
	}

	return Kind{MIME: t.MIME.Value, Extension: t.Extension}, nil
}

// Dimensions decodes the pixel dimensions from the image stream itself,
// never from metadata tags.
func Dimensions(path string) (width, height uint32, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot read image dimensions: %w", err)
	}

	return uint32(cfg.Width), uint32(cfg.Height), nil
}
