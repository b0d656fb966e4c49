package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	// Decoders for every format the picker accepts
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gabriel-vasile/mimetype"
)

// ErrDecode is returned when image data cannot be decoded
var ErrDecode = errors.New("decode failure")

// KindGIF is the MIME kind of animated sources
const KindGIF = "image/gif"

// Source is a user supplied file waiting in the upload batch
type Source struct {
	Name   string
	Kind   string // sniffed MIME type, e.g. "image/png"
	Size   int64
	Width  int // natural size, zero for non-image kinds
	Height int
	Data   []byte
}

// NewSource sniffs data and, for image kinds, reads its natural size.
// Non-image data is returned without error so the batch can reject it
// with a proper notice.
func NewSource(name string, data []byte) (*Source, error) {
	kind, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")

	src := &Source{
		Name: name,
		Kind: strings.TrimSpace(kind),
		Size: int64(len(data)),
		Data: data,
	}

	if !src.IsImage() {
		return src, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, name, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %s: empty image %dx%d", ErrDecode, name, cfg.Width, cfg.Height)
	}

	src.Width = cfg.Width
	src.Height = cfg.Height

	return src, nil
}

// Open reads a file into a Source
func Open(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return NewSource(filepath.Base(path), data)
}

// IsImage reports whether the sniffed kind is any image type
func (s *Source) IsImage() bool {
	return strings.HasPrefix(s.Kind, "image/")
}

// IsGIF reports whether the source is a GIF container
func (s *Source) IsGIF() bool {
	return s.Kind == KindGIF
}

// Reader returns a fresh reader over the raw bytes
func (s *Source) Reader() *bytes.Reader {
	return bytes.NewReader(s.Data)
}

func (s *Source) String() string {
	if s.Width == 0 {
		return fmt.Sprintf("%s (%s)", s.Name, s.Kind)
	}
	return fmt.Sprintf("%s (%s, %dx%d)", s.Name, s.Kind, s.Width, s.Height)
}
