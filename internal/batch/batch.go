// Package batch manages the images waiting to be sent to the display.
//
// A batch is exactly one of: empty, one still image, 2..max still images
// sharing one delay, or a single GIF that carries its own frame delays.
// The shapes never mix; Add enforces that when files arrive.
package batch

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/pleimann/matrixpush/internal/animation"
	"github.com/pleimann/matrixpush/internal/client"
	"github.com/pleimann/matrixpush/internal/raster"
)

var (
	// ErrInputRejected wraps every refused file; the batch is unchanged
	ErrInputRejected = errors.New("input rejected")

	ErrTooManyImages = fmt.Errorf("%w: too many images", ErrInputRejected)
	ErrNotImage      = fmt.Errorf("%w: not an image file", ErrInputRejected)
	ErrGIFNotAlone   = fmt.Errorf("%w: a GIF can only be uploaded on its own", ErrInputRejected)
	ErrNoSuchImage   = fmt.Errorf("%w: no such image", ErrInputRejected)

	ErrEmpty         = errors.New("batch is empty")
	ErrDelayDisabled = errors.New("delay only applies to several still images")
)

// State is the shape of the batch
type State int

const (
	Empty State = iota
	SingleStill
	MultiStill
	SingleGIF
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case SingleStill:
		return "single image"
	case MultiStill:
		return "image sequence"
	case SingleGIF:
		return "gif"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Batch holds the pending sources and the shared delay field
type Batch struct {
	maxImages    int
	defaultDelay int

	sources      []*raster.Source
	delayEnabled bool
	delay        string
}

// New creates an empty batch. The shared delay defaults to defaultDelay
// when it becomes active.
func New(maxImages, defaultDelay int) *Batch {
	return &Batch{
		maxImages:    maxImages,
		defaultDelay: defaultDelay,
	}
}

// MaxImages returns the configured limit
func (b *Batch) MaxImages() int {
	return b.maxImages
}

// State returns the current shape
func (b *Batch) State() State {
	switch {
	case len(b.sources) == 0:
		return Empty
	case b.sources[0].IsGIF():
		return SingleGIF
	case len(b.sources) == 1:
		return SingleStill
	default:
		return MultiStill
	}
}

// Len returns the number of pending files
func (b *Batch) Len() int {
	return len(b.sources)
}

// Sources returns a copy of the pending files in order
func (b *Batch) Sources() []*raster.Source {
	out := make([]*raster.Source, len(b.sources))
	copy(out, b.sources)
	return out
}

// DelayEnabled reports whether the shared delay field is active
func (b *Batch) DelayEnabled() bool {
	return b.delayEnabled
}

// Delay returns the raw shared delay value, empty while disabled
func (b *Batch) Delay() string {
	return b.delay
}

// SetDelay stores the raw delay field value. Validation is the caller's job.
func (b *Batch) SetDelay(v string) error {
	if !b.delayEnabled {
		return ErrDelayDisabled
	}
	b.delay = v
	return nil
}

// Add appends files in order. A selection that would exceed the limit is
// refused as a whole. Otherwise each file is accepted or refused on its
// own; the returned errors describe the refused ones.
func (b *Batch) Add(srcs ...*raster.Source) []error {
	if len(b.sources)+len(srcs) > b.maxImages {
		return []error{fmt.Errorf("%w: at most %d images are allowed", ErrTooManyImages, b.maxImages)}
	}

	var errs []error
	for _, src := range srcs {
		if err := b.add(src); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src.Name, err))
		}
	}
	return errs
}

func (b *Batch) add(src *raster.Source) error {
	if !src.IsImage() {
		return ErrNotImage
	}

	if src.IsGIF() {
		if len(b.sources) > 0 {
			return ErrGIFNotAlone
		}
		// frame delays come from the file
		b.sources = append(b.sources, src)
		return nil
	}

	if b.State() == SingleGIF {
		return ErrGIFNotAlone
	}
	if len(b.sources) >= b.maxImages {
		return ErrTooManyImages
	}

	b.sources = append(b.sources, src)
	if len(b.sources) == 2 {
		b.delayEnabled = true
		b.delay = strconv.Itoa(b.defaultDelay)
	}
	return nil
}

// Remove drops the file at index i
func (b *Batch) Remove(i int) error {
	if i < 0 || i >= len(b.sources) {
		return fmt.Errorf("%w: index %d of %d", ErrNoSuchImage, i, len(b.sources))
	}

	b.sources = append(b.sources[:i], b.sources[i+1:]...)

	if len(b.sources) <= 1 {
		b.delayEnabled = false
		b.delay = ""
	}
	return nil
}

// Reset empties the batch
func (b *Batch) Reset() {
	b.sources = nil
	b.delayEnabled = false
	b.delay = ""
}

// Assemble encodes the batch into the payload matching its shape. Images
// are encoded strictly in batch order. On error nothing is changed.
func (b *Batch) Assemble(ctx context.Context, enc *raster.Encoder) (client.Payload, error) {
	switch b.State() {
	case SingleStill:
		r, err := enc.EncodeSource(b.sources[0])
		if err != nil {
			return nil, err
		}
		return &client.ImagePayload{Raster: r}, nil

	case MultiStill:
		images := make([]raster.Raster, 0, len(b.sources))
		for _, src := range b.sources {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			r, err := enc.EncodeSource(src)
			if err != nil {
				return nil, err
			}
			images = append(images, r)
		}
		return &client.MovingImagesPayload{Delay: b.delay, Images: images}, nil

	case SingleGIF:
		seq, err := animation.DecomposeContext(ctx, b.sources[0].Reader(), enc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.sources[0].Name, err)
		}
		return &client.GIFPayload{Delays: seq.Delays(), Frames: seq.Rasters()}, nil
	}

	return nil, ErrEmpty
}
