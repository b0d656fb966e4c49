// Package animation splits GIF containers into independently encoded,
// individually timed frames.
package animation

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"io"

	"github.com/pleimann/matrixpush/internal/raster"
)

// GIF delays are stored in 1/100 s
const delayUnitMS = 10

// Frame is one decoded GIF image with its own display time
type Frame struct {
	DelayMS int
	Raster  raster.Raster
}

// Sequence holds the frames of one GIF in container order
type Sequence []Frame

// Delays returns the per-frame delays in milliseconds
func (s Sequence) Delays() []int {
	out := make([]int, len(s))
	for i, f := range s {
		out[i] = f.DelayMS
	}
	return out
}

// Rasters returns the encoded frames
func (s Sequence) Rasters() []raster.Raster {
	out := make([]raster.Raster, len(s))
	for i, f := range s {
		out[i] = f.Raster
	}
	return out
}

// Decompose decodes every frame of a GIF and encodes it for the display
func Decompose(r io.Reader, enc *raster.Encoder) (Sequence, error) {
	return DecomposeContext(context.Background(), r, enc)
}

// DecomposeContext is Decompose with a cancellation check between frames
func DecomposeContext(ctx context.Context, r io.Reader, enc *raster.Encoder) (Sequence, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", raster.ErrDecode, err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("%w: gif has no frames", raster.ErrDecode)
	}

	seq := make(Sequence, 0, len(g.Image))
	for i, frame := range g.Image {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var delay int
		if i < len(g.Delay) {
			delay = g.Delay[i] * delayUnitMS
		}

		seq = append(seq, Frame{
			DelayMS: delay,
			Raster:  enc.Encode(toRGBA(frame)),
		})
	}

	return seq, nil
}

// toRGBA expands a paletted frame over its own bounds. Frames are not
// composited onto the logical screen: each is encoded at its own size.
func toRGBA(p *image.Paletted) *image.RGBA {
	b := p.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), p, b.Min, draw.Src)
	return dst
}
