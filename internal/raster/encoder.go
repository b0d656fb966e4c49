// Package raster turns user images into packed pixel rasters sized for the
// LED matrix.
package raster

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"

	"github.com/pleimann/matrixpush/internal/geometry"
	"github.com/pleimann/matrixpush/internal/ledcolor"
)

// Raster is an encoded image: Width*Height packed pixels in row-major order
type Raster struct {
	Width  int
	Height int
	Pixels []ledcolor.Packed
}

type rasterJSON struct {
	Size      [2]int   `json:"size"`
	HexValues []string `json:"hexValues"`
}

// HexValues returns the pixels in their "0xHHHH" wire form
func (r Raster) HexValues() []string {
	out := make([]string, len(r.Pixels))
	for i, p := range r.Pixels {
		out[i] = p.String()
	}
	return out
}

// MarshalJSON encodes the raster as {"size":[w,h],"hexValues":[...]}
func (r Raster) MarshalJSON() ([]byte, error) {
	return json.Marshal(rasterJSON{
		Size:      [2]int{r.Width, r.Height},
		HexValues: r.HexValues(),
	})
}

// UnmarshalJSON decodes the wire form, validating the pixel count
func (r *Raster) UnmarshalJSON(data []byte) error {
	var v rasterJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if len(v.HexValues) != v.Size[0]*v.Size[1] {
		return fmt.Errorf("raster %dx%d has %d pixels", v.Size[0], v.Size[1], len(v.HexValues))
	}

	pixels := make([]ledcolor.Packed, len(v.HexValues))
	for i, s := range v.HexValues {
		var p uint16
		if _, err := fmt.Sscanf(s, "0x%04X", &p); err != nil {
			return fmt.Errorf("pixel %d: invalid value %q", i, s)
		}
		pixels[i] = ledcolor.Packed(p)
	}

	r.Width, r.Height, r.Pixels = v.Size[0], v.Size[1], pixels
	return nil
}

// At returns the packed pixel at x, y
func (r Raster) At(x, y int) ledcolor.Packed {
	return r.Pixels[y*r.Width+x]
}

// Encoder scales images onto the display and packs their pixels
type Encoder struct {
	rasterizer Rasterizer
	display    geometry.Display
}

// NewEncoder creates an encoder for the given display
func NewEncoder(rz Rasterizer, d geometry.Display) *Encoder {
	if rz == nil {
		rz = Default()
	}
	return &Encoder{rasterizer: rz, display: d}
}

// Display returns the geometry the encoder targets
func (e *Encoder) Display() geometry.Display {
	return e.display
}

// Encode scales img to its target size and packs every pixel. Alpha is
// ignored.
func (e *Encoder) Encode(img image.Image) Raster {
	b := img.Bounds()
	w, h := geometry.TargetSize(b.Dx(), b.Dy(), e.display)

	scaled := e.rasterizer.Scale(img, w, h)
	sb := scaled.Bounds()

	out := Raster{
		Width:  w,
		Height: h,
		Pixels: make([]ledcolor.Packed, 0, w*h),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(scaled.At(sb.Min.X+x, sb.Min.Y+y)).(color.NRGBA)
			out.Pixels = append(out.Pixels, ledcolor.Pack(c.R, c.G, c.B))
		}
	}

	return out
}

// EncodeSource decodes and encodes a still image source
func (e *Encoder) EncodeSource(src *Source) (Raster, error) {
	img, err := e.rasterizer.Decode(src.Reader())
	if err != nil {
		return Raster{}, fmt.Errorf("%s: %w", src.Name, err)
	}
	return e.Encode(img), nil
}
