// Package geometry holds the display size reported by the server and the
// scaling rule that fits source images onto it.
package geometry

import "fmt"

// Display is the LED matrix size in pixels. It is fetched once per session
// and never changes afterwards.
type Display struct {
	Width  int
	Height int
}

// Fallback is used when the server cannot report its size
var Fallback = Display{Width: 64, Height: 32}

func (d Display) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Valid reports whether both dimensions are positive
func (d Display) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

// Fits reports whether a w x h image needs no scaling
func (d Display) Fits(w, h int) bool {
	return w <= d.Width && h <= d.Height
}

// TargetSize returns the size a srcW x srcH image is drawn at.
//
// Images that fit are never upscaled. Larger images are shrunk by
// min(d.Width/srcW, d.Height/srcH), keeping the aspect ratio, and the
// result is floored. The arithmetic is done on integers so the limiting
// axis lands exactly on the display bound. Both axes are at least 1.
func TargetSize(srcW, srcH int, d Display) (w, h int) {
	if d.Fits(srcW, srcH) {
		return srcW, srcH
	}

	// d.Width/srcW <= d.Height/srcH  <=>  d.Width*srcH <= d.Height*srcW
	if d.Width*srcH <= d.Height*srcW {
		w = d.Width
		h = srcH * d.Width / srcW
	} else {
		h = d.Height
		w = srcW * d.Height / srcH
	}

	return max(w, 1), max(h, 1)
}
