// Package preview shows what the display will show, in the terminal.
package preview

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/pleimann/matrixpush/internal/gate"
	"github.com/pleimann/matrixpush/internal/geometry"
	"github.com/pleimann/matrixpush/internal/ledcolor"
	"github.com/pleimann/matrixpush/internal/raster"
)

// Renderer draws text onto an RGB frame the size of the display
type Renderer struct {
	width  int
	height int
	img    *image.RGBA
	face   font.Face
}

// NewRenderer creates a renderer for the display
func NewRenderer(d geometry.Display) *Renderer {
	return &Renderer{
		width:  d.Width,
		height: d.Height,
		img:    image.NewRGBA(image.Rect(0, 0, d.Width, d.Height)),
		face:   basicfont.Face7x13,
	}
}

// Clear blanks the frame
func (r *Renderer) Clear() {
	draw.Draw(r.img, r.img.Bounds(), image.Black, image.Point{}, draw.Src)
}

// DrawText draws text with its baseline at y
func (r *Renderer) DrawText(x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// DrawTextWrapped draws text with word wrapping and returns the height used
func (r *Renderer) DrawTextWrapped(x, y, maxWidth int, text string, c color.Color) int {
	lineHeight := r.face.Metrics().Height.Ceil()
	currentY := y

	for _, line := range r.wrap(maxWidth, text) {
		r.DrawText(x, currentY, line, c)
		currentY += lineHeight
	}

	return currentY - y
}

func (r *Renderer) wrap(maxWidth int, text string) []string {
	var lines []string
	line := ""

	for _, word := range splitWords(text) {
		testLine := line
		if testLine != "" {
			testLine += " "
		}
		testLine += word

		advance := font.MeasureString(r.face, testLine)
		if advance.Ceil() > maxWidth && line != "" {
			lines = append(lines, line)
			line = word
		} else {
			line = testLine
		}
	}

	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// Layout returns the lines text occupies on the display. Static text wraps
// at the display width; scrolling text stays on one line.
func (r *Renderer) Layout(text string, mode gate.Mode) []string {
	if mode == gate.ModeScroll {
		words := splitWords(text)
		if len(words) == 0 {
			return nil
		}
		line := words[0]
		for _, w := range words[1:] {
			line += " " + w
		}
		return []string{line}
	}
	return r.wrap(r.width, text)
}

// DrawMode lays text out the way the display does for mode
func (r *Renderer) DrawMode(text string, c color.Color, mode gate.Mode) {
	m := r.face.Metrics()
	ascent := m.Ascent.Ceil()

	if mode == gate.ModeScroll {
		// vertically centred, clipped at the right edge
		y := (r.height-m.Height.Ceil())/2 + ascent
		for _, line := range r.Layout(text, mode) {
			r.DrawText(0, y, line, c)
		}
		return
	}

	r.DrawTextWrapped(0, ascent, r.width, text, c)
}

// Raster packs the frame as the display would receive it
func (r *Renderer) Raster() raster.Raster {
	out := raster.Raster{
		Width:  r.width,
		Height: r.height,
		Pixels: make([]ledcolor.Packed, 0, r.width*r.height),
	}
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			out.Pixels = append(out.Pixels, ledcolor.PackColor(r.img.RGBAAt(x, y)))
		}
	}
	return out
}

// Width returns the renderer width
func (r *Renderer) Width() int {
	return r.width
}

// Height returns the renderer height
func (r *Renderer) Height() int {
	return r.height
}

// Text renders a text submission as it will appear on the display
func Text(d geometry.Display, text string, c ledcolor.RGB, mode gate.Mode) raster.Raster {
	r := NewRenderer(d)
	r.Clear()
	r.DrawMode(text, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}, mode)
	return r.Raster()
}

func splitWords(text string) []string {
	var words []string
	current := ""
	for _, ch := range text {
		if ch == ' ' || ch == '\t' || ch == '\n' {
			if current != "" {
				words = append(words, current)
				current = ""
			}
		} else {
			current += string(ch)
		}
	}
	if current != "" {
		words = append(words, current)
	}
	return words
}
