// Package ledcolor converts user colors and image samples into the panel's
// packed 16-bit pixel format.
package ledcolor

import (
	"errors"
	"fmt"
	"image/color"
	"regexp"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColorFormat is returned for color strings that are not #RRGGBB
var ErrInvalidColorFormat = errors.New("invalid color format")

var hexPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// RGB is an 8-bit per channel color as chosen by the user
type RGB struct {
	R, G, B uint8
}

// ParseHex parses a "#RRGGBB" color string
func ParseHex(s string) (RGB, error) {
	if !hexPattern.MatchString(s) {
		return RGB{}, fmt.Errorf("%w: %q, want #RRGGBB", ErrInvalidColorFormat, s)
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %v", ErrInvalidColorFormat, err)
	}

	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// IsBlack reports whether all channels are zero. Black switches the LEDs
// off and is never accepted as a foreground color.
func (c RGB) IsBlack() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

// Hex returns the color as "#rrggbb"
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Channels returns the per-channel wire form used by the text endpoint:
// ["0xRR", "0xGG", "0xBB"]
func (c RGB) Channels() [3]string {
	return [3]string{
		fmt.Sprintf("0x%02X", c.R),
		fmt.Sprintf("0x%02X", c.G),
		fmt.Sprintf("0x%02X", c.B),
	}
}

// Packed is a pixel in the panel's 16-bit RGB565 layout
type Packed uint16

// Pack combines 8-bit channels into a Packed pixel.
//
// The firmware expects the low bits of every channel, not the usual top
// 5/6 bits: red and blue keep bits 0-4, green keeps bits 0-5. Do not
// replace this with a conventional RGB565 conversion, the receiving side
// depends on the exact layout.
func Pack(r, g, b uint8) Packed {
	return Packed(uint16(r&0x1F)<<11 | uint16(g&0x3F)<<5 | uint16(b&0x1F))
}

// PackColor packs any color.Color, ignoring alpha
func PackColor(c color.Color) Packed {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Pack(n.R, n.G, n.B)
}

// String returns the wire form "0xHHHH"
func (p Packed) String() string {
	return fmt.Sprintf("0x%04X", uint16(p))
}

// Expand decodes the pixel the way the panel displays it, replicating the
// high bits of each field into the low bits.
func (p Packed) Expand() color.RGBA {
	r5 := uint8(p>>11) & 0x1F
	g6 := uint8(p>>5) & 0x3F
	b5 := uint8(p) & 0x1F

	return color.RGBA{
		R: r5<<3 | r5>>2,
		G: g6<<2 | g6>>4,
		B: b5<<3 | b5>>2,
		A: 0xFF,
	}
}
