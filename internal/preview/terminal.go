package preview

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pleimann/matrixpush/internal/raster"
)

const halfBlock = "▀"

// Render draws a raster with one half block per two pixel rows: the
// foreground is the upper pixel, the background the lower one. Colors are
// expanded from the packed pixels, so what you see is what the panel gets.
func Render(r raster.Raster) string {
	var sb strings.Builder

	for y := 0; y < r.Height; y += 2 {
		for x := 0; x < r.Width; x++ {
			style := lipgloss.NewStyle().Foreground(termColor(r.At(x, y).Expand()))
			if y+1 < r.Height {
				style = style.Background(termColor(r.At(x, y+1).Expand()))
			}
			sb.WriteString(style.Render(halfBlock))
		}
		if y+2 < r.Height {
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

// RenderAll renders rasters below each other, separated by a blank line
func RenderAll(rs []raster.Raster) string {
	parts := make([]string, 0, len(rs))
	for _, r := range rs {
		parts = append(parts, Render(r))
	}
	return strings.Join(parts, "\n\n")
}

func termColor(c color.RGBA) lipgloss.Color {
	cf, _ := colorful.MakeColor(c)
	return lipgloss.Color(cf.Hex())
}
