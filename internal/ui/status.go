package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/pleimann/matrixpush/internal/batch"
	"github.com/pleimann/matrixpush/internal/geometry"
	"github.com/pleimann/matrixpush/internal/raster"
	"github.com/pleimann/matrixpush/internal/session"
)

// PrintGeometry shows the display size and, when the fallback is in use, why
func PrintGeometry(d geometry.Display, warning error) {
	fmt.Printf("%s %s\n", Muted("Display:"), GeometryStyle.Render(d.String()))
	if warning != nil {
		fmt.Println(Warning("Display did not report its size, using the fallback"))
		fmt.Printf("  %s\n", Muted(warning.Error()))
	}
}

// PrintStatus lists the pending batch, the text form and both submit gates
func PrintStatus(s session.Snapshot) {
	fmt.Println()
	fmt.Printf("%s %s\n", Title("Images"), Muted(fmt.Sprintf("(%s, %d/%d)", s.State, len(s.Sources), s.MaxImages)))

	if len(s.Sources) == 0 {
		fmt.Printf("  %s\n", Muted("no files"))
	}
	for i, src := range s.Sources {
		printSource(i, src)
	}

	if s.DelayEnabled {
		delay := s.Delay
		if !s.Validity.Delay {
			delay = ErrorStyle.Render(delay + " (invalid)")
		}
		fmt.Printf("  %s %s ms\n", Muted("Delay:"), delay)
	}
	fmt.Printf("  %s send images\n", mark(s.Validity.ImageSubmitEnabled()))
	fmt.Println()

	fmt.Println(Title("Text"))
	text := s.Text
	if text == "" {
		text = Muted("empty")
	}
	mode := s.Mode.String()
	if mode == "" {
		mode = Muted("none")
	}
	fmt.Printf("  %s %s\n", Muted("Text: "), text)
	fmt.Printf("  %s %s %s\n", Muted("Color:"), swatch(s.Color.Hex()), s.Color.Hex())
	fmt.Printf("  %s %s\n", Muted("Mode: "), mode)
	fmt.Printf("  %s send text\n", mark(s.Validity.TextSubmitEnabled()))
	fmt.Println()
}

func printSource(i int, src *raster.Source) {
	meta := []string{src.Kind, humanize.Bytes(uint64(src.Size))}
	if src.Width > 0 {
		meta = append(meta, fmt.Sprintf("%dx%d", src.Width, src.Height))
	}

	fmt.Printf("  %s %s %s\n",
		IndexStyle.Render(fmt.Sprintf("[%d]", i)),
		FileNameStyle.Render(src.Name),
		FileMetaStyle.Render(strings.Join(meta, ", ")),
	)
}

func swatch(hex string) string {
	return BoldStyle.Foreground(lipgloss.Color(hex)).Render("■")
}

// PrintNotice shows why input was refused, one line per joined error
func PrintNotice(err error) {
	if err == nil {
		return
	}

	render := Error
	if errors.Is(err, batch.ErrInputRejected) {
		render = Warning
	}
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Println(render(line))
	}
}

// PrintSent shows the display's reply to a submission
func PrintSent(what, reply string) {
	fmt.Println(Success(what + " sent"))
	if reply = strings.TrimSpace(reply); reply != "" {
		fmt.Printf("  %s %s\n", Muted("Display:"), reply)
	}
}

// PrintConfigCreated shows a success message after writing a new config
func PrintConfigCreated(configPath, url string) {
	fmt.Println()
	fmt.Println(Success("Configuration created"))
	fmt.Println()
	fmt.Printf("  %s %s\n", Muted("Config:"), configPath)
	fmt.Printf("  %s %s\n", Muted("Server:"), GeometryStyle.Render(url))
	fmt.Println()
}

// PrintConfigUpdated shows a success message after changing the server url
func PrintConfigUpdated(configPath, url string) {
	fmt.Println()
	fmt.Println(Success("Configuration updated"))
	fmt.Println()
	fmt.Printf("  %s %s\n", Muted("Config:"), configPath)
	fmt.Printf("  %s %s\n", Muted("Server:"), GeometryStyle.Render(url))
	fmt.Println()
}
