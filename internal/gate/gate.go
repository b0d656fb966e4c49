// Package gate decides when a submission may be sent. Each input field
// owns one validity flag; the submit actions are pure functions of them.
package gate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pleimann/matrixpush/internal/ledcolor"
)

var (
	// ErrValidation wraps every field validation failure
	ErrValidation = errors.New("validation failed")

	// ErrNotReady is returned when submitting while the gate is closed
	ErrNotReady = errors.New("submission not enabled")
)

// Validity holds one flag per input field
type Validity struct {
	Image bool
	Delay bool
	Text  bool
	Color bool
	Mode  bool
}

// Initial returns the flags of a fresh session: no image, no text, no mode.
// Delay and color start valid since the delay field is inactive and the
// color picker has a non-black default.
func Initial() Validity {
	return Validity{Delay: true, Color: true}
}

// ImageSubmitEnabled reports whether the image batch may be sent
func (v Validity) ImageSubmitEnabled() bool {
	return v.Image && v.Delay
}

// TextSubmitEnabled reports whether the text form may be sent
func (v Validity) TextSubmitEnabled() bool {
	return v.Text && v.Color && v.Mode
}

// Mode is how the display shows submitted text
type Mode int

const (
	ModeNone Mode = iota
	ModeStatic
	ModeScroll
)

func (m Mode) String() string {
	switch m {
	case ModeStatic:
		return "static"
	case ModeScroll:
		return "scroll"
	default:
		return ""
	}
}

// Modes lists the selectable modes
var Modes = []Mode{ModeStatic, ModeScroll}

// ParseMode parses "static" or "scroll". A blank selection is invalid.
func ParseMode(s string) (Mode, error) {
	switch strings.TrimSpace(s) {
	case "static":
		return ModeStatic, nil
	case "scroll":
		return ModeScroll, nil
	case "":
		return ModeNone, fmt.Errorf("%w: choose a text mode", ErrValidation)
	default:
		return ModeNone, fmt.Errorf("%w: unknown text mode %q", ErrValidation, s)
	}
}

var digits = regexp.MustCompile(`^\d+$`)

// ValidateDelay checks a frame delay field value against [lo, hi] ms.
// Out of range or non-numeric input and non-integer input get different
// messages.
func ValidateDelay(s string, lo, hi int) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < float64(lo) || f > float64(hi) {
		return 0, fmt.Errorf("%w: enter whole numbers between %d and %d", ErrValidation, lo, hi)
	}
	if !digits.MatchString(s) {
		return 0, fmt.Errorf("%w: enter whole numbers only", ErrValidation)
	}
	return int(f), nil
}

// ValidateText requires non-blank text
func ValidateText(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: text is empty", ErrValidation)
	}
	return nil
}

// ValidateColor parses a "#RRGGBB" color and rejects black
func ValidateColor(s string) (ledcolor.RGB, error) {
	c, err := ledcolor.ParseHex(s)
	if err != nil {
		return ledcolor.RGB{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if c.IsBlack() {
		return c, fmt.Errorf("%w: black turns the LEDs off, choose another color", ErrValidation)
	}
	return c, nil
}
