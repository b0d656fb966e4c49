// Package session holds everything one user session works on: the display
// geometry, the pending image batch, the text form and the validity flags
// gating both submit actions. Every handler runs under one lock.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pleimann/matrixpush/internal/batch"
	"github.com/pleimann/matrixpush/internal/client"
	"github.com/pleimann/matrixpush/internal/config"
	"github.com/pleimann/matrixpush/internal/gate"
	"github.com/pleimann/matrixpush/internal/geometry"
	"github.com/pleimann/matrixpush/internal/ledcolor"
	"github.com/pleimann/matrixpush/internal/raster"
)

// Session is the state behind the image and text forms
type Session struct {
	client   *client.Client
	enc      *raster.Encoder
	logger   *slog.Logger
	limits   config.LimitsConfig
	warning  error
	defColor string

	mu       sync.Mutex
	batch    *batch.Batch
	validity gate.Validity
	text     string
	color    ledcolor.RGB
	mode     gate.Mode
}

// Snapshot is a read-only copy of the session state
type Snapshot struct {
	Geometry     geometry.Display
	State        batch.State
	Sources      []*raster.Source
	MaxImages    int
	DelayEnabled bool
	Delay        string
	Validity     gate.Validity
	Text         string
	Color        ledcolor.RGB
	Mode         gate.Mode
}

// New starts a session. The display is asked for its size once; when that
// fails the configured fallback is used and Warning reports why.
func New(ctx context.Context, cfg *config.Config, c *client.Client, rz raster.Rasterizer, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fallback := geometry.Display{Width: cfg.Display.FallbackWidth, Height: cfg.Display.FallbackHeight}
	d, warning := c.Geometry(ctx, fallback)

	s := &Session{
		client:   c,
		enc:      raster.NewEncoder(rz, d),
		logger:   logger,
		limits:   cfg.Limits,
		warning:  warning,
		defColor: cfg.Text.DefaultColor,
		batch:    batch.New(cfg.Limits.MaxImages, cfg.Limits.MaxDelayMs),
		validity: gate.Initial(),
	}

	if err := s.resetText(); err != nil {
		if errors.Is(err, ledcolor.ErrInvalidColorFormat) {
			return nil, fmt.Errorf("invalid default text color: %w", err)
		}
		logger.Warn("Default text color is not usable", "color", s.defColor, "error", err)
	}

	return s, nil
}

// Warning returns why the fallback geometry is in use, or nil
func (s *Session) Warning() error {
	return s.warning
}

// Geometry returns the display size used for encoding
func (s *Session) Geometry() geometry.Display {
	return s.enc.Display()
}

// Validity returns the current field flags
func (s *Session) Validity() gate.Validity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validity
}

func (s *Session) ImageSubmitEnabled() bool {
	return s.Validity().ImageSubmitEnabled()
}

func (s *Session) TextSubmitEnabled() bool {
	return s.Validity().TextSubmitEnabled()
}

// Snapshot copies the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Geometry:     s.enc.Display(),
		State:        s.batch.State(),
		Sources:      s.batch.Sources(),
		MaxImages:    s.batch.MaxImages(),
		DelayEnabled: s.batch.DelayEnabled(),
		Delay:        s.batch.Delay(),
		Validity:     s.validity,
		Text:         s.text,
		Color:        s.color,
		Mode:         s.mode,
	}
}

// AddFiles reads files from disk and adds them to the batch. Files that
// cannot be read are reported alongside the batch's own rejections.
func (s *Session) AddFiles(paths ...string) error {
	var (
		srcs []*raster.Source
		errs []error
	)
	for _, p := range paths {
		src, err := raster.Open(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		srcs = append(srcs, src)
	}

	if len(srcs) > 0 {
		errs = append(errs, s.AddSources(srcs...))
	}
	return errors.Join(errs...)
}

// AddSources adds already loaded files to the batch
func (s *Session) AddSources(srcs ...*raster.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	errs := s.batch.Add(srcs...)
	for _, err := range errs {
		s.logger.Debug("File rejected", "error", err)
	}
	s.refreshImage()

	return errors.Join(errs...)
}

// Remove drops the batch entry at index i
func (s *Session) Remove(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.batch.Remove(i); err != nil {
		return err
	}
	s.refreshImage()
	return nil
}

// ClearImages empties the batch
func (s *Session) ClearImages() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batch.Reset()
	s.refreshImage()
}

// SetDelay stores the shared delay field and re-validates it
func (s *Session) SetDelay(v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.batch.SetDelay(v); err != nil {
		return err
	}
	_, err := gate.ValidateDelay(v, s.limits.MinDelayMs, s.limits.MaxDelayMs)
	s.validity.Delay = err == nil
	return err
}

// refreshImage recomputes the flags derived from the batch shape. The delay
// flag only constrains anything while the shared delay field is active.
func (s *Session) refreshImage() {
	s.validity.Image = s.batch.Len() > 0

	if !s.batch.DelayEnabled() {
		s.validity.Delay = true
		return
	}
	_, err := gate.ValidateDelay(s.batch.Delay(), s.limits.MinDelayMs, s.limits.MaxDelayMs)
	s.validity.Delay = err == nil
}

// Preview encodes the batch without sending it
func (s *Session) Preview(ctx context.Context) ([]raster.Raster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.batch.Assemble(ctx, s.enc)
	if err != nil {
		return nil, err
	}
	return client.Rasters(p), nil
}

// SubmitImages encodes the batch and posts it. Once the payload is built the
// batch is reset, whether or not the display accepts it. A decode failure
// leaves the batch untouched.
func (s *Session) SubmitImages(ctx context.Context) (string, error) {
	s.mu.Lock()
	if !s.validity.ImageSubmitEnabled() {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: image form", gate.ErrNotReady)
	}

	p, err := s.batch.Assemble(ctx, s.enc)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}

	s.batch.Reset()
	s.refreshImage()
	s.mu.Unlock()

	s.logger.Info("Sending images", "endpoint", p.Endpoint(), "frames", len(client.Rasters(p)))
	return s.client.Submit(ctx, p)
}

// SetText stores the text field and re-validates it
func (s *Session) SetText(v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = v
	err := gate.ValidateText(v)
	s.validity.Text = err == nil
	return err
}

// SetColor parses a "#RRGGBB" text color. Black is stored but invalid.
func (s *Session) SetColor(v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := gate.ValidateColor(v)
	if !errors.Is(err, ledcolor.ErrInvalidColorFormat) {
		s.color = c
	}
	s.validity.Color = err == nil
	return err
}

// SetMode selects "static" or "scroll"
func (s *Session) SetMode(v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := gate.ParseMode(v)
	s.mode = m
	s.validity.Mode = err == nil
	return err
}

// SubmitText posts the text form and resets it, whether or not the display
// accepts it.
func (s *Session) SubmitText(ctx context.Context) (string, error) {
	s.mu.Lock()
	if !s.validity.TextSubmitEnabled() {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: text form", gate.ErrNotReady)
	}

	p := &client.TextPayload{
		Value: s.text,
		Color: s.color.Channels(),
		Mode:  s.mode.String(),
	}
	s.resetText()
	s.mu.Unlock()

	s.logger.Info("Sending text", "mode", p.Mode, "chars", len([]rune(p.Value)))
	return s.client.Submit(ctx, p)
}

// resetText clears the text and mode and restores the default color
func (s *Session) resetText() error {
	s.text = ""
	s.mode = gate.ModeNone
	s.validity.Text = false
	s.validity.Mode = false

	c, err := gate.ValidateColor(s.defColor)
	if !errors.Is(err, ledcolor.ErrInvalidColorFormat) {
		s.color = c
	}
	s.validity.Color = err == nil
	return err
}
