package batch

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"reflect"
	"testing"

	"github.com/pleimann/matrixpush/internal/client"
	"github.com/pleimann/matrixpush/internal/geometry"
	"github.com/pleimann/matrixpush/internal/ledcolor"
	"github.com/pleimann/matrixpush/internal/raster"
)

func still(t *testing.T, name string, w, h int, c color.Color) *raster.Source {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		img.Set(i%w, i/w, c)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	src, err := raster.NewSource(name, buf.Bytes())
	if err != nil {
		t.Fatalf("NewSource(%s) error = %v", name, err)
	}
	return src
}

func animated(t *testing.T, name string, delays ...int) *raster.Source {
	t.Helper()
	pal := color.Palette{color.Black, color.RGBA{0, 0, 255, 255}}
	g := &gif.GIF{}
	for _, d := range delays {
		frame := image.NewPaletted(image.Rect(0, 0, 6, 3), pal)
		for i := range frame.Pix {
			frame.Pix[i] = 1
		}
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, d)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("gif.EncodeAll() error = %v", err)
	}
	src, err := raster.NewSource(name, buf.Bytes())
	if err != nil {
		t.Fatalf("NewSource(%s) error = %v", name, err)
	}
	return src
}

func textFile(t *testing.T) *raster.Source {
	t.Helper()
	src, err := raster.NewSource("readme.txt", []byte("hello there\n"))
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	return src
}

func TestAddSingleStill(t *testing.T) {
	b := New(3, 2000)

	if errs := b.Add(still(t, "a.png", 4, 4, color.White)); len(errs) != 0 {
		t.Fatalf("Add() errors = %v", errs)
	}
	if b.State() != SingleStill {
		t.Errorf("State() = %v, want %v", b.State(), SingleStill)
	}
	if b.DelayEnabled() || b.Delay() != "" {
		t.Errorf("delay enabled=%v value=%q, want disabled and empty", b.DelayEnabled(), b.Delay())
	}
}

func TestAddSecondStillEnablesDelay(t *testing.T) {
	b := New(3, 2000)
	b.Add(still(t, "a.png", 4, 4, color.White))
	b.Add(still(t, "b.png", 4, 4, color.White))

	if b.State() != MultiStill {
		t.Errorf("State() = %v, want %v", b.State(), MultiStill)
	}
	if !b.DelayEnabled() || b.Delay() != "2000" {
		t.Errorf("delay enabled=%v value=%q, want enabled with 2000", b.DelayEnabled(), b.Delay())
	}

	if err := b.SetDelay("750"); err != nil {
		t.Fatalf("SetDelay() error = %v", err)
	}
	b.Add(still(t, "c.png", 4, 4, color.White))
	if b.Delay() != "750" {
		t.Errorf("Delay() after third add = %q, want 750", b.Delay())
	}
}

func TestAddGIFToNonEmptyRejected(t *testing.T) {
	setups := map[string]func(b *Batch){
		"single still": func(b *Batch) { b.Add(still(t, "a.png", 2, 2, color.White)) },
		"multi still": func(b *Batch) {
			b.Add(still(t, "a.png", 2, 2, color.White), still(t, "b.png", 2, 2, color.White))
		},
		"gif": func(b *Batch) { b.Add(animated(t, "first.gif", 1)) },
	}

	for name, setup := range setups {
		t.Run(name, func(t *testing.T) {
			b := New(3, 2000)
			setup(b)
			before := b.Sources()
			state := b.State()

			errs := b.Add(animated(t, "anim.gif", 1, 2))
			if len(errs) != 1 || !errors.Is(errs[0], ErrGIFNotAlone) {
				t.Fatalf("Add(gif) errors = %v, want ErrGIFNotAlone", errs)
			}
			if b.State() != state || !reflect.DeepEqual(b.Sources(), before) {
				t.Errorf("batch changed after rejected add")
			}
		})
	}
}

func TestAddStillAfterGIFRejected(t *testing.T) {
	b := New(3, 2000)
	b.Add(animated(t, "anim.gif", 1))

	errs := b.Add(still(t, "a.png", 2, 2, color.White))
	if len(errs) != 1 || !errors.Is(errs[0], ErrGIFNotAlone) {
		t.Fatalf("Add(still) errors = %v, want ErrGIFNotAlone", errs)
	}
	if b.State() != SingleGIF || b.Len() != 1 {
		t.Errorf("State() = %v, Len() = %d, want gif with 1 file", b.State(), b.Len())
	}
	if b.DelayEnabled() {
		t.Error("DelayEnabled() = true for a GIF batch")
	}
}

func TestAddBeyondMaxRejected(t *testing.T) {
	b := New(3, 2000)
	for _, n := range []string{"a.png", "b.png", "c.png"} {
		if errs := b.Add(still(t, n, 2, 2, color.White)); len(errs) != 0 {
			t.Fatalf("Add(%s) errors = %v", n, errs)
		}
	}

	before := b.Sources()
	errs := b.Add(still(t, "d.png", 2, 2, color.White))
	if len(errs) != 1 || !errors.Is(errs[0], ErrTooManyImages) {
		t.Fatalf("Add(4th) errors = %v, want ErrTooManyImages", errs)
	}
	if !errors.Is(errs[0], ErrInputRejected) {
		t.Errorf("Add(4th) error %v does not wrap ErrInputRejected", errs[0])
	}
	if b.Len() != 3 || !reflect.DeepEqual(b.Sources(), before) {
		t.Errorf("batch changed after rejected add")
	}
}

func TestAddSelectionCountedAsWhole(t *testing.T) {
	b := New(3, 2000)
	b.Add(still(t, "a.png", 2, 2, color.White), still(t, "b.png", 2, 2, color.White))

	errs := b.Add(still(t, "c.png", 2, 2, color.White), textFile(t))
	if len(errs) != 1 || !errors.Is(errs[0], ErrTooManyImages) {
		t.Fatalf("Add() errors = %v, want ErrTooManyImages", errs)
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
}

func TestAddMixedSelection(t *testing.T) {
	b := New(3, 2000)

	errs := b.Add(textFile(t), still(t, "a.png", 2, 2, color.White), animated(t, "x.gif", 1))
	if len(errs) != 2 {
		t.Fatalf("Add() errors = %v, want 2", errs)
	}
	if !errors.Is(errs[0], ErrNotImage) {
		t.Errorf("errs[0] = %v, want ErrNotImage", errs[0])
	}
	if !errors.Is(errs[1], ErrGIFNotAlone) {
		t.Errorf("errs[1] = %v, want ErrGIFNotAlone", errs[1])
	}
	if b.State() != SingleStill {
		t.Errorf("State() = %v, want %v", b.State(), SingleStill)
	}
}

func TestRemove(t *testing.T) {
	b := New(3, 2000)
	b.Add(still(t, "a.png", 2, 2, color.White), still(t, "b.png", 2, 2, color.White), still(t, "c.png", 2, 2, color.White))

	if err := b.Remove(1); err != nil {
		t.Fatalf("Remove(1) error = %v", err)
	}
	names := []string{b.Sources()[0].Name, b.Sources()[1].Name}
	if !reflect.DeepEqual(names, []string{"a.png", "c.png"}) {
		t.Errorf("Sources() = %v, want [a.png c.png]", names)
	}
	if !b.DelayEnabled() {
		t.Error("DelayEnabled() = false with 2 images")
	}

	// second-to-last removal disables and clears the delay
	if err := b.Remove(0); err != nil {
		t.Fatalf("Remove(0) error = %v", err)
	}
	if b.DelayEnabled() || b.Delay() != "" {
		t.Errorf("delay enabled=%v value=%q, want disabled and empty", b.DelayEnabled(), b.Delay())
	}
	if b.State() != SingleStill {
		t.Errorf("State() = %v, want %v", b.State(), SingleStill)
	}

	if err := b.Remove(0); err != nil {
		t.Fatalf("Remove(0) error = %v", err)
	}
	if b.State() != Empty {
		t.Errorf("State() = %v, want %v", b.State(), Empty)
	}

	if err := b.Remove(0); !errors.Is(err, ErrNoSuchImage) {
		t.Errorf("Remove(0) on empty error = %v, want ErrNoSuchImage", err)
	}
}

func TestSetDelayDisabled(t *testing.T) {
	b := New(3, 2000)
	b.Add(still(t, "a.png", 2, 2, color.White))

	if err := b.SetDelay("500"); !errors.Is(err, ErrDelayDisabled) {
		t.Errorf("SetDelay() error = %v, want ErrDelayDisabled", err)
	}
}

func TestAssembleSingleStill(t *testing.T) {
	b := New(3, 2000)
	b.Add(still(t, "a.png", 10, 10, color.NRGBA{R: 255, A: 255}))

	p, err := b.Assemble(context.Background(), raster.NewEncoder(nil, geometry.Fallback))
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	img, ok := p.(*client.ImagePayload)
	if !ok {
		t.Fatalf("Assemble() = %T, want *client.ImagePayload", p)
	}
	if img.Width != 10 || img.Height != 10 || len(img.Pixels) != 100 {
		t.Errorf("raster = %dx%d with %d pixels, want 10x10 with 100", img.Width, img.Height, len(img.Pixels))
	}
}

func TestAssembleMultiStillKeepsOrder(t *testing.T) {
	b := New(3, 2000)
	b.Add(
		still(t, "red.png", 2, 2, color.NRGBA{R: 255, A: 255}),
		still(t, "green.png", 3, 3, color.NRGBA{G: 255, A: 255}),
		still(t, "blue.png", 4, 4, color.NRGBA{B: 255, A: 255}),
	)
	b.SetDelay("500")

	p, err := b.Assemble(context.Background(), raster.NewEncoder(nil, geometry.Fallback))
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	m, ok := p.(*client.MovingImagesPayload)
	if !ok {
		t.Fatalf("Assemble() = %T, want *client.MovingImagesPayload", p)
	}
	if m.Delay != "500" {
		t.Errorf("Delay = %q, want 500", m.Delay)
	}
	want := []ledcolor.Packed{ledcolor.Pack(255, 0, 0), ledcolor.Pack(0, 255, 0), ledcolor.Pack(0, 0, 255)}
	for i, r := range m.Images {
		if r.Width != i+2 || r.Pixels[0] != want[i] {
			t.Errorf("Images[%d] = %dx%d %s, want width %d color %s", i, r.Width, r.Height, r.Pixels[0], i+2, want[i])
		}
	}
}

func TestAssembleGIFIgnoresSharedDelay(t *testing.T) {
	b := New(3, 2000)
	b.Add(animated(t, "anim.gif", 5, 10, 15))

	p, err := b.Assemble(context.Background(), raster.NewEncoder(nil, geometry.Fallback))
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	g, ok := p.(*client.GIFPayload)
	if !ok {
		t.Fatalf("Assemble() = %T, want *client.GIFPayload", p)
	}
	if !reflect.DeepEqual(g.Delays, []int{50, 100, 150}) {
		t.Errorf("Delays = %v, want [50 100 150]", g.Delays)
	}
	if len(g.Frames) != 3 {
		t.Errorf("len(Frames) = %d, want 3", len(g.Frames))
	}
}

func TestAssembleEmpty(t *testing.T) {
	_, err := New(3, 2000).Assemble(context.Background(), raster.NewEncoder(nil, geometry.Fallback))
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("Assemble() error = %v, want ErrEmpty", err)
	}
}

func TestAssembleDecodeFailureKeepsBatch(t *testing.T) {
	b := New(3, 2000)
	good := still(t, "good.png", 2, 2, color.White)
	bad := &raster.Source{Name: "bad.png", Kind: "image/png", Width: 2, Height: 2, Data: []byte("corrupt")}
	b.Add(good, bad)

	_, err := b.Assemble(context.Background(), raster.NewEncoder(nil, geometry.Fallback))
	if !errors.Is(err, raster.ErrDecode) {
		t.Fatalf("Assemble() error = %v, want ErrDecode", err)
	}
	if b.Len() != 2 || b.State() != MultiStill {
		t.Errorf("batch changed after decode failure: %v with %d", b.State(), b.Len())
	}
}
