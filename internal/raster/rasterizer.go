package raster

import (
	"errors"
	"fmt"
	"image"
	"io"
	"sort"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"
)

var (
	ErrUnknownBackend    = errors.New("unknown rasterizer backend")
	ErrUnsupportedKernel = errors.New("kernel not supported by backend")
)

// Kernel names shared by all backends
const (
	KernelNearest = "nearest"
	KernelLinear  = "linear"
	KernelCubic   = "cubic"
	KernelLanczos = "lanczos"
)

// Rasterizer decodes image bytes and resamples pixel buffers. Backends only
// differ in the resampling library they use.
type Rasterizer interface {
	Decode(r io.Reader) (image.Image, error)
	Scale(img image.Image, w, h int) image.Image
}

type backend struct {
	name    string
	kernels map[string]func(w, h int, img image.Image) image.Image
}

var backends = map[string]backend{
	"xdraw": {
		name: "xdraw",
		kernels: map[string]func(w, h int, img image.Image) image.Image{
			KernelNearest: xdrawScaler(xdraw.NearestNeighbor),
			KernelLinear:  xdrawScaler(xdraw.BiLinear),
			KernelCubic:   xdrawScaler(xdraw.CatmullRom),
		},
	},
	"gift": {
		name: "gift",
		kernels: map[string]func(w, h int, img image.Image) image.Image{
			KernelNearest: giftScaler(gift.NearestNeighborResampling),
			KernelLinear:  giftScaler(gift.LinearResampling),
			KernelCubic:   giftScaler(gift.CubicResampling),
			KernelLanczos: giftScaler(gift.LanczosResampling),
		},
	},
	"nfnt": {
		name: "nfnt",
		kernels: map[string]func(w, h int, img image.Image) image.Image{
			KernelNearest: nfntScaler(resize.NearestNeighbor),
			KernelLinear:  nfntScaler(resize.Bilinear),
			KernelCubic:   nfntScaler(resize.Bicubic),
			KernelLanczos: nfntScaler(resize.Lanczos3),
		},
	},
	"bild": {
		name: "bild",
		kernels: map[string]func(w, h int, img image.Image) image.Image{
			KernelNearest: bildScaler(transform.NearestNeighbor),
			KernelLinear:  bildScaler(transform.Linear),
			KernelCubic:   bildScaler(transform.CatmullRom),
			KernelLanczos: bildScaler(transform.Lanczos),
		},
	},
	"imaging": {
		name: "imaging",
		kernels: map[string]func(w, h int, img image.Image) image.Image{
			KernelNearest: imagingScaler(imaging.NearestNeighbor),
			KernelLinear:  imagingScaler(imaging.Linear),
			KernelCubic:   imagingScaler(imaging.CatmullRom),
			KernelLanczos: imagingScaler(imaging.Lanczos),
		},
	},
}

// Backends returns the names of all available backends
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewRasterizer returns the named backend using the given kernel
func NewRasterizer(name, kernel string) (Rasterizer, error) {
	b, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	scale, ok := b.kernels[kernel]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnsupportedKernel, name, kernel)
	}
	return &rasterizer{name: b.name, kernel: kernel, scale: scale}, nil
}

// Default returns the x/image/draw bilinear rasterizer
func Default() Rasterizer {
	r, _ := NewRasterizer("xdraw", KernelLinear)
	return r
}

type rasterizer struct {
	name   string
	kernel string
	scale  func(w, h int, img image.Image) image.Image
}

func (r *rasterizer) String() string {
	return r.name + "/" + r.kernel
}

func (r *rasterizer) Decode(rd io.Reader) (image.Image, error) {
	img, _, err := image.Decode(rd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}
	return img, nil
}

// Scale resamples img to w x h. Same-size requests return img itself so
// images that already fit keep their exact pixels.
func (r *rasterizer) Scale(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	return r.scale(w, h, img)
}

func xdrawScaler(k xdraw.Interpolator) func(w, h int, img image.Image) image.Image {
	return func(w, h int, img image.Image) image.Image {
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		k.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		return dst
	}
}

func giftScaler(rs gift.Resampling) func(w, h int, img image.Image) image.Image {
	return func(w, h int, img image.Image) image.Image {
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		gift.Resize(w, h, rs).Draw(dst, img, &gift.Options{Parallelization: true})
		return dst
	}
}

func nfntScaler(interp resize.InterpolationFunction) func(w, h int, img image.Image) image.Image {
	return func(w, h int, img image.Image) image.Image {
		return resize.Resize(uint(w), uint(h), img, interp)
	}
}

func bildScaler(f transform.ResampleFilter) func(w, h int, img image.Image) image.Image {
	return func(w, h int, img image.Image) image.Image {
		return transform.Resize(img, w, h, f)
	}
}

func imagingScaler(f imaging.ResampleFilter) func(w, h int, img image.Image) image.Image {
	return func(w, h int, img image.Image) image.Image {
		return imaging.Resize(img, w, h, f)
	}
}
