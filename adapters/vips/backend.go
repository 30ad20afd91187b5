package vips

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"runtime"
	"sync"

	govips "github.com/davidbyttow/govips/v2/vips"

	"github.com/Skryldev/imagedecoder/adapters/decoder"
	"github.com/Skryldev/imagedecoder/adapters/jxl"
	"github.com/Skryldev/imagedecoder/core"
	apperrors "github.com/Skryldev/imagedecoder/errors"
	"github.com/Skryldev/imagedecoder/utils"
)

// BackendConfig configures the libvips backend.
type BackendConfig struct {
	MaxCacheSize int
	MaxWorkers   int
	ReportLeaks  bool
}

// Backend decodes JPEG XL through libvips (jxlload).  Unlike the WASM engine
// it passes the embedded ICC profile through.  Safe for concurrent use
// across goroutines.
type Backend struct {
	cfg BackendConfig
}

var startup sync.Once

// NewBackend initialises libvips and returns a ready Backend.
// Call Shutdown() when the process exits.
func NewBackend(cfg BackendConfig) *Backend {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}
	startup.Do(func() {
		govips.Startup(&govips.Config{
			ConcurrencyLevel: cfg.MaxWorkers,
			MaxCacheSize:     cfg.MaxCacheSize,
			ReportLeaks:      cfg.ReportLeaks,
		})
	})
	return &Backend{cfg: cfg}
}

// Shutdown releases all libvips resources. Call once at process exit.
func (b *Backend) Shutdown() {
	govips.Shutdown()
}

func (b *Backend) CanDecode(f core.Format) bool { return f == core.FormatJXL }

// Open returns a JPEG XL decoder over a libvips engine.
func (b *Backend) Open(ctx context.Context, r io.Reader) (core.ImageDecoder, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.open", err)
	}
	return decoder.NewJXLDecoder(r, b.OpenEngine)
}

// OpenEngine loads r with libvips.  It satisfies jxl.OpenFunc.
func (b *Backend) OpenEngine(r io.Reader) (jxl.Engine, error) {
	buf, err := utils.DrainReader(context.Background(), r, 32*1024)
	if err != nil {
		return nil, err
	}
	raw := utils.CloneBytes(buf.Bytes())
	utils.ReleaseBuffer(buf)

	ref, err := govips.NewImageFromBuffer(raw)
	if err != nil {
		return nil, err
	}
	runtime.SetFinalizer(ref, func(r *govips.ImageRef) { r.Close() })
	return &Engine{ref: ref}, nil
}

// Engine serves a libvips image through jxl.Engine.
type Engine struct {
	ref *govips.ImageRef
}

func (e *Engine) Width() uint32  { return uint32(e.ref.Width()) }
func (e *Engine) Height() uint32 { return uint32(e.ref.Height()) }

func (e *Engine) PixelFormat() jxl.PixelFormat {
	return pixelFormat(e.ref.Interpretation(), e.ref.Bands())
}

func (e *Engine) OriginalICC() []byte {
	icc := e.ref.GetICCProfile()
	if len(icc) == 0 {
		return nil
	}
	return icc
}

// RenderFrame reads the raw band data of the loaded image and normalizes it
// to [0, 1].  libvips loads the first frame only.
func (e *Engine) RenderFrame(index int) (*jxl.Frame, error) {
	if index != 0 {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrFrameIndex, index)
	}
	raw, err := e.ref.ToBytes()
	if err != nil {
		return nil, err
	}
	samples, err := normalize(raw, e.ref.BandFormat())
	if err != nil {
		return nil, err
	}
	return jxl.NewFrame(e.Width(), e.Height(), e.ref.Bands(), samples), nil
}

// normalize converts native-endian vips band data to unit floats.
func normalize(raw []byte, format govips.BandFormat) ([]float32, error) {
	switch format {
	case govips.BandFormatUchar:
		out := make([]float32, len(raw))
		for i, v := range raw {
			out[i] = float32(v) / 0xff
		}
		return out, nil
	case govips.BandFormatUshort:
		out := make([]float32, len(raw)/2)
		for i := range out {
			out[i] = float32(binary.NativeEndian.Uint16(raw[2*i:])) / 0xffff
		}
		return out, nil
	case govips.BandFormatFloat:
		out := make([]float32, len(raw)/4)
		if err := binary.Read(bytes.NewReader(raw), binary.NativeEndian, out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported vips band format %v", format)
}

// pixelFormat classifies a vips image by interpretation and band count.
func pixelFormat(i govips.Interpretation, bands int) jxl.PixelFormat {
	switch i {
	case govips.InterpretationCMYK:
		if bands > 4 {
			return jxl.CMYKA
		}
		return jxl.CMYK
	case govips.InterpretationBW, govips.InterpretationGrey16:
		if bands > 1 {
			return jxl.GrayAlpha
		}
		return jxl.Gray
	}
	if bands > 3 {
		return jxl.RGBA
	}
	return jxl.RGB
}

// RegisterVipsBackend makes reg open JPEG XL images through libvips.
func RegisterVipsBackend(reg core.Registry, b *Backend) {
	reg.RegisterDecoder(core.FormatJXL, b)
}

// compile-time interface checks
var _ core.Decoder = (*Backend)(nil)
var _ jxl.Engine = (*Engine)(nil)
