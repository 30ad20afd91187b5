package decoder

import (
	"context"
	"fmt"
	"io"

	"github.com/Skryldev/imagedecoder/adapters/jxl"
	"github.com/Skryldev/imagedecoder/core"
	apperrors "github.com/Skryldev/imagedecoder/errors"
)

const jxlHint = apperrors.FormatHint(core.FormatJXL)

// JXL opens JPEG XL images through a pluggable codec engine.
type JXL struct {
	open jxl.OpenFunc
}

// NewJXL returns a JPEG XL decoder that opens streams with open.  A nil open
// selects jxl.OpenWASM.
func NewJXL(open jxl.OpenFunc) *JXL {
	if open == nil {
		open = jxl.OpenWASM
	}
	return &JXL{open: open}
}

func (j *JXL) CanDecode(format core.Format) bool { return format == core.FormatJXL }

func (j *JXL) Open(ctx context.Context, r io.Reader) (core.ImageDecoder, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "jxl.open", err)
	}
	return NewJXLDecoder(r, j.open)
}

// JXLDecoder adapts one opened JPEG XL engine to core.ImageDecoder.
// It is not safe for concurrent use and reads at most once.
type JXLDecoder struct {
	engine   jxl.Engine
	limits   core.Limits
	consumed bool
}

// NewJXLDecoder opens r with open.  Engine failures are reported as decoding
// errors without a format hint: at this point a stream that is not JPEG XL
// and a malformed one look the same.
func NewJXLDecoder(r io.Reader, open jxl.OpenFunc) (*JXLDecoder, error) {
	engine, err := open(r)
	if err != nil {
		return nil, apperrors.NewDecoding(apperrors.FormatHintUnknown, err)
	}
	return &JXLDecoder{engine: engine, limits: core.NoLimits()}, nil
}

func (d *JXLDecoder) Dimensions() (uint32, uint32) {
	return d.engine.Width(), d.engine.Height()
}

// ColorType maps CMYK sources onto RGB layouts of the same sample count so
// callers can size buffers; ReadImage still refuses to render them.
func (d *JXLDecoder) ColorType() core.ColorType {
	switch d.engine.PixelFormat() {
	case jxl.Gray:
		return core.ColorL8
	case jxl.GrayAlpha:
		return core.ColorLA8
	case jxl.RGB, jxl.CMYK:
		return core.ColorRGB8
	default:
		return core.ColorRGBA8
	}
}

func (d *JXLDecoder) OriginalColorType() core.ExtendedColorType {
	switch d.engine.PixelFormat() {
	case jxl.Gray:
		return core.ExtendedL8
	case jxl.GrayAlpha:
		return core.ExtendedLA8
	case jxl.RGB:
		return core.ExtendedRGB8
	case jxl.CMYK, jxl.CMYKA:
		return core.ExtendedCMYK8
	default:
		return core.ExtendedRGBA8
	}
}

func (d *JXLDecoder) ICCProfile() ([]byte, error) {
	if d.consumed {
		return nil, apperrors.ErrDecoderConsumed
	}
	icc := d.engine.OriginalICC()
	if icc == nil {
		return nil, nil
	}
	out := make([]byte, len(icc))
	copy(out, icc)
	return out, nil
}

func (d *JXLDecoder) SetLimits(limits core.Limits) error {
	if d.consumed {
		return apperrors.ErrDecoderConsumed
	}
	if err := limits.CheckSupport(core.DefaultLimitSupport()); err != nil {
		return err
	}
	if err := limits.CheckDimensions(d.Dimensions()); err != nil {
		return err
	}
	d.limits = limits
	return nil
}

// Limits returns the active limits policy.
func (d *JXLDecoder) Limits() core.Limits { return d.limits }

// ReadImage renders frame 0 into buf.  buf is left untouched on every error.
func (d *JXLDecoder) ReadImage(buf []byte) error {
	if d.consumed {
		return apperrors.ErrDecoderConsumed
	}
	d.consumed = true
	return d.renderFrame(0, buf)
}

func (d *JXLDecoder) renderFrame(index int, buf []byte) error {
	if ct := d.OriginalColorType(); ct == core.ExtendedCMYK8 {
		return apperrors.NewUnsupportedColor(jxlHint, ct)
	}
	if want := core.TotalBytes(d); uint64(len(buf)) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", apperrors.ErrBufferSize, len(buf), want)
	}

	frame, err := d.engine.RenderFrame(index)
	if err != nil {
		return apperrors.NewDecoding(jxlHint, err)
	}
	samples := frame.ImageAllChannels()
	if len(samples) != len(buf) {
		return apperrors.NewDecoding(jxlHint,
			fmt.Errorf("engine rendered %d samples for a %d byte buffer", len(samples), len(buf)))
	}

	for i, s := range samples {
		buf[i] = sampleToU8(s)
	}
	return nil
}

// sampleToU8 scales a nominal [0, 1] sample to 8 bits by adding 0.5 and
// truncating.  Out of range samples, which filter ringing can produce,
// saturate; NaN maps to 0.  The explicit conversion keeps the multiply and
// add from being fused.
func sampleToU8(s float32) uint8 {
	v := float32(s*255) + 0.5
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

var _ core.Decoder = (*JXL)(nil)
var _ core.ImageDecoder = (*JXLDecoder)(nil)
