// Package decoder provides format-specific image decoders.
package decoder

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/Skryldev/imagedecoder/core"
	apperrors "github.com/Skryldev/imagedecoder/errors"
	"github.com/Skryldev/imagedecoder/utils"
)

type (
	decodeFunc       func(io.Reader) (image.Image, error)
	decodeConfigFunc func(io.Reader) (image.Config, error)
)

// stdDecoder adapts an image.Decode style codec to core.ImageDecoder.  Only
// the header is parsed at open time; pixels are decoded by ReadImage, after
// limits have been checked.
type stdDecoder struct {
	format   core.Format
	data     []byte
	cfg      image.Config
	decode   decodeFunc
	limits   core.Limits
	consumed bool
}

func openStd(ctx context.Context, r io.Reader, format core.Format, dc decodeConfigFunc, dec decodeFunc) (*stdDecoder, error) {
	op := string(format) + ".open"
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, op, err)
	}

	buf, err := utils.DrainReader(ctx, r, 32*1024)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, op+".drain", err)
	}
	data := utils.CloneBytes(buf.Bytes())
	utils.ReleaseBuffer(buf)

	cfg, err := dc(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewDecoding(apperrors.FormatHint(format), err)
	}
	if cfg.Width < 0 || cfg.Height < 0 {
		return nil, apperrors.NewDecoding(apperrors.FormatHint(format), apperrors.ErrInvalidDimensions)
	}
	return &stdDecoder{
		format: format,
		data:   data,
		cfg:    cfg,
		decode: dec,
		limits: core.NoLimits(),
	}, nil
}

func (d *stdDecoder) Dimensions() (uint32, uint32) {
	return uint32(d.cfg.Width), uint32(d.cfg.Height)
}

func (d *stdDecoder) ColorType() core.ColorType {
	switch d.cfg.ColorModel {
	case color.GrayModel:
		return core.ColorL8
	case color.Gray16Model:
		return core.ColorL16
	case color.YCbCrModel, color.CMYKModel:
		return core.ColorRGB8
	case color.RGBA64Model, color.NRGBA64Model:
		return core.ColorRGBA16
	}
	return core.ColorRGBA8
}

func (d *stdDecoder) OriginalColorType() core.ExtendedColorType {
	if d.cfg.ColorModel == color.CMYKModel {
		return core.ExtendedCMYK8
	}
	return d.ColorType().Extended()
}

// ICCProfile always reports no profile: the standard codecs drop it.
func (d *stdDecoder) ICCProfile() ([]byte, error) {
	if d.consumed {
		return nil, apperrors.ErrDecoderConsumed
	}
	return nil, nil
}

func (d *stdDecoder) SetLimits(limits core.Limits) error {
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

// ReadImage decodes the stored stream and writes it in ColorType layout.
// CMYK JPEGs are converted with the naive (non color-managed) formula of
// image/color.
func (d *stdDecoder) ReadImage(buf []byte) error {
	if d.consumed {
		return apperrors.ErrDecoderConsumed
	}
	d.consumed = true

	if want := core.TotalBytes(d); uint64(len(buf)) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", apperrors.ErrBufferSize, len(buf), want)
	}
	img, err := d.decode(bytes.NewReader(d.data))
	d.data = nil
	if err != nil {
		return apperrors.NewDecoding(apperrors.FormatHint(d.format), err)
	}
	b := img.Bounds()
	if b.Dx() != d.cfg.Width || b.Dy() != d.cfg.Height {
		return apperrors.NewDecoding(apperrors.FormatHint(d.format),
			fmt.Errorf("%w: header %dx%d, pixels %dx%d", apperrors.ErrInvalidDimensions,
				d.cfg.Width, d.cfg.Height, b.Dx(), b.Dy()))
	}

	writePixels(buf, img, d.ColorType())
	return nil
}

func writePixels(buf []byte, img image.Image, ct core.ColorType) {
	b := img.Bounds()
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.At(x, y)
			switch ct {
			case core.ColorL8:
				buf[i] = color.GrayModel.Convert(c).(color.Gray).Y
			case core.ColorL16:
				g := color.Gray16Model.Convert(c).(color.Gray16)
				buf[i], buf[i+1] = uint8(g.Y>>8), uint8(g.Y)
			case core.ColorRGB8:
				r, g, bl, _ := c.RGBA()
				buf[i], buf[i+1], buf[i+2] = uint8(r>>8), uint8(g>>8), uint8(bl>>8)
			case core.ColorRGBA16:
				n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
				buf[i], buf[i+1] = uint8(n.R>>8), uint8(n.R)
				buf[i+2], buf[i+3] = uint8(n.G>>8), uint8(n.G)
				buf[i+4], buf[i+5] = uint8(n.B>>8), uint8(n.B)
				buf[i+6], buf[i+7] = uint8(n.A>>8), uint8(n.A)
			default:
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				buf[i], buf[i+1], buf[i+2], buf[i+3] = n.R, n.G, n.B, n.A
			}
			i += ct.BytesPerPixel()
		}
	}
}

var _ core.ImageDecoder = (*stdDecoder)(nil)
