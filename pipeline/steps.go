// Package pipeline provides built-in pipeline steps and the extensible Step API.
package pipeline

import (
	"context"
	"image"
	"image/color"

	"github.com/Skryldev/imagedecoder/core"
	apperrors "github.com/Skryldev/imagedecoder/errors"
	"github.com/Skryldev/imagedecoder/utils"
	xdraw "golang.org/x/image/draw"
)

// ── Probe ─────────────────────────────────────────────────────────────────────

// ProbeStep fills img.Meta from the decoder's metadata queries without
// reading pixels.  Callers use it to check OriginalColorType before paying
// for a decode.
type ProbeStep struct {
	Registry core.Registry
	Limits   core.Limits
}

func (s *ProbeStep) Name() string { return "probe" }

func (s *ProbeStep) Execute(ctx context.Context, img *core.ImageData) (*core.ImageData, error) {
	dec, err := core.OpenDecoder(ctx, s.Registry, img, s.Limits)
	if err != nil {
		return nil, err
	}
	meta, err := core.DescribeDecoder(dec, img.Format)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, s.Name(), err)
	}
	out := *img
	out.Meta = meta
	return &out, nil
}

// ── Decode ────────────────────────────────────────────────────────────────────

// DecodeStep decodes raw bytes in img.Data into an image.Image.
type DecodeStep struct {
	Registry core.Registry
	Limits   core.Limits
}

func (s *DecodeStep) Name() string { return "decode" }

func (s *DecodeStep) Execute(ctx context.Context, img *core.ImageData) (*core.ImageData, error) {
	if img.Image != nil {
		return img, nil // already decoded
	}
	dec, err := core.OpenDecoder(ctx, s.Registry, img, s.Limits)
	if err != nil {
		return nil, err
	}
	meta, err := core.DescribeDecoder(dec, img.Format)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, s.Name(), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryPipeline, s.Name(), err)
	}

	decoded, err := core.DecodeImage(dec, s.Limits)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, s.Name(), err)
	}
	meta.SizeBytes = int64(core.TotalBytes(dec))

	out := *img
	out.Image = decoded
	out.Meta = meta
	return &out, nil
}

// ── Resize ────────────────────────────────────────────────────────────────────

// ResizeStep resizes the image to the given dimensions, preserving aspect ratio
// when one axis is 0.
type ResizeStep struct {
	Width, Height int
	// Resampler controls quality vs speed.  Defaults to draw.BiLinear.
	Resampler xdraw.Interpolator
}

func (s *ResizeStep) Name() string { return "resize" }

func (s *ResizeStep) Execute(ctx context.Context, img *core.ImageData) (*core.ImageData, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryPipeline, s.Name(), err)
	}
	if img.Image == nil {
		return nil, apperrors.New(apperrors.CategoryPipeline, s.Name(), apperrors.ErrEmptyInput)
	}

	srcB := img.Image.Bounds()
	dstW, dstH := utils.ScaleDimensions(srcB.Dx(), srcB.Dy(), s.Width, s.Height)
	if dstW == srcB.Dx() && dstH == srcB.Dy() {
		return img, nil // nothing to do
	}
	if dstW <= 0 || dstH <= 0 {
		return nil, apperrors.New(apperrors.CategoryPipeline, s.Name(), apperrors.ErrInvalidDimensions)
	}

	sampler := s.Resampler
	if sampler == nil {
		sampler = xdraw.BiLinear
	}

	dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))
	sampler.Scale(dst, dst.Bounds(), img.Image, srcB, xdraw.Src, nil)

	out := *img
	out.Image = dst
	out.Meta.Width = dstW
	out.Meta.Height = dstH
	out.Meta.ColorType = core.ColorRGBA8
	out.Meta.SizeBytes = int64(len(dst.Pix))
	return &out, nil
}

// ── Grayscale ─────────────────────────────────────────────────────────────────

// GrayscaleStep converts the image to 8-bit luminance.
type GrayscaleStep struct{}

func (s *GrayscaleStep) Name() string { return "grayscale" }

func (s *GrayscaleStep) Execute(_ context.Context, img *core.ImageData) (*core.ImageData, error) {
	if img.Image == nil {
		return nil, apperrors.New(apperrors.CategoryPipeline, s.Name(), apperrors.ErrEmptyInput)
	}

	bounds := img.Image.Bounds()
	dst := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(x, y, color.GrayModel.Convert(img.Image.At(x, y)))
		}
	}

	out := *img
	out.Image = dst
	out.Meta.ColorType = core.ColorL8
	out.Meta.HasAlpha = false
	out.Meta.SizeBytes = int64(len(dst.Pix))
	return &out, nil
}

var (
	_ core.Step = (*ProbeStep)(nil)
	_ core.Step = (*DecodeStep)(nil)
	_ core.Step = (*ResizeStep)(nil)
	_ core.Step = (*GrayscaleStep)(nil)
)
