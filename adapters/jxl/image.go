package jxl

import (
	"fmt"
	"image"
	"image/color"

	apperrors "github.com/Skryldev/imagedecoder/errors"
)

// ImageEngine serves an already decoded image.Image through the Engine
// interface.  Codecs that decode straight to image.Image plug in through it.
type ImageEngine struct {
	img    image.Image
	format PixelFormat
	icc    []byte
}

// NewImageEngine wraps img, taking the pixel format from its concrete type.
// icc may be nil.
func NewImageEngine(img image.Image, icc []byte) *ImageEngine {
	return NewImageEngineFormat(img, pixelFormatOf(img), icc)
}

// NewImageEngineFormat wraps img and renders it as format.  Use it when the
// codec's header knows the layout better than the Go image type does, e.g.
// a grey source handed back as NRGBA: Gray keeps R, GrayAlpha keeps R and A,
// RGB drops A.
func NewImageEngineFormat(img image.Image, format PixelFormat, icc []byte) *ImageEngine {
	return &ImageEngine{img: img, format: format, icc: icc}
}

func (e *ImageEngine) Width() uint32  { return uint32(e.img.Bounds().Dx()) }
func (e *ImageEngine) Height() uint32 { return uint32(e.img.Bounds().Dy()) }

func (e *ImageEngine) PixelFormat() PixelFormat { return e.format }

func (e *ImageEngine) OriginalICC() []byte { return e.icc }

// RenderFrame converts the image to normalized float samples.  Still images
// have a single frame at index 0.
func (e *ImageEngine) RenderFrame(index int) (*Frame, error) {
	if index != 0 {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrFrameIndex, index)
	}
	ch := e.format.Channels()
	return NewFrame(e.Width(), e.Height(), ch, renderImage(e.img, e.format)), nil
}

// rgbaLayout lists, per format, which of the R, G, B, A samples are kept.
var rgbaLayout = map[PixelFormat][]int{
	Gray:      {0},
	GrayAlpha: {0, 3},
	RGB:       {0, 1, 2},
	RGBA:      {0, 1, 2, 3},
}

func renderImage(img image.Image, format PixelFormat) []float32 {
	b := img.Bounds()
	out := make([]float32, 0, b.Dx()*b.Dy()*format.Channels())

	keep, ok := rgbaLayout[format]
	switch m := img.(type) {
	case *image.NRGBA:
		if ok {
			for y := b.Min.Y; y < b.Max.Y; y++ {
				row := m.Pix[m.PixOffset(b.Min.X, y):]
				for x := 0; x < b.Dx(); x++ {
					px := row[x*4 : x*4+4]
					for _, c := range keep {
						out = append(out, unit8(px[c]))
					}
				}
			}
			return out
		}
	case *image.NRGBA64:
		if ok {
			for y := b.Min.Y; y < b.Max.Y; y++ {
				row := m.Pix[m.PixOffset(b.Min.X, y):]
				for x := 0; x < b.Dx(); x++ {
					px := row[x*8 : x*8+8]
					for _, c := range keep {
						out = append(out, unit16(uint16(px[2*c])<<8|uint16(px[2*c+1])))
					}
				}
			}
			return out
		}
	case *image.Gray:
		if format == Gray {
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for _, v := range m.Pix[m.PixOffset(b.Min.X, y):][:b.Dx()] {
					out = append(out, unit8(v))
				}
			}
			return out
		}
	case *image.CMYK:
		if format == CMYK {
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for _, v := range m.Pix[m.PixOffset(b.Min.X, y):][:b.Dx()*4] {
					out = append(out, unit8(v))
				}
			}
			return out
		}
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out = appendPixel(out, img.At(x, y), format)
		}
	}
	return out
}

func appendPixel(out []float32, c color.Color, format PixelFormat) []float32 {
	switch format {
	case Gray:
		g := color.Gray16Model.Convert(c).(color.Gray16)
		return append(out, unit16(g.Y))
	case CMYK:
		k := color.CMYKModel.Convert(c).(color.CMYK)
		return append(out, unit8(k.C), unit8(k.M), unit8(k.Y), unit8(k.K))
	}
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	switch format {
	case GrayAlpha:
		y := (19595*uint32(n.R) + 38470*uint32(n.G) + 7471*uint32(n.B) + 1<<15) >> 16
		return append(out, unit16(uint16(y)), unit16(n.A))
	case CMYKA:
		k := color.CMYKModel.Convert(c).(color.CMYK)
		return append(out, unit8(k.C), unit8(k.M), unit8(k.Y), unit8(k.K), unit16(n.A))
	case RGB:
		return append(out, unit16(n.R), unit16(n.G), unit16(n.B))
	}
	return append(out, unit16(n.R), unit16(n.G), unit16(n.B), unit16(n.A))
}

func unit8(v uint8) float32   { return float32(v) / 0xff }
func unit16(v uint16) float32 { return float32(v) / 0xffff }

// pixelFormatOf classifies img by its concrete type alone.  Pixel values
// never change the answer: an NRGBA whose alpha happens to be 255 is still
// RGBA.
func pixelFormatOf(img image.Image) PixelFormat {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return Gray
	case *image.CMYK:
		return CMYK
	case *image.YCbCr:
		return RGB
	}
	return RGBA
}
