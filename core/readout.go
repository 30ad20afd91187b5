package core

import (
	"fmt"
	"image"
	"math"

	apperrors "github.com/Skryldev/imagedecoder/errors"
)

// TotalBytes returns the buffer length ReadImage expects from dec.
func TotalBytes(dec ImageDecoder) uint64 {
	w, h := dec.Dimensions()
	return uint64(w) * uint64(h) * uint64(dec.ColorType().BytesPerPixel())
}

// DecodeImage reserves the output buffer against limits, reads dec into it
// and wraps the samples in an image.Image.  dec is consumed.
func DecodeImage(dec ImageDecoder, limits Limits) (image.Image, error) {
	w, h := dec.Dimensions()
	if err := limits.CheckDimensions(w, h); err != nil {
		return nil, err
	}
	total := TotalBytes(dec)
	if total > math.MaxInt {
		return nil, apperrors.NewLimit(apperrors.LimitInsufficientMemory,
			fmt.Sprintf("%d byte buffer does not fit in memory", total))
	}
	if err := limits.Reserve(total); err != nil {
		return nil, err
	}

	buf := make([]byte, total)
	if err := dec.ReadImage(buf); err != nil {
		return nil, err
	}
	return wrapBuffer(buf, int(w), int(h), dec.ColorType())
}

// wrapBuffer adopts buf as the pixel storage of an image.Image where the
// layout allows it and expands it otherwise.
func wrapBuffer(buf []byte, w, h int, ct ColorType) (image.Image, error) {
	rect := image.Rect(0, 0, w, h)
	switch ct {
	case ColorL8:
		return &image.Gray{Pix: buf, Stride: w, Rect: rect}, nil
	case ColorL16:
		return &image.Gray16{Pix: buf, Stride: 2 * w, Rect: rect}, nil
	case ColorRGBA8:
		return &image.NRGBA{Pix: buf, Stride: 4 * w, Rect: rect}, nil
	case ColorRGBA16:
		return &image.NRGBA64{Pix: buf, Stride: 8 * w, Rect: rect}, nil
	case ColorRGB8:
		dst := image.NewNRGBA(rect)
		for i, j := 0, 0; i < len(buf); i, j = i+3, j+4 {
			dst.Pix[j] = buf[i]
			dst.Pix[j+1] = buf[i+1]
			dst.Pix[j+2] = buf[i+2]
			dst.Pix[j+3] = 0xff
		}
		return dst, nil
	case ColorLA8:
		dst := image.NewNRGBA(rect)
		for i, j := 0, 0; i < len(buf); i, j = i+2, j+4 {
			dst.Pix[j] = buf[i]
			dst.Pix[j+1] = buf[i]
			dst.Pix[j+2] = buf[i]
			dst.Pix[j+3] = buf[i+1]
		}
		return dst, nil
	}
	return nil, fmt.Errorf("%w: color type %v", apperrors.ErrUnsupportedFormat, ct)
}
