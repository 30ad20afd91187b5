package jxl

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/gen2brain/jpegxl"

	apperrors "github.com/Skryldev/imagedecoder/errors"
	"github.com/Skryldev/imagedecoder/utils"
)

// WASMEngine decodes with gen2brain/jpegxl (libjxl compiled to WASM).
// Open reads only the header: the channel layout comes from the image
// metadata, because libjxl hands every image back as RGBA.  Pixels are
// decoded by RenderFrame, so limits checked between the two run before any
// pixel buffer exists.
//
// libjxl does not return the black channel through this API, so CMYK
// sources are reported but refuse to render.  The embedded ICC profile is
// not exposed.
type WASMEngine struct {
	data   []byte
	header Header
}

// OpenWASM drains r and reads the image header.  It satisfies OpenFunc.
func OpenWASM(r io.Reader) (Engine, error) {
	buf, err := utils.DrainReader(context.Background(), r, 32*1024)
	if err != nil {
		return nil, err
	}
	data := utils.CloneBytes(buf.Bytes())
	utils.ReleaseBuffer(buf)

	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	cfg, err := jpegxl.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if uint32(cfg.Width) != h.Width || uint32(cfg.Height) != h.Height {
		return nil, fmt.Errorf("%w: header %dx%d, libjxl %dx%d",
			apperrors.ErrInvalidDimensions, h.Width, h.Height, cfg.Width, cfg.Height)
	}
	return &WASMEngine{data: data, header: h}, nil
}

// Header returns the parsed image header.
func (e *WASMEngine) Header() Header { return e.header }

func (e *WASMEngine) Width() uint32  { return e.header.Width }
func (e *WASMEngine) Height() uint32 { return e.header.Height }

func (e *WASMEngine) PixelFormat() PixelFormat { return e.header.PixelFormat() }

func (e *WASMEngine) OriginalICC() []byte { return nil }

// RenderFrame decodes the stream.  Animated images render their first frame.
func (e *WASMEngine) RenderFrame(index int) (*Frame, error) {
	if index != 0 {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrFrameIndex, index)
	}
	format := e.PixelFormat()
	if format == CMYK || format == CMYKA {
		return nil, apperrors.NewUnsupportedFeature(apperrors.FormatHint("jxl"), "black channel through the WASM engine")
	}

	img, err := jpegxl.Decode(bytes.NewReader(e.data))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if uint32(b.Dx()) != e.header.Width || uint32(b.Dy()) != e.header.Height {
		return nil, fmt.Errorf("%w: decoded %dx%d, header %dx%d",
			apperrors.ErrInvalidDimensions, b.Dx(), b.Dy(), e.header.Width, e.header.Height)
	}
	return NewImageEngineFormat(img, format, nil).RenderFrame(0)
}
