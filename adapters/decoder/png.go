package decoder

import (
	"context"
	"image/png"
	"io"

	"github.com/Skryldev/imagedecoder/core"
)

// PNG decodes PNG images using the standard library.
type PNG struct{}

func NewPNG() *PNG { return &PNG{} }

func (p *PNG) CanDecode(format core.Format) bool {
	return format == core.FormatPNG
}

func (p *PNG) Open(ctx context.Context, r io.Reader) (core.ImageDecoder, error) {
	return openStd(ctx, r, core.FormatPNG, png.DecodeConfig, png.Decode)
}
