package decoder

import (
	"context"
	"image/jpeg"
	"io"

	"github.com/Skryldev/imagedecoder/core"
)

// JPEG decodes JPEG images using the standard library.
type JPEG struct{}

// NewJPEG returns an initialised JPEG decoder.
func NewJPEG() *JPEG { return &JPEG{} }

func (j *JPEG) CanDecode(format core.Format) bool {
	return format == core.FormatJPEG
}

func (j *JPEG) Open(ctx context.Context, r io.Reader) (core.ImageDecoder, error) {
	return openStd(ctx, r, core.FormatJPEG, jpeg.DecodeConfig, jpeg.Decode)
}
