package decoder

import (
	"context"
	"io"

	"github.com/Skryldev/imagedecoder/core"
	"golang.org/x/image/webp"
)

// WebP decodes lossy and lossless still WebP images using
// golang.org/x/image/webp.  Animated WebP is not supported.
type WebP struct{}

func NewWebP() *WebP { return &WebP{} }

func (w *WebP) CanDecode(format core.Format) bool {
	return format == core.FormatWebP
}

func (w *WebP) Open(ctx context.Context, r io.Reader) (core.ImageDecoder, error) {
	return openStd(ctx, r, core.FormatWebP, webp.DecodeConfig, webp.Decode)
}
