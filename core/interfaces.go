package core

import (
	"context"
	"io"
)

// ImageDecoder is the capability set every format adapter exposes for one
// opened image.  The metadata getters are pure reads.  ReadImage is a one-shot
// terminal action: after it has been called, ReadImage, SetLimits and
// ICCProfile fail with errors.ErrDecoderConsumed.
type ImageDecoder interface {
	// Dimensions returns the image width and height in pixels.
	Dimensions() (width, height uint32)
	// ColorType is the sample layout ReadImage writes into its buffer.
	ColorType() ColorType
	// OriginalColorType is the color type of the source as encoded.
	OriginalColorType() ExtendedColorType
	// ICCProfile returns a copy of the embedded ICC profile, or nil.
	ICCProfile() ([]byte, error)
	// SetLimits validates limits against the image and stores them.  On
	// failure the previous limits stay active.
	SetLimits(limits Limits) error
	// ReadImage renders the image into buf, which must be exactly
	// TotalBytes long.
	ReadImage(buf []byte) error
}

// Decoder opens images of one or more formats as ImageDecoders.
// Implementations live in adapters/decoder/ and adapters/vips/.
type Decoder interface {
	// Open parses enough of r to answer the ImageDecoder metadata queries.
	Open(ctx context.Context, r io.Reader) (ImageDecoder, error)
	// CanDecode reports whether this decoder handles the given format hint.
	CanDecode(format Format) bool
}

// MetricsCollector receives performance observations from the pipeline.
type MetricsCollector interface {
	RecordProcessingTime(stepName string, d interface{ Seconds() float64 })
	RecordThroughput(bytes int64)
	RecordError(stepName string, category string)
}

// Logger is a minimal structured logging interface.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Registry maps Format values to Decoder implementations.
type Registry interface {
	DecoderFor(format Format) (Decoder, bool)
	RegisterDecoder(format Format, d Decoder)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
