package core

import (
	"context"
	"image"
	"io"
	"time"
)

// Format identifies an image codec.
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatWebP    Format = "webp"
	FormatJXL     Format = "jxl"
	FormatUnknown Format = "unknown"
)

// Metadata holds extracted image information without loading pixel data.
type Metadata struct {
	Width             int
	Height            int
	Format            Format
	ColorType         ColorType
	OriginalColorType ExtendedColorType
	HasAlpha          bool
	ICCProfile        []byte // nil when the source embeds none
	SizeBytes         int64  // decoded buffer size once pixels are read
}

// ImageData is the in-memory representation passed through a pipeline.
// Data holds encoded bytes; Image holds the decoded pixel buffer when needed.
type ImageData struct {
	// Encoded bytes of the raw input.
	Data   []byte
	Format Format

	// Decoded pixel buffer; populated by the decode step.
	Image image.Image

	// Metadata extracted during probe or decode.
	Meta Metadata

	// Size of the original raw input.
	OriginalSize int64
}

// ProcessingResult is returned to the caller after the full pipeline completes.
type ProcessingResult struct {
	Primary *ImageData

	// Observability.
	ProcessingTime time.Duration
	StepTimings    map[string]time.Duration
}

// Source abstracts where raw bytes come from (reader, file path, URL, etc.).
type Source struct {
	Reader      io.Reader
	ContentType string // optional hint
	Name        string // optional logical name / filename
	Size        int64  // -1 if unknown
}

// Job encapsulates a single unit of work for the worker pool.
type Job struct {
	ID      string
	Ctx     context.Context //nolint:containedctx // intentional for async jobs
	Source  Source
	Steps   []Step
	// Result channel; nil for fire-and-forget.
	ResultCh chan<- JobResult
}

// JobResult wraps the outcome of an async job.
type JobResult struct {
	JobID  string
	Result *ProcessingResult
	Err    error
}

// Step is the fundamental pipeline building block.  Each Step transforms an
// *ImageData value and must be safe for concurrent use across goroutines.
type Step interface {
	Name() string
	Execute(ctx context.Context, img *ImageData) (*ImageData, error)
}

// Hook is an optional observer invoked around pipeline steps.
type Hook interface {
	BeforeStep(ctx context.Context, stepName string, img *ImageData)
	AfterStep(ctx context.Context, stepName string, img *ImageData, d time.Duration, err error)
}
