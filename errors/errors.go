package errors

import (
	"errors"
	"fmt"
)

// Category classifies error types for targeted handling and monitoring.
type Category string

const (
	CategoryDecode      Category = "decode"
	CategoryUnsupported Category = "unsupported"
	CategoryLimits      Category = "limits"
	CategoryPipeline    Category = "pipeline"
	CategoryConfig      Category = "config"
	CategoryInput       Category = "input"
)

// ProcessingError is the structured error type used by the processor and
// pipeline to attach an operation name to a lower level failure.
type ProcessingError struct {
	Category Category
	Op       string // operation name
	Err      error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Category, e.Op, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// New creates a ProcessingError.
func New(category Category, op string, err error) *ProcessingError {
	return &ProcessingError{Category: category, Op: op, Err: err}
}

// Wrap wraps an existing error with context.  The category is taken from the
// wrapped error when it is one of the image error types.
func Wrap(category Category, op string, err error) error {
	if err == nil {
		return nil
	}
	if c, ok := categoryOf(err); ok {
		category = c
	}
	return New(category, op, err)
}

// IsCategory reports whether err belongs to the given category.
func IsCategory(err error, cat Category) bool {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Category == cat
	}
	c, ok := categoryOf(err)
	return ok && c == cat
}

func categoryOf(err error) (Category, bool) {
	switch {
	case IsUnsupported(err):
		return CategoryUnsupported, true
	case IsLimit(err):
		return CategoryLimits, true
	case IsDecoding(err):
		return CategoryDecode, true
	}
	return "", false
}

// FormatHint names the image format an error relates to.
type FormatHint string

// FormatHintUnknown is used when the failing input could not be attributed
// to a format yet.
const FormatHintUnknown FormatHint = "unknown"

// DecodingError reports that a codec failed to parse or render its input.
// Err carries the codec's own diagnostic unchanged.
type DecodingError struct {
	Format FormatHint
	Err    error
}

// NewDecoding creates a DecodingError.
func NewDecoding(format FormatHint, err error) *DecodingError {
	return &DecodingError{Format: format, Err: err}
}

func (e *DecodingError) Error() string {
	if e.Format == FormatHintUnknown || e.Format == "" {
		return fmt.Sprintf("format error decoding image: %v", e.Err)
	}
	return fmt.Sprintf("format error decoding %s: %v", e.Format, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// UnsupportedKind says what part of an image could not be handled.
type UnsupportedKind int

const (
	UnsupportedColor UnsupportedKind = iota
	UnsupportedFormat
	UnsupportedFeature
)

// UnsupportedError reports a well-formed image that this library refuses to
// decode.  For UnsupportedColor, Color holds the offending color type.
type UnsupportedError struct {
	Format  FormatHint
	Kind    UnsupportedKind
	Color   fmt.Stringer
	Feature string
}

// NewUnsupportedColor creates an UnsupportedError for a color type.
func NewUnsupportedColor(format FormatHint, color fmt.Stringer) *UnsupportedError {
	return &UnsupportedError{Format: format, Kind: UnsupportedColor, Color: color}
}

// NewUnsupportedFeature creates an UnsupportedError for a named feature.
func NewUnsupportedFeature(format FormatHint, feature string) *UnsupportedError {
	return &UnsupportedError{Format: format, Kind: UnsupportedFeature, Feature: feature}
}

func (e *UnsupportedError) Error() string {
	switch e.Kind {
	case UnsupportedColor:
		return fmt.Sprintf("%s: decoder does not support the color type %v", e.Format, e.Color)
	case UnsupportedFeature:
		return fmt.Sprintf("%s: decoder does not support %s", e.Format, e.Feature)
	default:
		return fmt.Sprintf("%s: %v", e.Format, ErrUnsupportedFormat)
	}
}

// Is lets errors.Is(err, ErrUnsupportedFormat) match format-level refusals.
func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupportedFormat && e.Kind == UnsupportedFormat
}

// LimitKind says which resource ceiling was hit.
type LimitKind int

const (
	LimitDimensions LimitKind = iota
	LimitInsufficientMemory
	LimitUnsupported
)

func (k LimitKind) String() string {
	switch k {
	case LimitDimensions:
		return "image dimensions exceed the configured limit"
	case LimitInsufficientMemory:
		return "memory limit exceeded"
	case LimitUnsupported:
		return "limit is not supported by the decoder"
	}
	return "limit error"
}

// LimitError reports that a limits policy is infeasible for an image.
type LimitError struct {
	Kind   LimitKind
	Detail string
}

// NewLimit creates a LimitError.
func NewLimit(kind LimitKind, detail string) *LimitError {
	return &LimitError{Kind: kind, Detail: detail}
}

func (e *LimitError) Error() string {
	if e.Detail == "" {
		return "the decoder was limited: " + e.Kind.String()
	}
	return fmt.Sprintf("the decoder was limited: %s (%s)", e.Kind, e.Detail)
}

// IsDecoding reports whether err is or wraps a DecodingError.
func IsDecoding(err error) bool {
	var de *DecodingError
	return errors.As(err, &de)
}

// IsUnsupported reports whether err is or wraps an UnsupportedError.
func IsUnsupported(err error) bool {
	var ue *UnsupportedError
	return errors.As(err, &ue)
}

// IsLimit reports whether err is or wraps a LimitError.
func IsLimit(err error) bool {
	var le *LimitError
	return errors.As(err, &le)
}

// Sentinel errors for common failure modes.
var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrEmptyInput        = errors.New("empty input")
	ErrInputTooLarge     = errors.New("input exceeds the configured size limit")
	ErrBufferSize        = errors.New("output buffer size does not match the image")
	ErrDecoderConsumed   = errors.New("decoder already consumed by a previous read")
	ErrFrameIndex        = errors.New("frame index out of range")
	ErrWorkerPoolFull    = errors.New("worker pool queue full")
)
