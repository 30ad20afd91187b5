package core

import (
	"fmt"

	apperrors "github.com/Skryldev/imagedecoder/errors"
)

// Limits describes resource ceilings for decoding one image.  A zero field
// means no limit.
type Limits struct {
	MaxImageWidth  uint32
	MaxImageHeight uint32
	// MaxAlloc bounds the bytes reserved for output buffers.
	MaxAlloc uint64
	// MaxIntermediateAlloc bounds memory held inside the codec while it
	// decodes.  Only decoders whose LimitSupport says so can enforce it.
	MaxIntermediateAlloc uint64

	reserved uint64
}

// LimitSupport lists the advanced limit categories a decoder enforces on top
// of the baseline (dimensions and output allocation).
type LimitSupport struct {
	IntermediateAlloc bool
}

// NoLimits returns a policy with every ceiling disabled.
func NoLimits() Limits { return Limits{} }

// DefaultLimitSupport is the baseline every decoder provides.
func DefaultLimitSupport() LimitSupport { return LimitSupport{} }

// CheckSupport fails when l asks for a category that supported lacks.
func (l Limits) CheckSupport(supported LimitSupport) error {
	if l.MaxIntermediateAlloc != 0 && !supported.IntermediateAlloc {
		return apperrors.NewLimit(apperrors.LimitUnsupported, "intermediate allocation limit")
	}
	return nil
}

// CheckDimensions fails when width or height exceed the configured maximum.
func (l Limits) CheckDimensions(width, height uint32) error {
	if l.MaxImageWidth != 0 && width > l.MaxImageWidth {
		return apperrors.NewLimit(apperrors.LimitDimensions,
			fmt.Sprintf("width %d > %d", width, l.MaxImageWidth))
	}
	if l.MaxImageHeight != 0 && height > l.MaxImageHeight {
		return apperrors.NewLimit(apperrors.LimitDimensions,
			fmt.Sprintf("height %d > %d", height, l.MaxImageHeight))
	}
	return nil
}

// Reserve accounts n bytes against MaxAlloc.  On failure nothing is
// accounted.
func (l *Limits) Reserve(n uint64) error {
	if l.MaxAlloc == 0 {
		return nil
	}
	if n > l.MaxAlloc-l.reserved {
		return apperrors.NewLimit(apperrors.LimitInsufficientMemory,
			fmt.Sprintf("need %d bytes, %d left", n, l.MaxAlloc-l.reserved))
	}
	l.reserved += n
	return nil
}

// Free returns n previously reserved bytes to the budget.
func (l *Limits) Free(n uint64) {
	if n > l.reserved {
		n = l.reserved
	}
	l.reserved -= n
}

// Reserved returns the bytes currently accounted against MaxAlloc.
func (l Limits) Reserved() uint64 { return l.reserved }
