package core

import (
	"bytes"
	"context"
	"fmt"

	apperrors "github.com/Skryldev/imagedecoder/errors"
)

// OpenDecoder looks up the decoder for img.Format, opens img.Data with it and
// applies limits.  The returned decoder has not read any pixels yet.
func OpenDecoder(ctx context.Context, reg Registry, img *ImageData, limits Limits) (ImageDecoder, error) {
	if len(img.Data) == 0 {
		return nil, apperrors.New(apperrors.CategoryInput, "open", apperrors.ErrEmptyInput)
	}
	factory, ok := reg.DecoderFor(img.Format)
	if !ok {
		return nil, apperrors.New(apperrors.CategoryDecode, "open",
			fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, img.Format))
	}
	dec, err := factory.Open(ctx, bytes.NewReader(img.Data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "open", err)
	}
	if err := dec.SetLimits(limits); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryLimits, "open.limits", err)
	}
	return dec, nil
}

// DescribeDecoder fills a Metadata value from the decoder's queries.
func DescribeDecoder(dec ImageDecoder, format Format) (Metadata, error) {
	w, h := dec.Dimensions()
	icc, err := dec.ICCProfile()
	if err != nil {
		return Metadata{}, err
	}
	ct := dec.ColorType()
	return Metadata{
		Width:             int(w),
		Height:            int(h),
		Format:            format,
		ColorType:         ct,
		OriginalColorType: dec.OriginalColorType(),
		HasAlpha:          ct.HasAlpha(),
		ICCProfile:        icc,
	}, nil
}
