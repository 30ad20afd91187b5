// Package jxl defines the JPEG XL codec engine the decoder adapter drives,
// and provides engines backed by real codecs.
package jxl

import (
	"fmt"
	"io"
)

// PixelFormat is the channel layout a JPEG XL image decodes to.
type PixelFormat int

const (
	Gray PixelFormat = iota
	GrayAlpha
	RGB
	RGBA
	CMYK
	CMYKA
)

// Channels returns the number of interleaved samples per pixel the engine
// renders for p.
func (p PixelFormat) Channels() int {
	switch p {
	case Gray:
		return 1
	case GrayAlpha:
		return 2
	case RGB:
		return 3
	case RGBA, CMYK:
		return 4
	case CMYKA:
		return 5
	}
	return 0
}

func (p PixelFormat) String() string {
	switch p {
	case Gray:
		return "gray"
	case GrayAlpha:
		return "graya"
	case RGB:
		return "rgb"
	case RGBA:
		return "rgba"
	case CMYK:
		return "cmyk"
	case CMYKA:
		return "cmyka"
	}
	return fmt.Sprintf("PixelFormat(%d)", int(p))
}

// Frame is one rendered frame.  Samples are float32, nominally in [0, 1],
// interleaved by pixel then by channel.
type Frame struct {
	Width    uint32
	Height   uint32
	Channels int
	samples  []float32
}

// NewFrame wraps interleaved samples as a Frame.
func NewFrame(width, height uint32, channels int, samples []float32) *Frame {
	return &Frame{Width: width, Height: height, Channels: channels, samples: samples}
}

// ImageAllChannels returns every channel of the frame, interleaved.
func (f *Frame) ImageAllChannels() []float32 { return f.samples }

// Engine is an opened JPEG XL image.  Header fields are parsed at open time;
// RenderFrame does the pixel work.
type Engine interface {
	Width() uint32
	Height() uint32
	PixelFormat() PixelFormat
	// OriginalICC returns the embedded ICC profile, or nil.  Callers must
	// not modify the returned slice.
	OriginalICC() []byte
	RenderFrame(index int) (*Frame, error)
}

// OpenFunc opens an Engine over a JPEG XL bitstream.  The stream is consumed
// as far as the engine needs.
type OpenFunc func(r io.Reader) (Engine, error)
