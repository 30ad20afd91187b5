package jxl

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrNotJXL is returned for input that is neither a bare codestream nor
	// an ISO BMFF JPEG XL container.
	ErrNotJXL = errors.New("jxl: not a JPEG XL stream")
	// ErrTruncated is returned when the image header runs past the input.
	ErrTruncated = errors.New("jxl: truncated header")
)

const (
	codestreamSig = "\xff\x0a"
	containerSig  = "\x00\x00\x00\x0cJXL \x0d\x0a\x87\x0a"
)

// Colour spaces and extra channel types as numbered in the bitstream.
const (
	colourSpaceGrey = 1

	extraAlpha = 0
	extraSpot  = 2
	extraBlack = 4
	extraCFA   = 5
)

// Header holds the fields of a JPEG XL image header that decide how the
// decoded samples are laid out.  Width and Height are the displayed size,
// after the orientation is applied.
type Header struct {
	Width         uint32
	Height        uint32
	Orientation   uint32
	BitsPerSample uint32
	FloatSamples  bool
	ColorChannels int
	Alpha         bool
	Black         bool
	XYB           bool
	WantICC       bool
	Animated      bool
}

// PixelFormat maps the header onto the engine's channel layouts.
func (h Header) PixelFormat() PixelFormat {
	switch {
	case h.Black && h.Alpha:
		return CMYKA
	case h.Black:
		return CMYK
	case h.ColorChannels == 1 && h.Alpha:
		return GrayAlpha
	case h.ColorChannels == 1:
		return Gray
	case h.Alpha:
		return RGBA
	}
	return RGB
}

// ReadHeader parses the size header and image metadata at the start of a
// JPEG XL codestream, unwrapping the container first when there is one.
// No pixel data is touched.
func ReadHeader(data []byte) (Header, error) {
	cs, err := codestream(data)
	if err != nil {
		return Header{}, err
	}
	r := &bitReader{buf: cs}
	r.skip(16)

	h := Header{Orientation: 1}
	h.Width, h.Height = readSize(r)

	if r.readBool() {
		h.BitsPerSample = 8
		h.ColorChannels = 3
		h.XYB = true
		return h, r.err
	}

	if r.readBool() {
		h.Orientation = r.readBits(3) + 1
		if r.readBool() {
			readSize(r) // intrinsic size
		}
		if r.readBool() {
			readPreview(r)
		}
		if r.readBool() {
			h.Animated = true
			readAnimation(r)
		}
	}
	h.FloatSamples, h.BitsPerSample = readBitDepth(r)
	r.readBool() // modular 16-bit buffers

	n := r.readU32(0, 0, 1, 0, 2, 4, 1, 12)
	for i := uint32(0); i < n && r.err == nil; i++ {
		switch readExtraChannel(r) {
		case extraAlpha:
			h.Alpha = true
		case extraBlack:
			h.Black = true
		}
	}

	h.XYB = r.readBool()
	h.ColorChannels = 3
	if !r.readBool() {
		h.WantICC = r.readBool()
		if r.readEnum() == colourSpaceGrey {
			h.ColorChannels = 1
		}
	}
	if r.err != nil {
		return Header{}, r.err
	}
	if h.Orientation > 4 {
		h.Width, h.Height = h.Height, h.Width
	}
	return h, nil
}

var aspectRatios = [8][2]uint64{{0, 0}, {1, 1}, {12, 10}, {4, 3}, {3, 2}, {16, 9}, {5, 4}, {2, 1}}

func readSize(r *bitReader) (width, height uint32) {
	small := r.readBool()
	dim := func() uint32 {
		if small {
			return (r.readBits(5) + 1) * 8
		}
		return r.readU32(1, 9, 1, 13, 1, 18, 1, 30)
	}
	height = dim()
	ratio := r.readBits(3)
	if ratio == 0 {
		return dim(), height
	}
	ar := aspectRatios[ratio]
	return uint32(uint64(height) * ar[0] / ar[1]), height
}

func readPreview(r *bitReader) {
	div8 := r.readBool()
	dim := func() {
		if div8 {
			r.readU32(16, 0, 32, 0, 1, 5, 33, 9)
		} else {
			r.readU32(1, 6, 65, 8, 321, 10, 1345, 12)
		}
	}
	dim()
	if r.readBits(3) == 0 {
		dim()
	}
}

func readAnimation(r *bitReader) {
	r.readU32(100, 0, 1000, 0, 1, 10, 1, 30) // ticks per second numerator
	r.readU32(1, 0, 1001, 0, 1, 8, 1, 10)    // denominator
	r.readU32(0, 0, 0, 3, 0, 16, 0, 32)      // loops
	r.readBool()                             // timecodes
}

func readBitDepth(r *bitReader) (float bool, bits uint32) {
	if r.readBool() {
		bits = r.readU32(32, 0, 16, 0, 24, 0, 1, 6)
		r.readBits(4) // exponent bits
		return true, bits
	}
	return false, r.readU32(8, 0, 10, 0, 12, 0, 1, 6)
}

// readExtraChannel consumes one extra channel description and returns its type.
func readExtraChannel(r *bitReader) uint32 {
	if r.readBool() {
		return extraAlpha
	}
	typ := r.readEnum()
	readBitDepth(r)
	r.readU32(0, 0, 3, 0, 4, 0, 1, 3) // dim shift
	r.skip(8 * r.readU32(0, 0, 0, 4, 16, 5, 48, 10))
	switch typ {
	case extraAlpha:
		r.readBool() // premultiplied
	case extraSpot:
		r.skip(4 * 16)
	case extraCFA:
		r.readU32(1, 0, 0, 2, 3, 4, 19, 8)
	}
	return typ
}

// codestream returns the bare codestream inside data.  Containers carry it
// in one jxlc box or in a run of jxlp boxes, each prefixed with a 4-byte
// sequence index.
func codestream(data []byte) ([]byte, error) {
	if len(data) >= len(codestreamSig) && string(data[:len(codestreamSig)]) == codestreamSig {
		return data, nil
	}
	if len(data) < len(containerSig) || string(data[:len(containerSig)]) != containerSig {
		return nil, ErrNotJXL
	}

	var parts []byte
	rest := data[len(containerSig):]
	for len(rest) > 0 {
		if len(rest) < 8 {
			return nil, ErrTruncated
		}
		size := uint64(binary.BigEndian.Uint32(rest))
		typ := string(rest[4:8])
		head := uint64(8)
		switch size {
		case 0:
			size = uint64(len(rest))
		case 1:
			if len(rest) < 16 {
				return nil, ErrTruncated
			}
			size = binary.BigEndian.Uint64(rest[8:])
			head = 16
		}
		if size < head {
			return nil, fmt.Errorf("%w: box %q size %d", ErrNotJXL, typ, size)
		}
		if size > uint64(len(rest)) {
			// A partial final box still carries the header we need.
			size = uint64(len(rest))
		}
		payload := rest[head:size]
		switch typ {
		case "jxlc":
			return payload, nil
		case "jxlp":
			if len(payload) < 4 {
				return nil, ErrTruncated
			}
			parts = append(parts, payload[4:]...)
		}
		rest = rest[size:]
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: container has no codestream box", ErrNotJXL)
	}
	return parts, nil
}

// bitReader reads the least significant bit of each byte first.  The first
// read past the end sets err and every later read returns zero.
type bitReader struct {
	buf []byte
	pos uint64
	err error
}

func (r *bitReader) readBits(n uint32) uint32 {
	if r.err != nil {
		return 0
	}
	if r.pos+uint64(n) > uint64(len(r.buf))*8 {
		r.err = ErrTruncated
		return 0
	}
	var v uint32
	for i := uint32(0); i < n; i++ {
		bit := r.buf[r.pos>>3] >> (r.pos & 7) & 1
		v |= uint32(bit) << i
		r.pos++
	}
	return v
}

func (r *bitReader) skip(n uint32) {
	if r.err != nil {
		return
	}
	if r.pos+uint64(n) > uint64(len(r.buf))*8 {
		r.err = ErrTruncated
		return
	}
	r.pos += uint64(n)
}

func (r *bitReader) readBool() bool { return r.readBits(1) == 1 }

// readU32 reads a 2-bit selector choosing one of four distributions, each a
// constant c plus u extra bits.
func (r *bitReader) readU32(c0, u0, c1, u1, c2, u2, c3, u3 uint32) uint32 {
	switch r.readBits(2) {
	case 0:
		return c0 + r.readBits(u0)
	case 1:
		return c1 + r.readBits(u1)
	case 2:
		return c2 + r.readBits(u2)
	}
	return c3 + r.readBits(u3)
}

func (r *bitReader) readEnum() uint32 { return r.readU32(0, 0, 1, 0, 2, 4, 18, 6) }
