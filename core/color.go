package core

// ColorType is the integer sample layout an ImageDecoder writes into the
// caller's buffer.  16-bit layouts store each sample big-endian.
type ColorType int

const (
	ColorL8 ColorType = iota
	ColorLA8
	ColorRGB8
	ColorRGBA8
	ColorL16
	ColorRGBA16
)

// Channels returns the number of samples per pixel.
func (c ColorType) Channels() int {
	switch c {
	case ColorL8, ColorL16:
		return 1
	case ColorLA8:
		return 2
	case ColorRGB8:
		return 3
	case ColorRGBA8, ColorRGBA16:
		return 4
	}
	return 0
}

// BytesPerSample returns the width of one sample.
func (c ColorType) BytesPerSample() int {
	switch c {
	case ColorL16, ColorRGBA16:
		return 2
	}
	return 1
}

// BytesPerPixel returns Channels * BytesPerSample.
func (c ColorType) BytesPerPixel() int { return c.Channels() * c.BytesPerSample() }

// HasAlpha reports whether the layout carries an alpha channel.
func (c ColorType) HasAlpha() bool {
	switch c {
	case ColorLA8, ColorRGBA8, ColorRGBA16:
		return true
	}
	return false
}

func (c ColorType) String() string {
	switch c {
	case ColorL8:
		return "L8"
	case ColorLA8:
		return "La8"
	case ColorRGB8:
		return "Rgb8"
	case ColorRGBA8:
		return "Rgba8"
	case ColorL16:
		return "L16"
	case ColorRGBA16:
		return "Rgba16"
	}
	return "Unknown"
}

// ExtendedColorType describes the color type of the source as encoded.  It
// can name layouts, like CMYK, that ColorType has no buffer format for.
type ExtendedColorType int

const (
	ExtendedL8 ExtendedColorType = iota
	ExtendedLA8
	ExtendedRGB8
	ExtendedRGBA8
	ExtendedL16
	ExtendedRGBA16
	ExtendedCMYK8
)

// Channels returns the number of samples per pixel in the source.
func (e ExtendedColorType) Channels() int {
	switch e {
	case ExtendedL8, ExtendedL16:
		return 1
	case ExtendedLA8:
		return 2
	case ExtendedRGB8:
		return 3
	case ExtendedRGBA8, ExtendedRGBA16, ExtendedCMYK8:
		return 4
	}
	return 0
}

func (e ExtendedColorType) String() string {
	switch e {
	case ExtendedL8:
		return "L8"
	case ExtendedLA8:
		return "La8"
	case ExtendedRGB8:
		return "Rgb8"
	case ExtendedRGBA8:
		return "Rgba8"
	case ExtendedL16:
		return "L16"
	case ExtendedRGBA16:
		return "Rgba16"
	case ExtendedCMYK8:
		return "Cmyk8"
	}
	return "Unknown"
}

// Extended returns the ExtendedColorType with the same layout as c.
func (c ColorType) Extended() ExtendedColorType {
	switch c {
	case ColorL8:
		return ExtendedL8
	case ColorLA8:
		return ExtendedLA8
	case ColorRGB8:
		return ExtendedRGB8
	case ColorRGBA8:
		return ExtendedRGBA8
	case ColorL16:
		return ExtendedL16
	case ColorRGBA16:
		return ExtendedRGBA16
	}
	return ExtendedRGBA8
}
