// Package jxltest holds small JPEG XL bitstreams for tests.  Each decodes
// losslessly to the samples its comment lists.
package jxltest

// Gray is a 2x2 8-bit grey image with samples 0, 85, 170 and 255 in row order.
var Gray = []byte(
	"\xff\x0a\x08\x10\x10\x14\x37\x02\x08\x02\x01\x00\x2c\x00\x89\x7c" +
		"\x7e\xf4\x6f\x00\xaa\xa8\xfa\x87\x0d",
)

// GrayAlpha is Gray with an alpha channel of 255, 170, 85 and 0.
var GrayAlpha = []byte(
	"\xff\x0a\x08\x10\xb0\x28\x6e\x04\x08\x08\x10\x00\x30\x00\x89\x7c" +
		"\x7e\xf4\x6f\x00\xaa\xa8\xfa\x87\x7d\x02",
)

// RGB is a 2x1 8-bit image: red (255, 0, 0) then (0, 85, 170).
var RGB = []byte(
	"\xff\x0a\x00\x00\x02\x80\x80\xe2\x46\x08\x02\x01\x00\x2c\x00\x89" +
		"\x7c\x7e\xf4\x6f\x00\xaa\xa8\xfa\x37\x48",
)

// RGBA is RGB with alpha 255 then 85.
var RGBA = []byte(
	"\xff\x0a\x00\x00\x02\x80\x05\xc5\x8d\x08\x08\x10\x00\x30\x00\x89" +
		"\x7c\x7e\xf4\x6f\x00\xaa\xa8\xfa\x37\x48\x0b",
)

// RGBRotated stores the RGB samples as 2x1 with orientation 6 (rotate 90 degrees
// clockwise), so it displays as 1x2.
var RGBRotated = []byte(
	"\xff\x0a\x00\x00\x02\x58\x20\xa0\xb8\x25\x08\x02\x01\x00\x2c\x00" +
		"\x89\x7c\x7e\xf4\x6f\x00\xaa\xa8\xfa\x37\x48",
)

// Gray16 is a 2x2 16-bit grey image with samples 0, 0x1010, 0x2020 and 0x3fff.
var Gray16 = []byte(
	"\xff\x0a\x08\x10\xfc\x04\xc5\x8d\x08\x02\x01\x00\x3c\x00\x89\x7c" +
		"\x7e\xf7\xff\x1b\x00\x00\x02\x02\x02\xfa\xff\x61\x03",
)

// CMYK is a 2x1 image with colour samples (255, 0, 0) then (0, 85, 170) and a
// black extra channel of 0 then 255.
var CMYK = []byte(
	"\xff\x0a\x00\x00\x02\x80\x51\x00\xa0\xb8\x11\x08\x08\x10\x00\x30" +
		"\x00\x89\x7c\x7e\xf4\x6f\x00\xaa\xa8\xfa\x37\x48\x0c",
)

// GrayBoxed is Gray wrapped in an ISO BMFF container with a single jxlc box.
var GrayBoxed = []byte(
	"\x00\x00\x00\x0c\x4a\x58\x4c\x20\x0d\x0a\x87\x0a\x00\x00\x00\x14" +
		"\x66\x74\x79\x70\x6a\x78\x6c\x20\x00\x00\x00\x00\x6a\x78\x6c\x20" +
		"\x00\x00\x00\x21\x6a\x78\x6c\x63\xff\x0a\x08\x10\x10\x14\x37\x02" +
		"\x08\x02\x01\x00\x2c\x00\x89\x7c\x7e\xf4\x6f\x00\xaa\xa8\xfa\x87" +
		"\x0d",
)

// GrayParts is Gray split across two jxlp boxes.
var GrayParts = []byte(
	"\x00\x00\x00\x0c\x4a\x58\x4c\x20\x0d\x0a\x87\x0a\x00\x00\x00\x14" +
		"\x66\x74\x79\x70\x6a\x78\x6c\x20\x00\x00\x00\x00\x6a\x78\x6c\x20" +
		"\x00\x00\x00\x11\x6a\x78\x6c\x70\x00\x00\x00\x00\xff\x0a\x08\x10" +
		"\x10\x00\x00\x00\x20\x6a\x78\x6c\x70\x80\x00\x00\x01\x14\x37\x02" +
		"\x08\x02\x01\x00\x2c\x00\x89\x7c\x7e\xf4\x6f\x00\xaa\xa8\xfa\x87" +
		"\x0d",
)

// Flat2048 is a 2048x2048 grey image of zeros, 180 bytes on the wire.  Decoding it
// allocates 16 MiB of RGBA output.
var Flat2048 = []byte(
	"\xff\x0a\xfa\x3f\x01\x41\x71\x23\x08\x02\x01\x00\x0c\x00\x00\x00" +
		"\x40\x00\x04\x40\x00\x04\x40\x00\x04\x40\x00\x04\x40\x00\x04\x40" +
		"\x00\x04\x40\x00\x04\x40\x00\x04\x40\x00\x04\x40\x00\x04\x40\x00" +
		"\x04\x40\x00\x04\x40\x00\x04\x40\x00\x04\x40\x00\x04\x40\x00\x04" +
		"\x40\x00\x04\x40\x00\x04\x40\x00\x04\x40\x00\x04\x40\x00\x04\x40" +
		"\x00\x04\x40\x00\x04\x40\x00\x04\x40\x00\x04\x40\x00\x04\x40\x00" +
		"\x04\x40\x00\x04\x40\x00\x04\x40\x00\x04\x40\x00\x04\x40\x00\x04" +
		"\x00\xcb\xe7\x1b\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03" +
		"\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03" +
		"\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03" +
		"\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03\x03" +
		"\x03\x03\x03\x03",
)

// LibjxlRGBA is a 2x1 RGBA image written by the libjxl encoder (lossless,
// effort 1): (255, 0, 0, 255) then (0, 85, 170, 85).
var LibjxlRGBA = []byte(
	"\xff\x0a\x00\x70\xb0\x12\x08\x08\x10\x00\xb8\x02\x4b\x18\x9b\x9c" +
		"\x71\x84\x03\x38\x80\x03\x38\x20\x4a\xc0\x39\x05\x01\x00\x20\x44" +
		"\x80\x08\x10\x01\x22\x40\xe4\x79\xe4\x9e\xbe\xa0\x73\xef\xad\xaa" +
		"\xaa\x7a\x49\x92\x24\x04\xd4\xdd\xdd\xdd\xdd\xdd\x33\x33\xf3\xaa" +
		"\xfe\xee\xee\xee\x2e\xfc\xbf\x7f\xcf\x7f\x0f\x8d\x39\xe7\x5c\x6b" +
		"\x9f\x7b\x93\x24\x49\x08\xa8\xaa\xaa\xaa\xaa\xaa\xfe\xff\xff\x9f" +
		"\x7b\x5f\x77\x77\x77\x37\xfc\xbf\x7f\xcf\x7f\x0f\x8d\x39\xe7\x5c" +
		"\x6b\x9f\x7b\x93\x24\x49\x08\xa8\xaa\xaa\xaa\xaa\xaa\xfe\xff\xff" +
		"\x9f\x7b\x5f\x77\x77\x77\x37\xfc\xbf\x7f\xcf\x7f\x0f\x8d\x39\xe7" +
		"\x5c\x6b\x9f\x7b\x93\x24\x49\x08\xa8\xaa\xaa\xaa\xaa\xaa\xfe\xff" +
		"\xff\x9f\x7b\x5f\x77\x77\x77\xf7\x05\x64\x00\xe0\xe9\xef\xa1\x7a" +
		"\xf6\x7b\xa8\x1e\x29\x8f\xd4\xd3\x3f\x08",
)
