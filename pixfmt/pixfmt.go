// Package pixfmt implements the pixel-format engine: bits-per-pixel,
// per-channel masks and shifts, endianness, and pure conversions between
// two formats or between a packed pixel and a Color.
package pixfmt

import (
	"fmt"

	"github.com/ltsm/rfbcore/rfberr"
)

// Color is four 8-bit channels. Alpha of zero is valid and common, and
// means "opaque" when the format carries no alpha channel at all.
type Color struct {
	R, G, B, A uint8
}

// Channel describes one color channel's placement inside the packed
// 32-bit pixel representation.
type Channel struct {
	Max   uint16 // of the form 2^k - 1; 0 means "channel absent"
	Shift uint8  // bit position within the packed 32-bit integer
}

// PixelFormat is {bpp, per-channel max & shift, endianness}.
type PixelFormat struct {
	BitsPerPixel            uint8 // one of 8, 16, 24, 30, 32
	Depth                   uint8
	BigEndian               bool
	TrueColor               bool
	Red, Green, Blue, Alpha Channel
}

// BytesPerPixel returns bpp/8.
func (f PixelFormat) BytesPerPixel() int { return int(f.BitsPerPixel) / 8 }

// HasAlpha reports whether the alpha channel is present (max != 0).
func (f PixelFormat) HasAlpha() bool { return f.Alpha.Max != 0 }

var validBPP = map[uint8]bool{8: true, 16: true, 24: true, 30: true, 32: true}

func isPow2Minus1(v uint16) bool {
	return v == 0 || (v&(v+1)) == 0
}

// bitRange returns a channel's bit-range [shift, shift+bits), where
// bits = bit-length of max; an absent channel (max 0) yields (0, 0).
func bitRange(c Channel) (lo, hi int) {
	if c.Max == 0 {
		return 0, 0
	}
	bits := 0
	for m := c.Max; m != 0; m >>= 1 {
		bits++
	}
	return int(c.Shift), int(c.Shift) + bits
}

func overlaps(a, b Channel) bool {
	if a.Max == 0 || b.Max == 0 {
		return false
	}
	aLo, aHi := bitRange(a)
	bLo, bHi := bitRange(b)
	return aLo < bHi && bLo < aHi
}

// New validates and constructs a PixelFormat, rejecting malformed masks or
// an unsupported bpp as rfberr.InvalidFormat.
func New(bpp, depth uint8, bigEndian, trueColor bool, red, green, blue, alpha Channel) (PixelFormat, error) {
	if !validBPP[bpp] {
		return PixelFormat{}, fmt.Errorf("bpp %d: %w", bpp, rfberr.InvalidFormat)
	}
	channels := []Channel{red, green, blue, alpha}
	for _, c := range channels {
		if !isPow2Minus1(c.Max) {
			return PixelFormat{}, fmt.Errorf("channel max %#x is not 2^k-1: %w", c.Max, rfberr.InvalidFormat)
		}
	}
	pairs := [][2]Channel{{red, green}, {red, blue}, {red, alpha}, {green, blue}, {green, alpha}, {blue, alpha}}
	for _, p := range pairs {
		if overlaps(p[0], p[1]) {
			return PixelFormat{}, fmt.Errorf("overlapping channel masks: %w", rfberr.InvalidFormat)
		}
	}
	return PixelFormat{
		BitsPerPixel: bpp,
		Depth:        depth,
		BigEndian:    bigEndian,
		TrueColor:    trueColor,
		Red:          red,
		Green:        green,
		Blue:         blue,
		Alpha:        alpha,
	}, nil
}

// scaleDown maps an 8-bit (0..255) channel value onto 0..max. For a
// max of 2^k-1 below 256 the result is v's top k bits, so max = 255
// returns v unchanged.
func scaleDown(v uint8, max uint16) uint32 {
	if max == 0 {
		return 0
	}
	return (uint32(v) * (uint32(max) + 1)) >> 8
}

// Pixel packs a Color into a native-range pixel value per this format.
// Alpha is omitted from the pack when the format carries no alpha channel.
func (f PixelFormat) Pixel(c Color) uint32 {
	var v uint32
	v |= scaleDown(c.R, f.Red.Max) << f.Red.Shift
	v |= scaleDown(c.G, f.Green.Max) << f.Green.Shift
	v |= scaleDown(c.B, f.Blue.Max) << f.Blue.Shift
	if f.HasAlpha() {
		v |= scaleDown(c.A, f.Alpha.Max) << f.Alpha.Shift
	}
	return v
}

// extract pulls a channel's raw 0..max value out of a packed pixel.
func extract(pixel uint32, c Channel) uint16 {
	if c.Max == 0 {
		return 0
	}
	return uint16((pixel >> c.Shift) & uint32(c.Max))
}

// Color unpacks a pixel into a Color. Each returned channel is the format's
// native 0..max value, NOT rescaled to 0..255 — callers compare top bits or
// rescale themselves.
func (f PixelFormat) Color(pixel uint32) Color {
	a := uint8(0xff)
	if f.HasAlpha() {
		a = uint8(extract(pixel, f.Alpha))
	}
	return Color{
		R: uint8(extract(pixel, f.Red)),
		G: uint8(extract(pixel, f.Green)),
		B: uint8(extract(pixel, f.Blue)),
		A: a,
	}
}

// sameLayout reports whether two formats are bit-identical ignoring alpha:
// same bpp and same non-alpha channel masks/shifts.
func sameLayout(a, b PixelFormat) bool {
	return a.BitsPerPixel == b.BitsPerPixel &&
		a.Red == b.Red && a.Green == b.Green && a.Blue == b.Blue
}

// convertChannel rescales a 0..srcMax value to 0..dstMax.
func convertChannel(v uint16, srcMax, dstMax uint16) uint16 {
	if srcMax == 0 {
		return 0
	}
	return uint16((uint32(v) * uint32(dstMax)) / uint32(srcMax))
}

// Convert maps a pixel in src format to the equivalent pixel in dst format.
// When the two formats share the same non-alpha layout, the value is
// returned unchanged except for alpha-bit masking.
func Convert(pixel uint32, src, dst PixelFormat) uint32 {
	if sameLayout(src, dst) {
		if !dst.HasAlpha() {
			// Mask off whatever alpha bits src may have carried.
			mask := uint32(0)
			mask |= uint32(src.Red.Max) << src.Red.Shift
			mask |= uint32(src.Green.Max) << src.Green.Shift
			mask |= uint32(src.Blue.Max) << src.Blue.Shift
			return pixel & mask
		}
		return pixel
	}
	srcColor := src.Color(pixel)
	var v uint32
	v |= uint32(convertChannel(uint16(srcColor.R), src.Red.Max, dst.Red.Max)) << dst.Red.Shift
	v |= uint32(convertChannel(uint16(srcColor.G), src.Green.Max, dst.Green.Max)) << dst.Green.Shift
	v |= uint32(convertChannel(uint16(srcColor.B), src.Blue.Max, dst.Blue.Max)) << dst.Blue.Shift
	if dst.HasAlpha() {
		v |= uint32(convertChannel(uint16(srcColor.A), src.Alpha.Max, dst.Alpha.Max)) << dst.Alpha.Shift
	}
	return v
}
