// Package encoding implements the server-side rectangle encoders: Raw,
// CopyRect, RRE, Hextile, zlib-wrapped Raw, TRLE and ZRLE. Each encoder
// reads pixels out of a framebuffer region and writes an RFB rectangle
// body to a stream.Stream.
package encoding

import (
	"fmt"

	"github.com/ltsm/rfbcore/encodings"
	"github.com/ltsm/rfbcore/framebuffer"
	"github.com/ltsm/rfbcore/pixfmt"
	"github.com/ltsm/rfbcore/region"
	"github.com/ltsm/rfbcore/stream"
)

// Encoder writes one rectangle's worth of encoded pixel data (everything
// after the 12-byte rectangle header) to s, for the given source region of
// fb, using the client's pixel format.
type Encoder interface {
	Type() encodings.Type
	Encode(s *stream.Stream, fb *framebuffer.Framebuffer, r region.Region, format pixfmt.PixelFormat) error
}

// WritePixel writes one pixel value in format, honoring its declared
// byte order and bit depth. Exported for callers outside this package
// that need to serialize a single pixel outside a rectangle body, such
// as the cursor pseudo-encoding's pixel data.
func WritePixel(s *stream.Stream, format pixfmt.PixelFormat, v uint32) error {
	return writePixel(s, format, v)
}

// writePixel writes one pixel value in format, honoring its declared
// byte order and bit depth.
func writePixel(s *stream.Stream, format pixfmt.PixelFormat, v uint32) error {
	switch format.BytesPerPixel() {
	case 1:
		return s.SendU8(uint8(v))
	case 2:
		if format.BigEndian {
			return s.SendU16BE(uint16(v))
		}
		return s.SendU16LE(uint16(v))
	case 4:
		if format.BigEndian {
			return s.SendU32BE(v)
		}
		return s.SendU32LE(v)
	default:
		return fmt.Errorf("encoding: unsupported bytes-per-pixel %d: %w", format.BytesPerPixel(), errUnsupportedDepth)
	}
}

// writeCPixel writes a "compact pixel": the full pixel minus any padding
// byte, used by TRLE/ZRLE for 32-bpp formats whose depth is <= 24 to save
// one byte per pixel. Byte order still matches format.BigEndian.
func writeCPixel(s *stream.Stream, format pixfmt.PixelFormat, v uint32) error {
	if format.BytesPerPixel() != 4 || format.Depth > 24 {
		return writePixel(s, format, v)
	}
	b := []byte{byte(v), byte(v >> 8), byte(v >> 16)}
	if format.BigEndian {
		b[0], b[2] = b[2], b[0]
	}
	return s.SendBytes(b)
}

var errUnsupportedDepth = fmt.Errorf("pixel depth not representable on the wire")

// nativeToFormat converts a pixel already in native 32-bit form under
// fb's own format into format, the client's negotiated format.
func nativeToFormat(fb *framebuffer.Framebuffer, native uint32, format pixfmt.PixelFormat) uint32 {
	return pixfmt.Convert(native, fb.Format(), format)
}
