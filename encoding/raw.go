package encoding

import (
	"github.com/ltsm/rfbcore/encodings"
	"github.com/ltsm/rfbcore/framebuffer"
	"github.com/ltsm/rfbcore/pixfmt"
	"github.com/ltsm/rfbcore/region"
	"github.com/ltsm/rfbcore/stream"
)

// RawEncoder emits every pixel in the region in row-major order, uncompressed.
// It is the fallback encoder and the one every other encoder's correctness
// can be checked against.
type RawEncoder struct{}

func (RawEncoder) Type() encodings.Type { return encodings.Raw }

func (RawEncoder) Encode(s *stream.Stream, fb *framebuffer.Framebuffer, r region.Region, format pixfmt.PixelFormat) error {
	for y := int(r.Y); y < r.Bottom(); y++ {
		for x := int(r.X); x < r.Right(); x++ {
			v := nativeToFormat(fb, fb.Pixel(x, y), format)
			if err := writePixel(s, format, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// CopyRectEncoder emits just the 4-byte source point; the client is
// expected to already hold the pixels at that location in its own
// framebuffer copy. Selecting this encoder is the caller's
// responsibility (e.g. damage tracking that recognizes a scroll).
type CopyRectEncoder struct {
	SrcX, SrcY uint16
}

func (CopyRectEncoder) Type() encodings.Type { return encodings.CopyRect }

func (e CopyRectEncoder) Encode(s *stream.Stream, fb *framebuffer.Framebuffer, r region.Region, format pixfmt.PixelFormat) error {
	if err := s.SendU16BE(e.SrcX); err != nil {
		return err
	}
	return s.SendU16BE(e.SrcY)
}
