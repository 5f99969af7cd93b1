package encoding

import (
	"bytes"
	"fmt"

	"github.com/ltsm/rfbcore/encodings"
	"github.com/ltsm/rfbcore/framebuffer"
	"github.com/ltsm/rfbcore/pixfmt"
	"github.com/ltsm/rfbcore/region"
	"github.com/ltsm/rfbcore/stream"
	"github.com/ltsm/rfbcore/transport"
)

// ZlibEncoder wraps Raw pixel output in a persistent zlib deflate stream,
// reusing the same decorator transport.WrapZlib applies to a whole
// connection: the deflate context spans every rectangle this encoder
// ever produces, not just one, so later rectangles benefit from the
// dictionary earlier ones built up. Each rectangle is still framed on
// the wire by its own u32 compressed-length prefix.
type ZlibEncoder struct {
	zt  *transport.Transport
	buf *bytes.Buffer
}

func (*ZlibEncoder) Type() encodings.Type { return encodings.Zlib }

func (e *ZlibEncoder) Encode(s *stream.Stream, fb *framebuffer.Framebuffer, r region.Region, format pixfmt.PixelFormat) error {
	if e.zt == nil {
		e.buf = &bytes.Buffer{}
		e.zt = transport.WrapZlib(transport.New(e.buf, discardCloser{}))
	}

	var body bytes.Buffer
	bodyStream := stream.New(&body)
	for y := int(r.Y); y < r.Bottom(); y++ {
		for x := int(r.X); x < r.Right(); x++ {
			v := nativeToFormat(fb, fb.Pixel(x, y), format)
			if err := writePixel(bodyStream, format, v); err != nil {
				return err
			}
		}
	}

	if err := e.zt.Stream.SendBytes(body.Bytes()); err != nil {
		return fmt.Errorf("encoding: zlib deflate: %w", err)
	}
	compressed := e.buf.Bytes()
	if err := s.SendU32BE(uint32(len(compressed))); err != nil {
		return err
	}
	if err := s.SendBytes(compressed); err != nil {
		return err
	}
	e.buf.Reset()
	return nil
}

// discardCloser satisfies io.Closer for the in-memory buffer ZlibEncoder
// hands to transport.New; there is nothing to release.
type discardCloser struct{}

func (discardCloser) Close() error { return nil }
