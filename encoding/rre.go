package encoding

import (
	"fmt"

	"github.com/ltsm/rfbcore/encodings"
	"github.com/ltsm/rfbcore/framebuffer"
	"github.com/ltsm/rfbcore/pixfmt"
	"github.com/ltsm/rfbcore/region"
	"github.com/ltsm/rfbcore/rfberr"
	"github.com/ltsm/rfbcore/stream"
)

// rreSubrect is one non-background run, in coordinates relative to the
// rectangle's own origin. RRE and CoRRE share this extraction and differ
// only in how wide a field they serialize it into.
type rreSubrect struct {
	pixel      uint32
	x, y, w, h uint16
}

// extractRRESubrects picks the most common pixel in r as a background
// fill, then returns one subrectangle per run of non-background pixels.
// Runs never span rows (matching framebuffer.ToRLE), so a region with
// mostly-vertical structure compresses worse than RFC 6143's RRE
// examples assume; that tradeoff is accepted in exchange for a single,
// simple run extraction shared with the palette/weight analysis used to
// pick this encoder in the first place.
func extractRRESubrects(fb *framebuffer.Framebuffer, r region.Region) (bg uint32, subs []rreSubrect) {
	weights := fb.PixelMapWeight(r)
	bg, ok := framebuffer.MaxWeightPixel(weights)
	if !ok {
		bg = fb.Pixel(int(r.X), int(r.Y))
	}

	for y := int(r.Y); y < r.Bottom(); y++ {
		runStart := -1
		var runPixel uint32
		flush := func(end int) {
			if runStart < 0 {
				return
			}
			subs = append(subs, rreSubrect{
				pixel: runPixel,
				x:     uint16(runStart - int(r.X)),
				y:     uint16(y - int(r.Y)),
				w:     uint16(end - runStart),
				h:     1,
			})
			runStart = -1
		}
		for x := int(r.X); x < r.Right(); x++ {
			p := fb.Pixel(x, y)
			if p == bg {
				flush(x)
				continue
			}
			if runStart < 0 {
				runStart = x
				runPixel = p
			} else if p != runPixel {
				flush(x)
				runStart = x
				runPixel = p
			}
		}
		flush(int(r.Right()))
	}
	return bg, subs
}

// RREEncoder emits extractRRESubrects' result with u16 subrectangle
// coordinates, as RFC 6143 §4.F.3 requires.
type RREEncoder struct{}

func (RREEncoder) Type() encodings.Type { return encodings.RRE }

func (RREEncoder) Encode(s *stream.Stream, fb *framebuffer.Framebuffer, r region.Region, format pixfmt.PixelFormat) error {
	bg, subs := extractRRESubrects(fb, r)

	if err := s.SendU32BE(uint32(len(subs))); err != nil {
		return err
	}
	if err := writePixel(s, format, nativeToFormat(fb, bg, format)); err != nil {
		return err
	}
	for _, sr := range subs {
		if err := writePixel(s, format, nativeToFormat(fb, sr.pixel, format)); err != nil {
			return err
		}
		for _, v := range []uint16{sr.x, sr.y, sr.w, sr.h} {
			if err := s.SendU16BE(v); err != nil {
				return err
			}
		}
	}
	return nil
}

// CoRREMaxExtent is the largest coordinate CoRRE's u8 subrectangle fields
// can carry. A caller selecting CoRRE must never hand this encoder a
// rectangle wider or taller than this; session.splitForEncoder enforces
// it before any rectangle reaches Encode.
const CoRREMaxExtent = 255

// CoRREEncoder is RRE with subrectangle coordinates narrowed to u8, per
// RFC 6143 §4.F.4. This restricts the rectangle itself to
// CoRREMaxExtent x CoRREMaxExtent; splitting a
// larger region into rectangles that small is the caller's job (see
// session.splitForEncoder).
type CoRREEncoder struct{}

func (CoRREEncoder) Type() encodings.Type { return encodings.CoRRE }

func (CoRREEncoder) Encode(s *stream.Stream, fb *framebuffer.Framebuffer, r region.Region, format pixfmt.PixelFormat) error {
	if int(r.Width) > CoRREMaxExtent || int(r.Height) > CoRREMaxExtent {
		return fmt.Errorf("encoding: corre rectangle %dx%d exceeds %dx%d: %w", r.Width, r.Height, CoRREMaxExtent, CoRREMaxExtent, rfberr.ProtocolViolation)
	}
	bg, subs := extractRRESubrects(fb, r)

	if err := s.SendU32BE(uint32(len(subs))); err != nil {
		return err
	}
	if err := writePixel(s, format, nativeToFormat(fb, bg, format)); err != nil {
		return err
	}
	for _, sr := range subs {
		if err := writePixel(s, format, nativeToFormat(fb, sr.pixel, format)); err != nil {
			return err
		}
		for _, v := range []uint8{uint8(sr.x), uint8(sr.y), uint8(sr.w), uint8(sr.h)} {
			if err := s.SendU8(v); err != nil {
				return err
			}
		}
	}
	return nil
}
