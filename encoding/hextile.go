package encoding

import (
	"github.com/ltsm/rfbcore/encodings"
	"github.com/ltsm/rfbcore/framebuffer"
	"github.com/ltsm/rfbcore/pixfmt"
	"github.com/ltsm/rfbcore/region"
	"github.com/ltsm/rfbcore/stream"
)

const (
	hextileRaw              = 1 << 0
	hextileBackgroundSpec   = 1 << 1
	hextileForegroundSpec   = 1 << 2
	hextileAnySubrects      = 1 << 3
	hextileSubrectsColoured = 1 << 4
)

// HextileEncoder divides the region into 16x16 tiles (the final row/column
// of tiles may be smaller) and, per tile, chooses between a raw dump and a
// background-fill-plus-subrectangles encoding depending on how many
// distinct colors the tile holds.
type HextileEncoder struct{}

func (HextileEncoder) Type() encodings.Type { return encodings.Hextile }

func (HextileEncoder) Encode(s *stream.Stream, fb *framebuffer.Framebuffer, r region.Region, format pixfmt.PixelFormat) error {
	lastBG := uint32(0)
	haveLastBG := false
	for _, tile := range r.Align(16).DivideBlocks(16) {
		tile = region.Intersect(tile, r)
		if tile.Empty() {
			continue
		}
		if err := encodeHextileTile(s, fb, tile, format, &lastBG, &haveLastBG); err != nil {
			return err
		}
	}
	return nil
}

func encodeHextileTile(s *stream.Stream, fb *framebuffer.Framebuffer, tile region.Region, format pixfmt.PixelFormat, lastBG *uint32, haveLastBG *bool) error {
	palette := fb.PixelMapPalette(tile)
	if len(palette) > 4 {
		if err := s.SendU8(hextileRaw); err != nil {
			return err
		}
		return RawEncoder{}.Encode(s, fb, tile, format)
	}

	weights := fb.PixelMapWeight(tile)
	bg, _ := framebuffer.MaxWeightPixel(weights)

	flags := uint8(0)
	sendBG := !*haveLastBG || bg != *lastBG
	if sendBG {
		flags |= hextileBackgroundSpec
	}

	type subrect struct {
		pixel      uint32
		x, y, w, h int
	}
	var subs []subrect
	for y := int(tile.Y); y < tile.Bottom(); y++ {
		runStart := -1
		var runPixel uint32
		flush := func(end int) {
			if runStart < 0 {
				return
			}
			subs = append(subs, subrect{pixel: runPixel, x: runStart - int(tile.X), y: y - int(tile.Y), w: end - runStart, h: 1})
			runStart = -1
		}
		for x := int(tile.X); x < tile.Right(); x++ {
			p := fb.Pixel(x, y)
			if p == bg {
				flush(x)
				continue
			}
			if runStart < 0 {
				runStart, runPixel = x, p
			} else if p != runPixel {
				flush(x)
				runStart, runPixel = x, p
			}
		}
		flush(int(tile.Right()))
	}

	distinctFG := map[uint32]bool{}
	for _, sr := range subs {
		distinctFG[sr.pixel] = true
	}
	coloured := len(distinctFG) > 1

	if len(subs) > 0 {
		flags |= hextileAnySubrects
		if coloured {
			flags |= hextileSubrectsColoured
		} else {
			flags |= hextileForegroundSpec
		}
	}

	if err := s.SendU8(flags); err != nil {
		return err
	}
	if sendBG {
		if err := writePixel(s, format, nativeToFormat(fb, bg, format)); err != nil {
			return err
		}
		*lastBG, *haveLastBG = bg, true
	}
	if flags&hextileForegroundSpec != 0 {
		for p := range distinctFG {
			if err := writePixel(s, format, nativeToFormat(fb, p, format)); err != nil {
				return err
			}
			break
		}
	}
	if len(subs) > 0 {
		if err := s.SendU8(uint8(len(subs))); err != nil {
			return err
		}
		for _, sr := range subs {
			if coloured {
				if err := writePixel(s, format, nativeToFormat(fb, sr.pixel, format)); err != nil {
					return err
				}
			}
			xy := uint8(sr.x<<4 | sr.y)
			wh := uint8((sr.w-1)<<4 | (sr.h - 1))
			if err := s.SendU8(xy); err != nil {
				return err
			}
			if err := s.SendU8(wh); err != nil {
				return err
			}
		}
	}
	return nil
}
