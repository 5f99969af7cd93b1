package encoding

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"sort"

	"github.com/ltsm/rfbcore/encodings"
	"github.com/ltsm/rfbcore/framebuffer"
	"github.com/ltsm/rfbcore/pixfmt"
	"github.com/ltsm/rfbcore/region"
	"github.com/ltsm/rfbcore/stream"
)

const (
	trleSubRaw         = 0
	trleSubSolid       = 1
	trleSubPackedStart = 2 // 2..16: packed palette of that many colors
	trleSubRLEPlain    = 128
	// 129..255: palette RLE of (subencoding-128) colors, i.e.
	// trleSubRLEPlain+n for an n-color palette.
)

// trleTileSize is RFC 6143 §4.F.7's TRLE tile dimension. ZRLE reuses the
// same per-tile encoding but at a 64x64 grid (zrleTileSize below).
const trleTileSize = 16

// zrleTileSize is the ZRLE tile dimension the zlib-wrapped TRLE body is
// divided into, per RFC 6143 §4.F.7's ZRLE addendum.
const zrleTileSize = 64

// TRLEEncoder tiles the region into 16x16 blocks (grounded on the same
// tiling idiom as HextileEncoder, at the TRLE block size RFC 6143
// mandates) and picks, per tile: solid fill, packed palette (<=16 colors,
// no run compression), palette RLE, or raw.
type TRLEEncoder struct{}

func (TRLEEncoder) Type() encodings.Type { return encodings.TRLE }

func (TRLEEncoder) Encode(s *stream.Stream, fb *framebuffer.Framebuffer, r region.Region, format pixfmt.PixelFormat) error {
	return encodeTRLETiles(s, fb, r, format, trleTileSize)
}

// encodeTRLETiles divides r into tileSize x tileSize blocks, row-major,
// and writes one TRLE tile per block. TRLE and ZRLE share this loop but
// disagree on tileSize (16 vs. 64).
func encodeTRLETiles(s *stream.Stream, fb *framebuffer.Framebuffer, r region.Region, format pixfmt.PixelFormat, tileSize int) error {
	for _, tile := range r.Align(tileSize).DivideBlocks(tileSize) {
		tile = region.Intersect(tile, r)
		if tile.Empty() {
			continue
		}
		if err := encodeTRLETile(s, fb, tile, format); err != nil {
			return err
		}
	}
	return nil
}

func encodeTRLETile(s *stream.Stream, fb *framebuffer.Framebuffer, tile region.Region, format pixfmt.PixelFormat) error {
	palette := fb.PixelMapPalette(tile)

	if len(palette) == 1 {
		if err := s.SendU8(trleSubSolid); err != nil {
			return err
		}
		for p := range palette {
			return writeCPixel(s, format, nativeToFormat(fb, p, format))
		}
	}

	runs := fb.ToRLE(tile)
	rleWorthwhile := len(runs) < tile.Area()/2

	switch {
	case len(palette) <= 16 && !rleWorthwhile:
		return encodeTRLEPacked(s, fb, tile, format, palette)
	case rleWorthwhile && len(palette) <= 127:
		return encodeTRLERLE(s, format, fb, runs, palette)
	default:
		if err := s.SendU8(trleSubRaw); err != nil {
			return err
		}
		for y := int(tile.Y); y < tile.Bottom(); y++ {
			for x := int(tile.X); x < tile.Right(); x++ {
				if err := writeCPixel(s, format, nativeToFormat(fb, fb.Pixel(x, y), format)); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

func encodeTRLEPacked(s *stream.Stream, fb *framebuffer.Framebuffer, tile region.Region, format pixfmt.PixelFormat, palette map[uint32]int) error {
	n := len(palette)
	if err := s.SendU8(uint8(trleSubPackedStart + n - 2)); err != nil {
		return err
	}
	ordered := make([]uint32, n)
	for p, idx := range palette {
		ordered[idx] = p
	}
	for _, p := range ordered {
		if err := writeCPixel(s, format, nativeToFormat(fb, p, format)); err != nil {
			return err
		}
	}
	bitsPerIndex := packedBits(n)
	var bitBuf byte
	bitCount := 0
	flushBits := func() error {
		if bitCount == 0 {
			return nil
		}
		err := s.SendU8(bitBuf)
		bitBuf, bitCount = 0, 0
		return err
	}
	for y := int(tile.Y); y < tile.Bottom(); y++ {
		for x := int(tile.X); x < tile.Right(); x++ {
			idx := palette[fb.Pixel(x, y)]
			bitBuf |= byte(idx) << uint(8-bitsPerIndex-bitCount)
			bitCount += bitsPerIndex
			if bitCount == 8 {
				if err := flushBits(); err != nil {
					return err
				}
			}
		}
		if err := flushBits(); err != nil {
			return err
		}
	}
	return nil
}

func packedBits(n int) int {
	switch {
	case n <= 2:
		return 1
	case n <= 4:
		return 2
	default:
		return 4
	}
}

func encodeTRLERLE(s *stream.Stream, format pixfmt.PixelFormat, fb *framebuffer.Framebuffer, runs []framebuffer.PixelLengthRun, palette map[uint32]int) error {
	if len(palette) == 0 {
		return s.SendU8(trleSubRLEPlain)
	}
	order := frequencyOrderedPalette(runs, palette)
	if err := s.SendU8(uint8(trleSubRLEPlain + len(order))); err != nil {
		return err
	}
	index := make(map[uint32]int, len(order))
	for i, p := range order {
		index[p] = i
		if err := writeCPixel(s, format, nativeToFormat(fb, p, format)); err != nil {
			return err
		}
	}
	for _, run := range runs {
		idx := index[run.Pixel]
		if run.Length == 1 {
			if err := s.SendU8(uint8(idx)); err != nil {
				return err
			}
			continue
		}
		if err := s.SendU8(uint8(128 + idx)); err != nil {
			return err
		}
		if err := writeRunLength(s, run.Length); err != nil {
			return err
		}
	}
	return nil
}

// frequencyOrderedPalette orders palette's pixels by total run length
// (descending), breaking ties by ascending pixel value so the ordering is
// deterministic across calls with an identical run set.
func frequencyOrderedPalette(runs []framebuffer.PixelLengthRun, palette map[uint32]int) []uint32 {
	weight := make(map[uint32]int, len(palette))
	for _, run := range runs {
		weight[run.Pixel] += run.Length
	}
	order := make([]uint32, 0, len(palette))
	for p := range palette {
		order = append(order, p)
	}
	sort.Slice(order, func(i, j int) bool {
		if weight[order[i]] != weight[order[j]] {
			return weight[order[i]] > weight[order[j]]
		}
		return order[i] < order[j]
	})
	return order
}

// writeRunLength writes a run length as a sequence of 255-valued bytes
// followed by a final byte in [0,254], matching the CalcRuns inverse used
// by the TRLE/ZRLE decoder.
func writeRunLength(s *stream.Stream, length int) error {
	length -= 1
	for length >= 255 {
		if err := s.SendU8(255); err != nil {
			return err
		}
		length -= 255
	}
	return s.SendU8(uint8(length))
}

// ZRLEEncoder wraps TRLE tiling in a persistent zlib deflate stream: all
// rectangles across the connection's lifetime share one deflate context,
// each one framed by its own 4-byte compressed-length prefix.
type ZRLEEncoder struct {
	zw  *zlib.Writer
	buf bytes.Buffer
}

func (*ZRLEEncoder) Type() encodings.Type { return encodings.ZRLE }

func (e *ZRLEEncoder) Encode(s *stream.Stream, fb *framebuffer.Framebuffer, r region.Region, format pixfmt.PixelFormat) error {
	if e.zw == nil {
		e.zw = zlib.NewWriter(&e.buf)
	}
	var body bytes.Buffer
	bodyStream := stream.New(&body)
	if err := encodeTRLETiles(bodyStream, fb, r, format, zrleTileSize); err != nil {
		return err
	}
	if _, err := e.zw.Write(body.Bytes()); err != nil {
		return fmt.Errorf("encoding: zrle deflate: %w", err)
	}
	if err := e.zw.Flush(); err != nil {
		return fmt.Errorf("encoding: zrle flush: %w", err)
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
