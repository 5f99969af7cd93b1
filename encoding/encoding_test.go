package encoding

import (
	"bytes"
	"testing"

	"github.com/ltsm/rfbcore/framebuffer"
	"github.com/ltsm/rfbcore/pixfmt"
	"github.com/ltsm/rfbcore/stream"
)

func rgb888(t *testing.T) pixfmt.PixelFormat {
	t.Helper()
	f, err := pixfmt.New(32, 24, false, true,
		pixfmt.Channel{Max: 255, Shift: 16},
		pixfmt.Channel{Max: 255, Shift: 8},
		pixfmt.Channel{Max: 255, Shift: 0},
		pixfmt.Channel{Max: 0, Shift: 0},
	)
	if err != nil {
		t.Fatalf("pixfmt.New: %v", err)
	}
	return f
}

func TestRawEncoderEmitsRowMajorPixels(t *testing.T) {
	format := rgb888(t)
	fb := framebuffer.New(format, 2, 2)
	fb.SetColor(0, 0, pixfmt.Color{R: 1})
	fb.SetColor(1, 0, pixfmt.Color{R: 2})
	fb.SetColor(0, 1, pixfmt.Color{R: 3})
	fb.SetColor(1, 1, pixfmt.Color{R: 4})

	var buf bytes.Buffer
	s := stream.New(&buf)
	if err := (RawEncoder{}).Encode(s, fb, fb.Region(), format); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	rs := stream.New(bytes.NewBuffer(buf.Bytes()))
	for _, want := range []uint8{1, 2, 3, 4} {
		v, err := rs.RecvU32LE()
		if err != nil {
			t.Fatalf("RecvU32LE: %v", err)
		}
		got := format.Color(v).R
		if got != want {
			t.Errorf("pixel R = %d, want %d", got, want)
		}
	}
}

func TestCopyRectEncoderEmitsSourcePoint(t *testing.T) {
	format := rgb888(t)
	fb := framebuffer.New(format, 4, 4)
	var buf bytes.Buffer
	s := stream.New(&buf)
	enc := CopyRectEncoder{SrcX: 7, SrcY: 3}
	if err := enc.Encode(s, fb, fb.Region(), format); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := buf.Bytes(); len(got) != 4 {
		t.Fatalf("encoded length = %d, want 4", len(got))
	}

	rs := stream.New(bytes.NewBuffer(buf.Bytes()))
	x, err := rs.RecvU16BE()
	if err != nil || x != 7 {
		t.Fatalf("srcX = %d, %v, want 7", x, err)
	}
	y, err := rs.RecvU16BE()
	if err != nil || y != 3 {
		t.Fatalf("srcY = %d, %v, want 3", y, err)
	}
}

func TestRREEncoderBackgroundIsMostFrequentPixel(t *testing.T) {
	format := rgb888(t)
	fb := framebuffer.New(format, 4, 2)
	fb.FillColor(fb.Region(), pixfmt.Color{R: 9}) // background
	fb.SetColor(1, 0, pixfmt.Color{R: 200})       // one foreground run

	var buf bytes.Buffer
	s := stream.New(&buf)
	if err := (RREEncoder{}).Encode(s, fb, fb.Region(), format); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	rs := stream.New(bytes.NewBuffer(buf.Bytes()))
	numSubs, err := rs.RecvU32BE()
	if err != nil {
		t.Fatalf("RecvU32BE numSubs: %v", err)
	}
	if numSubs != 1 {
		t.Fatalf("numSubs = %d, want 1", numSubs)
	}
	bgPixel, err := rs.RecvU32LE()
	if err != nil {
		t.Fatalf("RecvU32LE bg: %v", err)
	}
	if got := format.Color(bgPixel).R; got != 9 {
		t.Errorf("background R = %d, want 9", got)
	}

	fgPixel, err := rs.RecvU32LE()
	if err != nil {
		t.Fatalf("RecvU32LE fg: %v", err)
	}
	if got := format.Color(fgPixel).R; got != 200 {
		t.Errorf("subrect pixel R = %d, want 200", got)
	}
	for _, want := range []uint16{1, 0, 1, 1} { // x, y, w, h
		v, err := rs.RecvU16BE()
		if err != nil {
			t.Fatalf("RecvU16BE: %v", err)
		}
		if v != want {
			t.Errorf("subrect coord = %d, want %d", v, want)
		}
	}
}

func TestCoRREEncoderUsesU8Coordinates(t *testing.T) {
	format := rgb888(t)
	fb := framebuffer.New(format, 4, 2)
	fb.FillColor(fb.Region(), pixfmt.Color{R: 9}) // background
	fb.SetColor(1, 0, pixfmt.Color{R: 200})       // one foreground run

	var buf bytes.Buffer
	s := stream.New(&buf)
	if err := (CoRREEncoder{}).Encode(s, fb, fb.Region(), format); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	rs := stream.New(bytes.NewBuffer(buf.Bytes()))
	numSubs, err := rs.RecvU32BE()
	if err != nil {
		t.Fatalf("RecvU32BE numSubs: %v", err)
	}
	if numSubs != 1 {
		t.Fatalf("numSubs = %d, want 1", numSubs)
	}
	if _, err := rs.RecvU32LE(); err != nil { // background pixel
		t.Fatalf("RecvU32LE bg: %v", err)
	}
	if _, err := rs.RecvU32LE(); err != nil { // subrect pixel
		t.Fatalf("RecvU32LE fg: %v", err)
	}
	for _, want := range []uint8{1, 0, 1, 1} { // x, y, w, h, each one byte
		v, err := rs.RecvU8()
		if err != nil {
			t.Fatalf("RecvU8: %v", err)
		}
		if v != want {
			t.Errorf("subrect coord = %d, want %d", v, want)
		}
	}
	if _, err := rs.RecvU8(); err == nil {
		t.Errorf("expected end of stream after one u8-coded subrect")
	}
}

func TestCoRREEncoderRejectsOversizedRectangle(t *testing.T) {
	format := rgb888(t)
	fb := framebuffer.New(format, 300, 1)

	var buf bytes.Buffer
	s := stream.New(&buf)
	err := (CoRREEncoder{}).Encode(s, fb, fb.Region(), format)
	if err == nil {
		t.Fatalf("Encode: want error for a %dx%d rectangle, got nil", fb.Region().Width, fb.Region().Height)
	}
}
