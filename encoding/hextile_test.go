package encoding

import (
	"bytes"
	"testing"

	"github.com/ltsm/rfbcore/framebuffer"
	"github.com/ltsm/rfbcore/pixfmt"
	"github.com/ltsm/rfbcore/stream"
)

func TestHextileSolidTileHasNoSubrects(t *testing.T) {
	format := rgb888(t)
	fb := framebuffer.New(format, 16, 16)
	fb.FillColor(fb.Region(), pixfmt.Color{R: 42})

	var buf bytes.Buffer
	s := stream.New(&buf)
	if err := (HextileEncoder{}).Encode(s, fb, fb.Region(), format); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	rs := stream.New(bytes.NewBuffer(buf.Bytes()))
	flags, err := rs.RecvU8()
	if err != nil {
		t.Fatalf("RecvU8 flags: %v", err)
	}
	if flags != hextileBackgroundSpec {
		t.Fatalf("flags = %#x, want only hextileBackgroundSpec (%#x)", flags, hextileBackgroundSpec)
	}
	bg, err := rs.RecvU32LE()
	if err != nil {
		t.Fatalf("RecvU32LE bg: %v", err)
	}
	if got := format.Color(bg).R; got != 42 {
		t.Errorf("background R = %d, want 42", got)
	}
	if _, err := rs.RecvU8(); err == nil {
		t.Errorf("expected end of stream after background-only tile, got more bytes")
	}
}

func TestHextileRepeatsBackgroundOnlyOnChange(t *testing.T) {
	format := rgb888(t)
	fb := framebuffer.New(format, 32, 16)
	fb.FillColor(fb.Region(), pixfmt.Color{R: 1})

	var buf bytes.Buffer
	s := stream.New(&buf)
	if err := (HextileEncoder{}).Encode(s, fb, fb.Region(), format); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	rs := stream.New(bytes.NewBuffer(buf.Bytes()))
	firstFlags, err := rs.RecvU8()
	if err != nil || firstFlags != hextileBackgroundSpec {
		t.Fatalf("first tile flags = %#x, %v, want hextileBackgroundSpec", firstFlags, err)
	}
	if _, err := rs.RecvU32LE(); err != nil {
		t.Fatalf("RecvU32LE first bg: %v", err)
	}
	secondFlags, err := rs.RecvU8()
	if err != nil {
		t.Fatalf("RecvU8 second tile flags: %v", err)
	}
	if secondFlags != 0 {
		t.Fatalf("second tile flags = %#x, want 0 (same background, not resent)", secondFlags)
	}
}
