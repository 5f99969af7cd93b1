package encoding

import (
	"bytes"
	"compress/zlib"
	"io"
	"testing"

	"github.com/ltsm/rfbcore/framebuffer"
	"github.com/ltsm/rfbcore/pixfmt"
	"github.com/ltsm/rfbcore/stream"
)

func TestTRLESolidTileEmitsSubSolid(t *testing.T) {
	format := rgb888(t)
	fb := framebuffer.New(format, 16, 16)
	fb.FillColor(fb.Region(), pixfmt.Color{R: 7, G: 8, B: 9})

	var buf bytes.Buffer
	s := stream.New(&buf)
	if err := (TRLEEncoder{}).Encode(s, fb, fb.Region(), format); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	rs := stream.New(bytes.NewBuffer(buf.Bytes()))
	subType, err := rs.RecvU8()
	if err != nil {
		t.Fatalf("RecvU8 subType: %v", err)
	}
	if subType != trleSubSolid {
		t.Fatalf("subType = %d, want trleSubSolid (%d)", subType, trleSubSolid)
	}
	// One 16x16 tile covers the whole region, so exactly one cPixel (3
	// bytes, since depth 24 on a 4-byte format) follows and nothing else.
	cpixel, err := rs.RecvBytes(3)
	if err != nil {
		t.Fatalf("RecvBytes cpixel: %v", err)
	}
	if len(cpixel) != 3 {
		t.Fatalf("cpixel length = %d, want 3", len(cpixel))
	}
	if _, err := rs.RecvU8(); err == nil {
		t.Errorf("expected end of stream after a single solid 16x16 tile")
	}
}

func TestZRLEEncoderOutputIsValidZlibStream(t *testing.T) {
	format := rgb888(t)
	fb := framebuffer.New(format, 32, 32)
	fb.FillColor(fb.Region(), pixfmt.Color{R: 3})

	var buf bytes.Buffer
	s := stream.New(&buf)
	enc := &ZRLEEncoder{}
	if err := enc.Encode(s, fb, fb.Region(), format); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	rs := stream.New(bytes.NewBuffer(buf.Bytes()))
	length, err := rs.RecvU32BE()
	if err != nil {
		t.Fatalf("RecvU32BE length: %v", err)
	}
	compressed, err := rs.RecvBytes(int(length))
	if err != nil {
		t.Fatalf("RecvBytes compressed: %v", err)
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		t.Fatalf("zlib.NewReader: %v", err)
	}
	// The persistent deflate stream is sync-flushed, never closed, so
	// reading past the flushed bytes ends with io.ErrUnexpectedEOF.
	decompressed, err := io.ReadAll(zr)
	if err != io.ErrUnexpectedEOF {
		t.Fatalf("reading decompressed body: err = %v, want io.ErrUnexpectedEOF at the end of the flushed data", err)
	}
	if len(decompressed) == 0 {
		t.Fatalf("decompressed body is empty")
	}
	if decompressed[0] != trleSubSolid {
		t.Fatalf("decompressed subType = %d, want trleSubSolid (%d)", decompressed[0], trleSubSolid)
	}
}

func TestZRLEEncoderSharesDeflateContextAcrossCalls(t *testing.T) {
	format := rgb888(t)
	fb := framebuffer.New(format, 16, 16)
	fb.FillColor(fb.Region(), pixfmt.Color{R: 1})

	enc := &ZRLEEncoder{}
	var buf1, buf2 bytes.Buffer
	if err := enc.Encode(stream.New(&buf1), fb, fb.Region(), format); err != nil {
		t.Fatalf("first Encode: %v", err)
	}
	if err := enc.Encode(stream.New(&buf2), fb, fb.Region(), format); err != nil {
		t.Fatalf("second Encode: %v", err)
	}
	if enc.zw == nil {
		t.Fatalf("zw is nil after Encode, want a persistent deflate writer")
	}
}
