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

func TestZlibEncoderOutputIsValidZlibStream(t *testing.T) {
	format := rgb888(t)
	fb := framebuffer.New(format, 4, 4)
	fb.SetColor(0, 0, pixfmt.Color{R: 1})
	fb.SetColor(3, 3, pixfmt.Color{R: 2})

	var buf bytes.Buffer
	s := stream.New(&buf)
	enc := &ZlibEncoder{}
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
	// The deflate context persists across rectangles, so the stream is
	// sync-flushed but never closed: reading past the flushed bytes ends
	// with io.ErrUnexpectedEOF rather than a clean io.EOF.
	decompressed, err := io.ReadAll(zr)
	if err != io.ErrUnexpectedEOF {
		t.Fatalf("reading decompressed body: err = %v, want io.ErrUnexpectedEOF at the end of the flushed data", err)
	}
	// Raw pixel body: 16 pixels, 4 bytes each.
	if len(decompressed) != 16*4 {
		t.Fatalf("decompressed length = %d, want %d", len(decompressed), 16*4)
	}
}

func TestZlibEncoderSharesDeflateContextAcrossCalls(t *testing.T) {
	format := rgb888(t)
	fb := framebuffer.New(format, 4, 4)
	fb.FillColor(fb.Region(), pixfmt.Color{R: 5})

	enc := &ZlibEncoder{}
	var buf1, buf2 bytes.Buffer
	if err := enc.Encode(stream.New(&buf1), fb, fb.Region(), format); err != nil {
		t.Fatalf("first Encode: %v", err)
	}
	if err := enc.Encode(stream.New(&buf2), fb, fb.Region(), format); err != nil {
		t.Fatalf("second Encode: %v", err)
	}
	if enc.zt == nil {
		t.Fatalf("zt is nil after Encode, want a persistent wrapped transport")
	}

	// The second rectangle is identical to the first; with a shared
	// deflate dictionary it compresses to no more bytes than the first.
	rs1 := stream.New(bytes.NewBuffer(buf1.Bytes()))
	len1, err := rs1.RecvU32BE()
	if err != nil {
		t.Fatalf("RecvU32BE len1: %v", err)
	}
	rs2 := stream.New(bytes.NewBuffer(buf2.Bytes()))
	len2, err := rs2.RecvU32BE()
	if err != nil {
		t.Fatalf("RecvU32BE len2: %v", err)
	}
	if len2 > len1 {
		t.Errorf("second rectangle compressed length %d > first %d, want shared dictionary to shrink or match it", len2, len1)
	}
}
