package stream

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ltsm/rfbcore/rfberr"
)

func TestSendRecvEndianness(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	if err := s.SendU16BE(0x0102); err != nil {
		t.Fatalf("SendU16BE: %v", err)
	}
	if err := s.SendU16LE(0x0102); err != nil {
		t.Fatalf("SendU16LE: %v", err)
	}
	if err := s.SendU32BE(0x01020304); err != nil {
		t.Fatalf("SendU32BE: %v", err)
	}

	got := buf.Bytes()
	want := []byte{0x01, 0x02, 0x02, 0x01, 0x01, 0x02, 0x03, 0x04}
	if !bytes.Equal(got, want) {
		t.Fatalf("wire bytes = % x, want % x", got, want)
	}

	rs := New(bytes.NewBuffer(got))
	be16, err := rs.RecvU16BE()
	if err != nil || be16 != 0x0102 {
		t.Fatalf("RecvU16BE = %v, %v, want 0x0102, nil", be16, err)
	}
	le16, err := rs.RecvU16LE()
	if err != nil || le16 != 0x0102 {
		t.Fatalf("RecvU16LE = %v, %v, want 0x0102, nil", le16, err)
	}
	be32, err := rs.RecvU32BE()
	if err != nil || be32 != 0x01020304 {
		t.Fatalf("RecvU32BE = %v, %v, want 0x01020304, nil", be32, err)
	}
}

func TestPeekU8Idempotent(t *testing.T) {
	s := New(bytes.NewBuffer([]byte{0xAB, 0xCD}))
	b1, err := s.PeekU8()
	if err != nil || b1 != 0xAB {
		t.Fatalf("first PeekU8 = %v, %v", b1, err)
	}
	b2, err := s.PeekU8()
	if err != nil || b2 != 0xAB {
		t.Fatalf("second PeekU8 = %v, %v, want same byte queued", b2, err)
	}
	next, err := s.RecvU8()
	if err != nil || next != 0xAB {
		t.Fatalf("RecvU8 after peek = %v, %v, want the peeked byte consumed first", next, err)
	}
	last, err := s.RecvU8()
	if err != nil || last != 0xCD {
		t.Fatalf("RecvU8 = %v, %v, want 0xCD", last, err)
	}
}

func TestRecvShortReadReturnsTransportClosed(t *testing.T) {
	s := New(iotest{err: io.ErrUnexpectedEOF})
	_, err := s.RecvBytes(4)
	if !errors.Is(err, rfberr.TransportClosed) {
		t.Fatalf("RecvBytes error = %v, want rfberr.TransportClosed", err)
	}
}

// iotest is a ReadWriter that returns a short read then the given error,
// exercising recvFull's partial-read handling.
type iotest struct {
	err error
}

func (iotest) Write(p []byte) (int, error) { return len(p), nil }
func (t iotest) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = 0x01
	return 1, t.err
}
