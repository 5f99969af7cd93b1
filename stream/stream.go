// Package stream provides typed, endian-aware read/write atop a raw byte
// sink/source. It never assumes host endianness: every
// multi-byte integer is synthesized from, or decomposed into, individual
// bytes explicitly.
package stream

import (
	"errors"
	"io"
	"time"

	"github.com/ltsm/rfbcore/rfberr"
)

// Stream wraps a ReadWriter with buffered, retrying, endian-explicit typed
// IO. It is the lowest layer the engine builds on; transport.Transport
// composes a Stream with optional TLS/zlib wrapping.
type Stream struct {
	rw        io.ReadWriter
	peeked    []byte // at most one byte, staged by PeekU8
	deadliner interface {
		SetReadDeadline(time.Time) error
	}
}

// New wraps rw. If rw also implements a SetReadDeadline method (as net.Conn
// does), HasInput can honor a timeout; otherwise it falls back to a
// zero-wait best-effort check.
func New(rw io.ReadWriter) *Stream {
	s := &Stream{rw: rw}
	if d, ok := rw.(interface {
		SetReadDeadline(time.Time) error
	}); ok {
		s.deadliner = d
	}
	return s
}

// recvFull loops on partial reads. The standard library's net.Conn already
// retries EINTR/EAGAIN internally, so a short read with a nil error simply
// means "keep going"; only a non-nil error ends the loop.
func (s *Stream) recvFull(buf []byte) error {
	for total := 0; total < len(buf); {
		if len(s.peeked) > 0 {
			n := copy(buf[total:], s.peeked)
			s.peeked = s.peeked[n:]
			total += n
			continue
		}
		n, err := s.rw.Read(buf[total:])
		total += n
		if err != nil && total < len(buf) {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.ErrClosedPipe) {
				return rfberr.TransportClosed
			}
			return err
		}
	}
	return nil
}

// sendFull loops on partial writes, same rationale as recvFull.
func (s *Stream) sendFull(buf []byte) error {
	for total := 0; total < len(buf); {
		n, err := s.rw.Write(buf[total:])
		total += n
		if err != nil && total < len(buf) {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return rfberr.TransportClosed
			}
			return err
		}
	}
	return nil
}

// RecvBytes reads exactly n bytes and returns them as a new slice.
func (s *Stream) RecvBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := s.recvFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// RecvInto reads exactly len(buf) bytes into buf.
func (s *Stream) RecvInto(buf []byte) error { return s.recvFull(buf) }

// Skip discards n bytes.
func (s *Stream) Skip(n int) error {
	if n <= 0 {
		return nil
	}
	_, err := s.RecvBytes(n)
	return err
}

// PeekU8 returns the next byte without consuming it. Calling it repeatedly
// without an intervening read returns the same byte.
func (s *Stream) PeekU8() (byte, error) {
	if len(s.peeked) == 0 {
		b := make([]byte, 1)
		if err := s.recvFull(b); err != nil {
			return 0, err
		}
		s.peeked = b
	}
	return s.peeked[0], nil
}

// HasInput reports whether at least one byte is available within timeout.
// It honors a deadline on the underlying connection when possible;
// otherwise it is a best-effort check that never blocks.
func (s *Stream) HasInput(timeout time.Duration) bool {
	if len(s.peeked) > 0 {
		return true
	}
	if s.deadliner == nil {
		return false
	}
	_ = s.deadliner.SetReadDeadline(time.Now().Add(timeout))
	defer s.deadliner.SetReadDeadline(time.Time{})
	b, err := s.PeekU8()
	if err != nil {
		return false
	}
	s.peeked = append(s.peeked, b)[:1]
	return true
}

// HasData returns the number of bytes already staged in-process (i.e. not
// requiring a read from the underlying source).
func (s *Stream) HasData() int { return len(s.peeked) }

// SendBytes writes buf in full.
func (s *Stream) SendBytes(buf []byte) error { return s.sendFull(buf) }

// Flush flushes any underlying buffering (a no-op unless rw implements it).
func (s *Stream) Flush() error {
	if f, ok := s.rw.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// --- fixed-width typed IO, explicit endianness ---

func (s *Stream) RecvU8() (uint8, error) {
	b, err := s.RecvBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *Stream) SendU8(v uint8) error { return s.SendBytes([]byte{v}) }

func (s *Stream) RecvU16LE() (uint16, error) { return recvU16(s, false) }
func (s *Stream) RecvU16BE() (uint16, error) { return recvU16(s, true) }
func (s *Stream) SendU16LE(v uint16) error   { return sendU16(s, v, false) }
func (s *Stream) SendU16BE(v uint16) error   { return sendU16(s, v, true) }

func (s *Stream) RecvU32LE() (uint32, error) { return recvU32(s, false) }
func (s *Stream) RecvU32BE() (uint32, error) { return recvU32(s, true) }
func (s *Stream) SendU32LE(v uint32) error   { return sendU32(s, v, false) }
func (s *Stream) SendU32BE(v uint32) error   { return sendU32(s, v, true) }

func (s *Stream) RecvU64LE() (uint64, error) { return recvU64(s, false) }
func (s *Stream) RecvU64BE() (uint64, error) { return recvU64(s, true) }
func (s *Stream) SendU64LE(v uint64) error   { return sendU64(s, v, false) }
func (s *Stream) SendU64BE(v uint64) error   { return sendU64(s, v, true) }

func recvU16(s *Stream, big bool) (uint16, error) {
	b, err := s.RecvBytes(2)
	if err != nil {
		return 0, err
	}
	if big {
		return uint16(b[0])<<8 | uint16(b[1]), nil
	}
	return uint16(b[1])<<8 | uint16(b[0]), nil
}

func sendU16(s *Stream, v uint16, big bool) error {
	b := make([]byte, 2)
	if big {
		b[0], b[1] = byte(v>>8), byte(v)
	} else {
		b[0], b[1] = byte(v), byte(v>>8)
	}
	return s.SendBytes(b)
}

func recvU32(s *Stream, big bool) (uint32, error) {
	b, err := s.RecvBytes(4)
	if err != nil {
		return 0, err
	}
	if big {
		return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
	}
	return uint32(b[3])<<24 | uint32(b[2])<<16 | uint32(b[1])<<8 | uint32(b[0]), nil
}

func sendU32(s *Stream, v uint32, big bool) error {
	b := make([]byte, 4)
	if big {
		b[0], b[1], b[2], b[3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
	} else {
		b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
	}
	return s.SendBytes(b)
}

func recvU64(s *Stream, big bool) (uint64, error) {
	b, err := s.RecvBytes(8)
	if err != nil {
		return 0, err
	}
	var v uint64
	if big {
		for i := 0; i < 8; i++ {
			v = v<<8 | uint64(b[i])
		}
	} else {
		for i := 7; i >= 0; i-- {
			v = v<<8 | uint64(b[i])
		}
	}
	return v, nil
}

func sendU64(s *Stream, v uint64, big bool) error {
	b := make([]byte, 8)
	if big {
		for i := 7; i >= 0; i-- {
			b[i] = byte(v)
			v >>= 8
		}
	} else {
		for i := 0; i < 8; i++ {
			b[i] = byte(v)
			v >>= 8
		}
	}
	return s.SendBytes(b)
}
