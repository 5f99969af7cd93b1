package session

import (
	"bytes"
	"crypto/des"
	"crypto/rand"
	"fmt"

	"github.com/ltsm/rfbcore/rfberr"
	"github.com/ltsm/rfbcore/stream"
)

// vncAuthChallengeSize is the fixed DES challenge/response length defined
// by RFC 6143 §7.2.2.
const vncAuthChallengeSize = 16

// fixDESKeyByte mirrors the bit order of a byte: VNC's DES password key
// is derived from the ASCII password with each byte's bits reversed, a
// quirk of the original RealVNC implementation that every compatible
// server must reproduce exactly.
func fixDESKeyByte(v byte) byte {
	var out byte
	for i := 0; i < 8; i++ {
		out <<= 1
		out |= v & 1
		v >>= 1
	}
	return out
}

// fixDESKey truncates or null-pads password to 8 bytes, then bit-mirrors
// each byte to produce the actual DES key.
func fixDESKey(password string) []byte {
	raw := []byte(password)
	key := make([]byte, 8)
	copy(key, raw)
	for i := range key {
		key[i] = fixDESKeyByte(key[i])
	}
	return key
}

// vncAuth performs the VncAuth challenge/response exchange and returns
// nil on success, rfberr.ProtocolViolation-wrapped on mismatch.
func vncAuth(s *stream.Stream, password string) error {
	challenge := make([]byte, vncAuthChallengeSize)
	if _, err := rand.Read(challenge); err != nil {
		return fmt.Errorf("session: vncauth challenge rand: %w", err)
	}
	if err := s.SendBytes(challenge); err != nil {
		return err
	}
	if err := s.Flush(); err != nil {
		return err
	}
	response, err := s.RecvBytes(vncAuthChallengeSize)
	if err != nil {
		return err
	}
	block, err := des.NewCipher(fixDESKey(password))
	if err != nil {
		return fmt.Errorf("session: vncauth cipher init: %w", err)
	}
	expected := make([]byte, vncAuthChallengeSize)
	block.Encrypt(expected[:8], challenge[:8])
	block.Encrypt(expected[8:], challenge[8:])
	if !bytes.Equal(expected, response) {
		return fmt.Errorf("session: vncauth response mismatch: %w", rfberr.ProtocolViolation)
	}
	return nil
}
