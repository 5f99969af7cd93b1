package session

import (
	"crypto/des"
	"errors"
	"net"
	"testing"

	"github.com/ltsm/rfbcore/rfberr"
	"github.com/ltsm/rfbcore/stream"
)

func respondToChallenge(t *testing.T, clientStream *stream.Stream, password string) {
	t.Helper()
	challenge, err := clientStream.RecvBytes(vncAuthChallengeSize)
	if err != nil {
		t.Fatalf("client RecvBytes: %v", err)
	}
	block, err := des.NewCipher(fixDESKey(password))
	if err != nil {
		t.Fatalf("des.NewCipher: %v", err)
	}
	response := make([]byte, vncAuthChallengeSize)
	block.Encrypt(response[:8], challenge[:8])
	block.Encrypt(response[8:], challenge[8:])
	if err := clientStream.SendBytes(response); err != nil {
		t.Fatalf("client SendBytes: %v", err)
	}
	if err := clientStream.Flush(); err != nil {
		t.Fatalf("client Flush: %v", err)
	}
}

func TestVncAuthCorrectPasswordSucceeds(t *testing.T) {
	connA, connB := net.Pipe()
	defer connA.Close()
	defer connB.Close()

	serverStream := stream.New(connA)
	clientStream := stream.New(connB)

	errc := make(chan error, 1)
	go func() { errc <- vncAuth(serverStream, "sekrit99") }()

	respondToChallenge(t, clientStream, "sekrit99")

	if err := <-errc; err != nil {
		t.Fatalf("vncAuth with correct password: %v", err)
	}
}

func TestVncAuthWrongPasswordFails(t *testing.T) {
	connA, connB := net.Pipe()
	defer connA.Close()
	defer connB.Close()

	serverStream := stream.New(connA)
	clientStream := stream.New(connB)

	errc := make(chan error, 1)
	go func() { errc <- vncAuth(serverStream, "sekrit99") }()

	respondToChallenge(t, clientStream, "wrongpass")

	err := <-errc
	if !errors.Is(err, rfberr.ProtocolViolation) {
		t.Fatalf("err = %v, want rfberr.ProtocolViolation", err)
	}
}

func TestFixDESKeyPadsAndTruncates(t *testing.T) {
	short := fixDESKey("ab")
	if len(short) != 8 {
		t.Fatalf("len(fixDESKey(short)) = %d, want 8", len(short))
	}
	long := fixDESKey("far too long a password")
	if len(long) != 8 {
		t.Fatalf("len(fixDESKey(long)) = %d, want 8", len(long))
	}
}

func TestFixDESKeyByteReversesBits(t *testing.T) {
	if got := fixDESKeyByte(0x01); got != 0x80 {
		t.Errorf("fixDESKeyByte(0x01) = %#x, want 0x80", got)
	}
	if got := fixDESKeyByte(0x00); got != 0x00 {
		t.Errorf("fixDESKeyByte(0x00) = %#x, want 0x00", got)
	}
}
