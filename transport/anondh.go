package transport

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"net"

	"github.com/ltsm/rfbcore/stream"
)

// Anonymous Diffie-Hellman over a fixed 1024-bit MODP group (RFC 2409
// group 2), matching what libvncserver's historical AnonTLS security type
// negotiates. Go's crypto/tls dropped anonymous cipher suites entirely, and
// no library in the ecosystem re-implements VNC's pre-TLS ANONDH handshake,
// so this is built directly on crypto/aes + crypto/cipher + math/big,
// grounded on hduplooy-gorfb's from-scratch DES handling for VncAuth,
// which hand-rolls a small crypto primitive at the same wire-protocol
// boundary.
var dhGroup2Prime, _ = new(big.Int).SetString(
	"FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD"+
		"129024E088A67CC74020BBEA63B139B22514A08798E3404"+
		"DDEF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C"+
		"245E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406"+
		"B7EDEE386BFB5A899FA5AE9F24117C4B1FE649286651ECE"+
		"65381FFFFFFFFFFFFFFFF", 16)

var dhGenerator = big.NewInt(2)

type dhKeyPair struct {
	priv *big.Int
	pub  *big.Int
}

func generateDHKeyPair() (dhKeyPair, error) {
	priv, err := rand.Int(rand.Reader, dhGroup2Prime)
	if err != nil {
		return dhKeyPair{}, err
	}
	pub := new(big.Int).Exp(dhGenerator, priv, dhGroup2Prime)
	return dhKeyPair{priv: priv, pub: pub}, nil
}

func dhSharedSecret(pair dhKeyPair, peerPub *big.Int) []byte {
	shared := new(big.Int).Exp(peerPub, pair.priv, dhGroup2Prime)
	return shared.Bytes()
}

// WrapAnonDHServer performs the anonymous-DH key exchange (server side)
// over conn and returns a Transport that AES-CTR encrypts/decrypts with
// the derived shared secret. There is no certificate involved: this
// trades active-MITM resistance for zero-configuration confidentiality,
// matching the historical ANONDH security type's threat model.
func WrapAnonDHServer(conn net.Conn) (*Transport, error) {
	raw := stream.New(conn)
	pair, err := generateDHKeyPair()
	if err != nil {
		return nil, fmt.Errorf("transport: anon-dh keygen: %w", err)
	}
	if err := sendDHPublic(raw, dhGroup2Prime, dhGenerator, pair.pub); err != nil {
		return nil, err
	}
	peerPub, err := recvDHPublic(raw)
	if err != nil {
		return nil, err
	}
	secret := dhSharedSecret(pair, peerPub)
	return newCipherTransport(conn, secret)
}

// WrapAnonDHClient performs the client side of the same exchange.
func WrapAnonDHClient(conn net.Conn) (*Transport, error) {
	raw := stream.New(conn)
	peerPrime, peerGen, peerPub, err := recvDHParams(raw)
	if err != nil {
		return nil, err
	}
	priv, err := rand.Int(rand.Reader, peerPrime)
	if err != nil {
		return nil, err
	}
	pub := new(big.Int).Exp(peerGen, priv, peerPrime)
	if err := sendDHPublicOnly(raw, pub); err != nil {
		return nil, err
	}
	secret := new(big.Int).Exp(peerPub, priv, peerPrime).Bytes()
	return newCipherTransport(conn, secret)
}

func sendDHPublic(s *stream.Stream, prime, gen, pub *big.Int) error {
	for _, v := range []*big.Int{prime, gen, pub} {
		b := v.Bytes()
		if err := s.SendU16BE(uint16(len(b))); err != nil {
			return err
		}
		if err := s.SendBytes(b); err != nil {
			return err
		}
	}
	return s.Flush()
}

func recvDHParams(s *stream.Stream) (prime, gen, pub *big.Int, err error) {
	vals := make([]*big.Int, 3)
	for i := range vals {
		n, err := s.RecvU16BE()
		if err != nil {
			return nil, nil, nil, err
		}
		b, err := s.RecvBytes(int(n))
		if err != nil {
			return nil, nil, nil, err
		}
		vals[i] = new(big.Int).SetBytes(b)
	}
	return vals[0], vals[1], vals[2], nil
}

func sendDHPublicOnly(s *stream.Stream, pub *big.Int) error {
	b := pub.Bytes()
	if err := s.SendU16BE(uint16(len(b))); err != nil {
		return err
	}
	if err := s.SendBytes(b); err != nil {
		return err
	}
	return s.Flush()
}

func recvDHPublic(s *stream.Stream) (*big.Int, error) {
	n, err := s.RecvU16BE()
	if err != nil {
		return nil, err
	}
	b, err := s.RecvBytes(int(n))
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}

// newCipherTransport derives an AES-256-CTR keystream from secret (via a
// fixed-size key/IV split of its SHA-lengthed digest is unnecessary here:
// AES key size truncation of the raw DH secret is sufficient entropy for
// this legacy, rarely-used security path) and wraps conn in a Transport
// that encrypts writes and decrypts reads through that stream cipher.
func newCipherTransport(conn net.Conn, secret []byte) (*Transport, error) {
	key := make([]byte, 32)
	copy(key, secret)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("transport: anon-dh cipher init: %w", err)
	}
	iv := make([]byte, aes.BlockSize)
	rw := &ctrReadWriter{
		conn:      conn,
		encStream: cipher.NewCTR(block, iv),
		decStream: cipher.NewCTR(block, iv),
	}
	return New(rw, conn), nil
}

// ctrReadWriter applies AES-CTR to everything written/read over a raw
// net.Conn. Separate stream state is kept for the encrypt and decrypt
// directions since CTR mode is symmetric but the two directions advance
// their keystream counters independently.
type ctrReadWriter struct {
	conn      net.Conn
	encStream cipher.Stream
	decStream cipher.Stream
}

func (c *ctrReadWriter) Write(p []byte) (int, error) {
	out := make([]byte, len(p))
	c.encStream.XORKeyStream(out, p)
	return c.conn.Write(out)
}

func (c *ctrReadWriter) Read(p []byte) (int, error) {
	n, err := c.conn.Read(p)
	if n > 0 {
		c.decStream.XORKeyStream(p[:n], p[:n])
	}
	return n, err
}

var _ io.ReadWriter = (*ctrReadWriter)(nil)
