package session

import (
	"fmt"
	"net"

	"github.com/ltsm/rfbcore/internal/rfblog"
	"github.com/ltsm/rfbcore/rfberr"
	"github.com/ltsm/rfbcore/rfbproto"
	"github.com/ltsm/rfbcore/transport"
)

// TLSConfig names the certificate/key pair used by the X509* VeNCrypt
// sub-types. Left zero-valued, only the TLS* (anonymous-DH) sub-types are
// offered.
type TLSConfig struct {
	CertFile string
	KeyFile  string
}

// negotiateVeNCrypt runs after the client selects SecTypeVeNCrypt from the
// outer security-type list. It offers the sub-types this server supports
// given cfg.Auth and cfg.TLS, performs whichever transport upgrade the
// client picks, then re-enters VncAuth (for the *Vnc sub-types) on the
// newly-encrypted channel. conn is the raw net.Conn backing s.t, needed
// because TLS and the from-scratch anonymous-DH cipher both wrap the
// connection itself, not the RFB byte stream on top of it.
func (s *Session) negotiateVeNCrypt(conn net.Conn) error {
	if err := s.t.SendU8(0); err != nil { // major version
		return err
	}
	if err := s.t.SendU8(2); err != nil { // minor version
		return err
	}
	if err := s.t.Flush(); err != nil {
		return err
	}
	if _, err := s.t.RecvU8(); err != nil { // client major (ignored, we only speak 0.2)
		return err
	}
	if _, err := s.t.RecvU8(); err != nil { // client minor
		return err
	}
	if err := s.t.SendU8(0); err != nil { // version accepted
		return err
	}
	if err := s.t.Flush(); err != nil {
		return err
	}

	subtypes := s.venCryptSubtypes()
	if err := s.t.SendU8(uint8(len(subtypes))); err != nil {
		return err
	}
	for _, st := range subtypes {
		if err := s.t.SendU32BE(st); err != nil {
			return err
		}
	}
	if err := s.t.Flush(); err != nil {
		return err
	}

	chosen, err := s.t.RecvU32BE()
	if err != nil {
		return err
	}
	if !containsU32(subtypes, chosen) {
		return fmt.Errorf("session: client chose unoffered VeNCrypt sub-type %d: %w", chosen, rfberr.ProtocolViolation)
	}
	if err := s.t.SendU8(1); err != nil { // sub-type ack
		return err
	}
	if err := s.t.Flush(); err != nil {
		return err
	}

	upgraded, err := s.upgradeTransport(conn, chosen)
	if err != nil {
		return err
	}
	s.t = upgraded
	rfblog.Tracef(rfblog.FacilityTransport, "vencrypt upgraded to sub-type %d", chosen)

	switch chosen {
	case rfbproto.VeNCryptTLSVnc, rfbproto.VeNCryptX509Vnc:
		return vncAuth(s.t.Stream, s.cfg.Auth.VncAuthSecret)
	case rfbproto.VeNCryptTLSPlain, rfbproto.VeNCryptX509Plain:
		return s.plainAuth()
	default: // *None: encryption only, no further authentication
		return nil
	}
}

func (s *Session) venCryptSubtypes() []uint32 {
	var out []uint32
	if s.cfg.Auth.VncAuthSecret != "" {
		out = append(out, rfbproto.VeNCryptTLSVnc)
	} else {
		out = append(out, rfbproto.VeNCryptTLSNone)
	}
	if s.cfg.TLS.CertFile != "" {
		if s.cfg.Auth.VncAuthSecret != "" {
			out = append(out, rfbproto.VeNCryptX509Vnc)
		} else {
			out = append(out, rfbproto.VeNCryptX509None)
		}
	}
	return out
}

func (s *Session) upgradeTransport(conn net.Conn, subtype uint32) (*transport.Transport, error) {
	switch subtype {
	case rfbproto.VeNCryptTLSNone, rfbproto.VeNCryptTLSVnc, rfbproto.VeNCryptTLSPlain:
		return transport.WrapAnonDHServer(conn)
	case rfbproto.VeNCryptX509None, rfbproto.VeNCryptX509Vnc, rfbproto.VeNCryptX509Plain:
		return transport.WrapTLSServer(conn, s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
	default:
		return nil, fmt.Errorf("session: unsupported VeNCrypt sub-type %d: %w", subtype, rfberr.ProtocolViolation)
	}
}

// plainAuth reads the VeNCrypt "Plain" credential pair and checks the
// password against the configured VncAuth secret; username is accepted but
// not checked against anything, matching the single-user deployment model
// the rest of this server assumes.
func (s *Session) plainAuth() error {
	ulen, err := s.t.RecvU32BE()
	if err != nil {
		return err
	}
	if _, err := s.t.RecvBytes(int(ulen)); err != nil {
		return err
	}
	plen, err := s.t.RecvU32BE()
	if err != nil {
		return err
	}
	password, err := s.t.RecvBytes(int(plen))
	if err != nil {
		return err
	}
	if s.cfg.Auth.VncAuthSecret == "" || string(password) != s.cfg.Auth.VncAuthSecret {
		return fmt.Errorf("session: plain auth password mismatch: %w", rfberr.ProtocolViolation)
	}
	return nil
}

func containsU32(list []uint32, v uint32) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
