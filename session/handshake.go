package session

import (
	"context"
	"fmt"

	"github.com/ltsm/rfbcore/internal/rfblog"
	"github.com/ltsm/rfbcore/rfberr"
	"github.com/ltsm/rfbcore/rfbproto"
)

// handshake drives ProtocolVersion -> SecurityType -> SecurityResult ->
// ClientInit -> ServerInit in strict order.
func (s *Session) handshake(ctx context.Context) error {
	if err := s.negotiateVersion(); err != nil {
		return err
	}
	s.state = StateSecurityType
	if err := s.negotiateSecurity(); err != nil {
		return err
	}
	s.state = StateClientInit
	shared, err := s.readClientInit()
	if err != nil {
		return err
	}
	rfblog.Tracef(rfblog.FacilityProto, "client init shared=%v", shared)
	s.state = StateServerInit
	return s.sendServerInit()
}

func (s *Session) negotiateVersion() error {
	if err := s.t.SendBytes([]byte(rfbproto.ProtocolVersion)); err != nil {
		return err
	}
	if err := s.t.Flush(); err != nil {
		return err
	}
	client, err := s.t.RecvBytes(12)
	if err != nil {
		return err
	}
	if len(client) != 12 || client[0] != 'R' || client[1] != 'F' || client[2] != 'B' {
		return fmt.Errorf("session: malformed protocol version %q: %w", client, rfberr.ProtocolViolation)
	}
	// The server always clamps to 3.8 regardless of what the client
	// advertises; earlier versions are not implemented.
	return nil
}

func (s *Session) negotiateSecurity() error {
	var types []byte
	if s.cfg.Auth.None {
		types = append(types, rfbproto.SecTypeNone)
	}
	if s.cfg.Auth.VncAuthSecret != "" {
		types = append(types, rfbproto.SecTypeVncAuth)
	}
	types = append(types, rfbproto.SecTypeVeNCrypt)
	if len(types) == 1 {
		// Neither None nor VncAuth configured: fall back to SecTypeNone
		// rather than forcing every client through VeNCrypt.
		types = append([]byte{rfbproto.SecTypeNone}, types...)
	}
	if err := s.t.SendU8(uint8(len(types))); err != nil {
		return err
	}
	for _, t := range types {
		if err := s.t.SendU8(t); err != nil {
			return err
		}
	}
	if err := s.t.Flush(); err != nil {
		return err
	}
	chosen, err := s.t.RecvU8()
	if err != nil {
		return err
	}

	var authErr error
	switch chosen {
	case rfbproto.SecTypeNone:
	case rfbproto.SecTypeVncAuth:
		authErr = vncAuth(s.t.Stream, s.cfg.Auth.VncAuthSecret)
	case rfbproto.SecTypeVeNCrypt:
		authErr = s.negotiateVeNCrypt(s.conn)
	default:
		authErr = fmt.Errorf("session: unsupported security type %d: %w", chosen, rfberr.ProtocolViolation)
	}

	s.state = StateSecurityResult
	if authErr != nil {
		if err := s.sendSecurityFailure(authErr.Error()); err != nil {
			return err
		}
		return authErr
	}
	if err := s.t.SendU32BE(rfbproto.SecurityResultOK); err != nil {
		return err
	}
	return s.t.Flush()
}

func (s *Session) sendSecurityFailure(reason string) error {
	if err := s.t.SendU32BE(rfbproto.SecurityResultFailed); err != nil {
		return err
	}
	if err := s.t.SendU32BE(uint32(len(reason))); err != nil {
		return err
	}
	if err := s.t.SendBytes([]byte(reason)); err != nil {
		return err
	}
	return s.t.Flush()
}

func (s *Session) readClientInit() (shared bool, err error) {
	b, err := s.t.RecvU8()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func (s *Session) sendServerInit() error {
	if err := s.t.SendU16BE(uint16(s.cfg.Width)); err != nil {
		return err
	}
	if err := s.t.SendU16BE(uint16(s.cfg.Height)); err != nil {
		return err
	}
	if err := s.cfg.ServerFormat.Marshal(s.t.Stream); err != nil {
		return err
	}
	name := []byte(s.cfg.Name)
	if err := s.t.SendU32BE(uint32(len(name))); err != nil {
		return err
	}
	if err := s.t.SendBytes(name); err != nil {
		return err
	}
	return s.t.Flush()
}
