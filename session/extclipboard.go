package session

import (
	"fmt"

	"github.com/ltsm/rfbcore/clipboard"
	"github.com/ltsm/rfbcore/rfberr"
	"github.com/ltsm/rfbcore/rfbproto"
)

// handleExtendedClientCutText parses the extended-clipboard variant of
// ClientCutText, signalled by a negative length. A "provide" message is
// applied only when its whole payload arrives in that one message; each
// message gets a fresh ChunkAssembler, so a payload split across messages
// is dropped. A "request" is answered with a caps message, and a "caps"
// message is accepted without further action.
func (s *Session) handleExtendedClientCutText(signedLen int32) error {
	n := int(-signedLen)
	payload, err := s.t.RecvBytes(n)
	if err != nil {
		return err
	}
	if len(payload) < 4 {
		return fmt.Errorf("session: extended clipboard message too short: %w", rfberr.ProtocolViolation)
	}
	flags := uint32(payload[0])<<24 | uint32(payload[1])<<16 | uint32(payload[2])<<8 | uint32(payload[3])
	body := payload[4:]

	switch {
	case flags&rfbproto.ExtClipProvideFlag != 0:
		return s.applyExtendedProvide(body)
	case flags&rfbproto.ExtClipCapsFlag != 0:
		// Capability advertisement: nothing to act on beyond recording
		// that the client supports the extension, already set by the
		// ExtendedClipboardPseudo entry in SetEncodings.
		return nil
	case flags&rfbproto.ExtClipRequestFlag != 0:
		return s.sendServerCutTextCapabilities()
	default:
		return nil
	}
}

func (s *Session) applyExtendedProvide(body []byte) error {
	if len(body) < 4 {
		return fmt.Errorf("session: extended clipboard provide body too short: %w", rfberr.ProtocolViolation)
	}
	total := int(uint32(body[0])<<24 | uint32(body[1])<<16 | uint32(body[2])<<8 | uint32(body[3]))
	asm, err := clipboard.NewChunkAssembler(total, s.cfg.MaxClipboard)
	if err != nil {
		return err
	}
	if err := asm.AddChunk(0, body[4:]); err != nil {
		return err
	}
	if s.relay == nil || !asm.Done() {
		return nil
	}
	return s.relay.SetFromClient(asm.Bytes())
}

func (s *Session) sendServerCutTextCapabilities() error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := s.t.SendU8(rfbproto.ServerMsgServerCutText); err != nil {
		return err
	}
	if err := s.t.SendBytes([]byte{0, 0, 0}); err != nil {
		return err
	}
	if err := s.t.SendU32BE(uint32(int32(-4))); err != nil {
		return err
	}
	flags := rfbproto.ExtClipCapsFlag | rfbproto.ExtClipFormatText
	if err := s.t.SendU32BE(flags); err != nil {
		return err
	}
	return s.t.Flush()
}
