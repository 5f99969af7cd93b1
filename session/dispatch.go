package session

import (
	"context"
	"fmt"
	"time"

	"github.com/ltsm/rfbcore/encodings"
	"github.com/ltsm/rfbcore/internal/rfblog"
	"github.com/ltsm/rfbcore/pixfmt"
	"github.com/ltsm/rfbcore/region"
	"github.com/ltsm/rfbcore/rfberr"
	"github.com/ltsm/rfbcore/rfbproto"
)

// pollInterval is how long the dispatch loop waits for input before
// checking for cancellation and pending damage again.
const pollInterval = 20 * time.Millisecond

// dispatchLoop reads client-to-server messages one at a time, applying
// each before looking for the next, per the "input events are applied in
// receive order" ordering rule.
func (s *Session) dispatchLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if s.isClosing() {
			return nil
		}
		if !s.t.HasInput(pollInterval) {
			continue
		}
		id, err := s.t.RecvU8()
		if err != nil {
			return err
		}
		if err := s.dispatchOne(id); err != nil {
			return err
		}
	}
}

func (s *Session) dispatchOne(id uint8) error {
	switch id {
	case rfbproto.ClientMsgSetPixelFormat:
		return s.handleSetPixelFormat()
	case rfbproto.ClientMsgSetEncodings:
		return s.handleSetEncodings()
	case rfbproto.ClientMsgFramebufferUpdateRequest:
		return s.handleUpdateRequest()
	case rfbproto.ClientMsgKeyEvent:
		return s.handleKeyEvent()
	case rfbproto.ClientMsgPointerEvent:
		return s.handlePointerEvent()
	case rfbproto.ClientMsgClientCutText:
		return s.handleClientCutText()
	case rfbproto.ClientMsgEnableContinuousUpdates:
		return s.handleEnableContinuousUpdates()
	case rfbproto.ClientMsgSetDesktopSize:
		return s.handleSetDesktopSize()
	default:
		return fmt.Errorf("session: unknown client message id %d: %w", id, rfberr.ProtocolViolation)
	}
}

func (s *Session) handleSetPixelFormat() error {
	if err := s.t.Skip(3); err != nil {
		return err
	}
	format, err := pixfmt.Unmarshal(s.t.Stream)
	if err != nil {
		return err
	}
	// Hold the send lock so no update currently being encoded straddles
	// the format change.
	s.sendMu.Lock()
	s.mu.Lock()
	s.clientFormat = format
	s.mu.Unlock()
	s.sendMu.Unlock()
	return nil
}

func (s *Session) handleSetEncodings() error {
	if err := s.t.Skip(1); err != nil {
		return err
	}
	n, err := s.t.RecvU16BE()
	if err != nil {
		return err
	}
	list := make([]encodings.Type, 0, n)
	for i := uint16(0); i < n; i++ {
		v, err := s.t.RecvU32BE()
		if err != nil {
			return err
		}
		t := encodings.Type(int32(v))
		switch t {
		case encodings.ContinuousUpdatesPseudo, encodings.ExtendedClipboardPseudo,
			encodings.CursorPseudo, encodings.DesktopSizePseudo, encodings.ExtendedDesktopSizePseudo,
			encodings.LastRectPseudo:
			s.applyCapability(t)
		default:
			list = append(list, t)
		}
	}
	s.mu.Lock()
	s.encodingList = list
	s.mu.Unlock()
	rfblog.Tracef(rfblog.FacilityProto, "client encodings: %v", list)
	return nil
}

func (s *Session) applyCapability(t encodings.Type) {
	switch t {
	case encodings.ExtendedClipboardPseudo:
		s.mu.Lock()
		s.extClipboard = true
		s.mu.Unlock()
	case encodings.CursorPseudo:
		s.mu.Lock()
		s.cursorCapable = true
		s.mu.Unlock()
	}
}

func (s *Session) handleUpdateRequest() error {
	incremental, err := s.t.RecvU8()
	if err != nil {
		return err
	}
	x, err := s.t.RecvU16BE()
	if err != nil {
		return err
	}
	y, err := s.t.RecvU16BE()
	if err != nil {
		return err
	}
	w, err := s.t.RecvU16BE()
	if err != nil {
		return err
	}
	h, err := s.t.RecvU16BE()
	if err != nil {
		return err
	}
	r := region.New(int(x), int(y), int(w), int(h))

	if incremental == 0 {
		return s.sendFullUpdate(r)
	}
	s.mu.Lock()
	s.pendingIncremental = true
	s.pendingRegion = r
	s.mu.Unlock()
	s.maybeSendUpdate()
	return nil
}

func (s *Session) handleKeyEvent() error {
	down, err := s.t.RecvU8()
	if err != nil {
		return err
	}
	if err := s.t.Skip(2); err != nil {
		return err
	}
	keysym, err := s.t.RecvU32BE()
	if err != nil {
		return err
	}
	s.injector.KeyEvent(down != 0, keysym)
	return nil
}

func (s *Session) handlePointerEvent() error {
	buttons, err := s.t.RecvU8()
	if err != nil {
		return err
	}
	x, err := s.t.RecvU16BE()
	if err != nil {
		return err
	}
	y, err := s.t.RecvU16BE()
	if err != nil {
		return err
	}
	s.injector.PointerEvent(int(x), int(y), buttons)
	return nil
}

func (s *Session) handleClientCutText() error {
	if err := s.t.Skip(3); err != nil {
		return err
	}
	rawLen, err := s.t.RecvU32BE()
	if err != nil {
		return err
	}
	if int32(rawLen) < 0 {
		return s.handleExtendedClientCutText(int32(rawLen))
	}
	data, err := s.t.RecvBytes(int(rawLen))
	if err != nil {
		return err
	}
	if s.relay == nil {
		return nil
	}
	return s.relay.SetFromClient(data)
}

func (s *Session) handleEnableContinuousUpdates() error {
	enable, err := s.t.RecvU8()
	if err != nil {
		return err
	}
	for _, f := range []func() (uint16, error){s.t.RecvU16BE, s.t.RecvU16BE, s.t.RecvU16BE, s.t.RecvU16BE} {
		if _, err := f(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.continuous = enable != 0
	s.mu.Unlock()
	if s.continuous {
		s.maybeSendUpdate()
	}
	return nil
}
