package session

import (
	"fmt"

	"github.com/ltsm/rfbcore/collab"
	"github.com/ltsm/rfbcore/encodings"
	"github.com/ltsm/rfbcore/region"
	"github.com/ltsm/rfbcore/rfberr"
)

// handleSetDesktopSize parses a client-initiated RandR resize request
// (new screen size plus monitor list) and applies it via the Capture
// collaborator, replying with an ExtendedDesktopSize update.
func (s *Session) handleSetDesktopSize() error {
	if err := s.t.Skip(1); err != nil {
		return err
	}
	width, err := s.t.RecvU16BE()
	if err != nil {
		return err
	}
	height, err := s.t.RecvU16BE()
	if err != nil {
		return err
	}
	count, err := s.t.RecvU8()
	if err != nil {
		return err
	}
	if err := s.t.Skip(1); err != nil {
		return err
	}
	monitors := make([]collab.MonitorLayout, 0, count)
	for i := uint8(0); i < count; i++ {
		if err := s.t.Skip(1); err != nil {
			return err
		}
		if err := s.t.Skip(1); err != nil {
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
		if err := s.t.Skip(2); err != nil {
			return err
		}
		monitors = append(monitors, collab.MonitorLayout{X: int(x), Y: int(y), Width: int(w), Height: int(h)})
	}
	_ = width
	_ = height

	if s.cfg.Capture == nil {
		return fmt.Errorf("session: desktop resize requested but no capture collaborator configured: %w", rfberr.ProtocolViolation)
	}
	if err := s.cfg.Capture.Resize(monitors); err != nil {
		return err
	}
	return s.sendExtendedDesktopSize(monitors)
}

// sendExtendedDesktopSize replies to a resize with the
// ExtendedDesktopSize pseudo-rectangle.
func (s *Session) sendExtendedDesktopSize(monitors []collab.MonitorLayout) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	w, h := s.cfg.Capture.ScreenSize()
	if err := s.t.SendU8(0); err != nil { // ServerMsgFramebufferUpdate
		return err
	}
	if err := s.t.SendBytes([]byte{0}); err != nil {
		return err
	}
	if err := s.t.SendU16BE(1); err != nil {
		return err
	}
	if err := s.sendRectangleHeader(region.New(0, 0, w, h), encodings.ExtendedDesktopSizePseudo); err != nil {
		return err
	}
	if err := s.t.SendU8(uint8(len(monitors))); err != nil {
		return err
	}
	if err := s.t.SendBytes([]byte{0, 0, 0}); err != nil {
		return err
	}
	for _, m := range monitors {
		if err := s.t.SendBytes([]byte{0, 0}); err != nil {
			return err
		}
		for _, v := range []int{m.X, m.Y, m.Width, m.Height} {
			if err := s.t.SendU16BE(uint16(v)); err != nil {
				return err
			}
		}
		if err := s.t.SendU32BE(0); err != nil {
			return err
		}
	}
	return s.t.Flush()
}
