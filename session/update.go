package session

import (
	"bytes"
	"context"

	"github.com/ltsm/rfbcore/encoding"
	"github.com/ltsm/rfbcore/encodings"
	"github.com/ltsm/rfbcore/framebuffer"
	"github.com/ltsm/rfbcore/internal/rfblog"
	"github.com/ltsm/rfbcore/pixfmt"
	"github.com/ltsm/rfbcore/region"
	"github.com/ltsm/rfbcore/rfbproto"
	"github.com/ltsm/rfbcore/stream"
)

// maybeSendUpdate sends an update if an incremental request is pending
// and damage has accumulated, or if continuous updates are enabled. Only
// one update may be in flight per session; sendMu enforces that.
func (s *Session) maybeSendUpdate() {
	if s.isClosing() {
		return
	}
	s.mu.Lock()
	pending := s.pendingIncremental
	continuous := s.continuous
	requested := s.pendingRegion
	s.mu.Unlock()
	if !pending && !continuous {
		return
	}
	damage, ok := s.drainDamage()
	if !ok {
		return
	}
	target := damage
	if pending {
		target = region.Intersect(requested, damage)
		if target.Empty() {
			return
		}
	}
	if err := s.sendFullUpdate(target); err != nil {
		rfblog.Errorf("session: update send failed: %v", err)
		return
	}
	s.mu.Lock()
	s.pendingIncremental = false
	s.mu.Unlock()
}

// sendFullUpdate encodes and sends r unconditionally, regardless of
// damage tracking (used by incremental=0 requests).
func (s *Session) sendFullUpdate(r region.Region) error {
	if s.cfg.Capture == nil {
		return nil
	}
	fb, err := s.cfg.Capture.Snapshot(r)
	if err != nil {
		return err
	}
	return s.sendFramebufferUpdate(fb, []region.Region{fb.Region()})
}

// sendFramebufferUpdate writes one FramebufferUpdate message covering
// rects, each encoded with the currently-selected encoding. Tiles
// within a rectangle, and rectangles within the message, are serialized
// in row-major order as the contract requires.
func (s *Session) sendFramebufferUpdate(fb *framebuffer.Framebuffer, rects []region.Region) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.mu.Lock()
	format := s.clientFormat
	s.mu.Unlock()
	enc := s.selectedEncoding()
	rects = splitForEncoder(enc, rects)

	results, err := encoding.EncodeParallel(context.Background(), fb, rects, format, func() encoding.Encoder { return enc }, s.cfg.MaxWorkers)
	if err != nil {
		return err
	}

	if err := s.t.SendU8(rfbproto.ServerMsgFramebufferUpdate); err != nil {
		return err
	}
	if err := s.t.SendBytes([]byte{0}); err != nil {
		return err
	}
	if err := s.t.SendU16BE(uint16(len(results))); err != nil {
		return err
	}
	for _, res := range results {
		if err := s.sendRectangleHeader(res.Rect, enc.Type()); err != nil {
			return err
		}
		if err := s.t.SendBytes(res.Body); err != nil {
			return err
		}
	}
	return s.t.Flush()
}

// splitForEncoder subdivides rects into pieces small enough for enc's
// wire format. Only CoRRE needs this: its subrectangles are u8-coded
// relative to the rectangle's own origin, so the rectangle itself can be
// no larger than encoding.CoRREMaxExtent on a side.
func splitForEncoder(enc encoding.Encoder, rects []region.Region) []region.Region {
	if enc.Type() != encodings.CoRRE {
		return rects
	}
	out := make([]region.Region, 0, len(rects))
	for _, r := range rects {
		out = append(out, r.DivideBlocks(encoding.CoRREMaxExtent)...)
	}
	return out
}

func (s *Session) sendRectangleHeader(r region.Region, encID encodings.Type) error {
	for _, v := range []uint16{uint16(r.X), uint16(r.Y), r.Width, r.Height} {
		if err := s.t.SendU16BE(v); err != nil {
			return err
		}
	}
	return s.t.SendU32BE(uint32(int32(encID)))
}

// sendServerCutText forwards captured-display selection content to the
// viewer using the plain (non-extended) ServerCutText message.
func (s *Session) sendServerCutText(data []byte) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := s.t.SendU8(rfbproto.ServerMsgServerCutText); err != nil {
		rfblog.Errorf("session: server cut text: %v", err)
		return
	}
	if err := s.t.SendBytes([]byte{0, 0, 0}); err != nil {
		rfblog.Errorf("session: server cut text: %v", err)
		return
	}
	if err := s.t.SendU32BE(uint32(len(data))); err != nil {
		rfblog.Errorf("session: server cut text: %v", err)
		return
	}
	if err := s.t.SendBytes(data); err != nil {
		rfblog.Errorf("session: server cut text: %v", err)
		return
	}
	if err := s.t.Flush(); err != nil {
		rfblog.Errorf("session: server cut text: %v", err)
	}
}

// sendCursorUpdate emits the Cursor pseudo-encoding rectangle: hotspot
// position as (x,y), dimensions (w,h), followed by w*h pixels and a
// ceil(w/8)*h row-major mask bitmap. Each pixel is written with
// encoding.WritePixel at the client format's full bytes-per-pixel; the
// compact cpixel form is not used.
func (s *Session) sendCursorUpdate(hotspotX, hotspotY int, cursor *framebuffer.Framebuffer, mask []byte) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	w := int(cursor.Region().Width)
	h := int(cursor.Region().Height)

	if err := s.t.SendU8(rfbproto.ServerMsgFramebufferUpdate); err != nil {
		return err
	}
	if err := s.t.SendBytes([]byte{0}); err != nil {
		return err
	}
	if err := s.t.SendU16BE(1); err != nil {
		return err
	}
	if err := s.sendRectangleHeader(region.New(hotspotX, hotspotY, w, h), encodings.CursorPseudo); err != nil {
		return err
	}

	s.mu.Lock()
	format := s.clientFormat
	s.mu.Unlock()

	var buf bytes.Buffer
	bs := stream.New(&buf)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			native := cursor.Pixel(x, y)
			v := pixfmt.Convert(native, cursor.Format(), format)
			if err := encoding.WritePixel(bs, format, v); err != nil {
				return err
			}
		}
	}
	if err := s.t.SendBytes(buf.Bytes()); err != nil {
		return err
	}
	if err := s.t.SendBytes(mask); err != nil {
		return err
	}
	return s.t.Flush()
}
