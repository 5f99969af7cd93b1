// Package collab declares the interfaces the engine consumes from its
// host service (capture, input injection, clipboard ownership) but never
// implements itself; XCB/X11 capture, CUPS/SANE, and PAM/session-bus glue
// live entirely outside this module.
package collab

import (
	"github.com/ltsm/rfbcore/framebuffer"
	"github.com/ltsm/rfbcore/region"
)

// Capture is the source of framebuffer snapshots and damage notifications
// for the captured display.
type Capture interface {
	SubscribeDamage(callback func(region.Region))
	Snapshot(r region.Region) (*framebuffer.Framebuffer, error)
	ScreenSize() (width, height int)
	Resize(monitors []MonitorLayout) error

	// SubscribeCursor registers callback to be invoked whenever the
	// captured display's cursor shape or hotspot changes. cursor is an
	// owning framebuffer holding the cursor's own pixel data; mask is a
	// row-major, byte-padded-per-row 1-bpp alpha mask.
	SubscribeCursor(callback func(hotspotX, hotspotY int, cursor *framebuffer.Framebuffer, mask []byte))
}

// MonitorLayout describes one monitor in a RandR resize request or an
// ExtendedDesktopSize update.
type MonitorLayout struct {
	X, Y, Width, Height int
	Flags               uint32
}

// Input is the synthetic-input sink for injected key and pointer events.
type Input interface {
	KeyPressRelease(keycode int, down bool)
	Pointer(x, y int, buttons uint8)
	SwitchLayoutGroup(index int)
	KeysymToKeycode(keysym uint32, group int) (keycode int, ok bool)
}

// SelectionKind distinguishes the two X11 selections the clipboard relay
// tracks.
type SelectionKind int

const (
	SelectionPrimary SelectionKind = iota
	SelectionClipboard
)

// ClipboardHost is the captured display's selection owner/observer.
type ClipboardHost interface {
	SetSelection(kind SelectionKind, data []byte, cookie uint64)
	ObserveSelection(callback func(kind SelectionKind, data []byte, cookie uint64))
}
