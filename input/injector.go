// Package input maps RFB keysyms and pointer events onto the captured
// display's synthetic-input interface, tracking pressed keys so a
// disconnect can release them cleanly.
package input

import (
	"github.com/ltsm/rfbcore/collab"
	"github.com/ltsm/rfbcore/internal/rfblog"
)

// maxPressedKeys bounds the pressed-keycode set; RFB clients send at most
// a handful of simultaneous key-down events in practice (a real keyboard
// has far fewer keys than this), so a fixed-size slice avoids an
// unbounded allocation driven entirely by untrusted client input.
const maxPressedKeys = 64

// Injector holds per-session input state: the active layout group and
// the keycodes currently considered pressed.
type Injector struct {
	sink  collab.Input
	group int

	pressed []int // keycodes currently down, in press order
}

// New builds an Injector starting in layout group 0.
func New(sink collab.Input) *Injector {
	return &Injector{sink: sink}
}

// KeyEvent handles one RFB KeyEvent message: look up keysym in the active
// group, falling back to scanning other groups and emitting a
// group-switch if found elsewhere.
func (in *Injector) KeyEvent(down bool, keysym uint32) {
	keycode, ok := in.sink.KeysymToKeycode(keysym, in.group)
	if !ok {
		for g := 0; g < maxLayoutGroups; g++ {
			if g == in.group {
				continue
			}
			if kc, found := in.sink.KeysymToKeycode(keysym, g); found {
				in.sink.SwitchLayoutGroup(g)
				in.group = g
				keycode, ok = kc, true
				break
			}
		}
	}
	if !ok {
		rfblog.Tracef(rfblog.FacilityInput, "keysym 0x%x not reachable in any layout group", keysym)
		return
	}
	in.sink.KeyPressRelease(keycode, down)
	if down {
		in.markPressed(keycode)
	} else {
		in.clearPressed(keycode)
	}
}

// maxLayoutGroups bounds the group-switch fallback scan; X11 keyboard
// layouts carry at most 4 groups (RFC-standard XKB limit).
const maxLayoutGroups = 4

func (in *Injector) markPressed(keycode int) {
	for _, kc := range in.pressed {
		if kc == keycode {
			return
		}
	}
	if len(in.pressed) >= maxPressedKeys {
		rfblog.Warningf("input: pressed-key set at capacity, dropping oldest")
		in.pressed = in.pressed[1:]
	}
	in.pressed = append(in.pressed, keycode)
}

func (in *Injector) clearPressed(keycode int) {
	for i, kc := range in.pressed {
		if kc == keycode {
			in.pressed = append(in.pressed[:i], in.pressed[i+1:]...)
			return
		}
	}
}

// PointerEvent handles an RFB PointerEvent message, forwarding motion and
// button-mask changes unconditionally: motion is emitted even when no
// button changed.
func (in *Injector) PointerEvent(x, y int, buttons uint8) {
	in.sink.Pointer(x, y, buttons)
}

// ReleaseAll emits a release for every still-pressed key, used on session
// disconnect so the display doesn't end up with stuck keys.
func (in *Injector) ReleaseAll() {
	for _, kc := range in.pressed {
		in.sink.KeyPressRelease(kc, false)
	}
	in.pressed = nil
}
