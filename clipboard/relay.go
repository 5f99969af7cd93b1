// Package clipboard relays PRIMARY/CLIPBOARD selection content between a
// captured display and an RFB viewer, suppressing the echo loop that
// would otherwise occur when the display reports back a selection change
// the relay itself just caused.
package clipboard

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ltsm/rfbcore/collab"
	"github.com/ltsm/rfbcore/rfberr"
)

// DefaultMaxPayload is the extended-clipboard payload cap.
const DefaultMaxPayload = 64 << 20

// Relay tracks the last cookie this session assigned to an outbound set,
// so an echoed ObserveSelection callback carrying that same cookie is
// recognized as our own write and dropped rather than bounced back to
// the viewer. Grounded on ltsm_sockets.cpp/session glue tagging outbound
// clipboard sets with a per-session nonce.
type Relay struct {
	host       collab.ClipboardHost
	maxPayload int

	mu         sync.Mutex
	lastCookie map[collab.SelectionKind]uint64
	nextCookie uint64

	// OnServerCutText is invoked with text the display produced that
	// should be forwarded to the viewer as ServerCutText/ExtendedClipboard.
	OnServerCutText func(data []byte)
}

// New builds a Relay observing host's selection changes. maxPayload <= 0
// uses DefaultMaxPayload.
func New(host collab.ClipboardHost, maxPayload int) *Relay {
	if maxPayload <= 0 {
		maxPayload = DefaultMaxPayload
	}
	r := &Relay{
		host:       host,
		maxPayload: maxPayload,
		lastCookie: make(map[collab.SelectionKind]uint64),
	}
	host.ObserveSelection(r.onDisplaySelectionChanged)
	return r
}

func (r *Relay) onDisplaySelectionChanged(kind collab.SelectionKind, data []byte, cookie uint64) {
	r.mu.Lock()
	ours := r.lastCookie[kind] == cookie && cookie != 0
	r.mu.Unlock()
	if ours {
		return
	}
	if r.OnServerCutText != nil {
		r.OnServerCutText(data)
	}
}

// SetFromClient applies viewer-provided clipboard text to the captured
// display's CLIPBOARD selection, tagging it with a fresh cookie so the
// resulting ObserveSelection echo is recognized and dropped.
func (r *Relay) SetFromClient(data []byte) error {
	if len(data) > r.maxPayload {
		return fmt.Errorf("clipboard: payload %d bytes exceeds cap %d: %w", len(data), r.maxPayload, rfberr.ClipboardTooLarge)
	}
	cookie := atomic.AddUint64(&r.nextCookie, 1)
	r.mu.Lock()
	r.lastCookie[collab.SelectionClipboard] = cookie
	r.mu.Unlock()
	r.host.SetSelection(collab.SelectionClipboard, data, cookie)
	return nil
}
