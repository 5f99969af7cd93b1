// Package session implements the RFB server protocol state machine:
// handshake, pixel-format/encoding negotiation, message dispatch, update
// scheduling, and pseudo-encoding rectangles. Grounded on the handshake
// stage sequence in bigangryrobot-go-vnc/vncclient.go (ProtocolVersion ->
// Security -> ClientInit -> ServerInit -> message loop), turned into the
// server-writes-first direction the host service calls for.
package session

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/ltsm/rfbcore/clipboard"
	"github.com/ltsm/rfbcore/collab"
	"github.com/ltsm/rfbcore/encoding"
	"github.com/ltsm/rfbcore/encodings"
	"github.com/ltsm/rfbcore/framebuffer"
	"github.com/ltsm/rfbcore/input"
	"github.com/ltsm/rfbcore/internal/rfblog"
	"github.com/ltsm/rfbcore/pixfmt"
	"github.com/ltsm/rfbcore/region"
	"github.com/ltsm/rfbcore/rfberr"
	"github.com/ltsm/rfbcore/transport"
)

// State is one stage of the handshake state machine.
// Transitions are strictly forward; any protocol violation moves to
// Failed and closes the transport.
type State int

const (
	StateProtocolVersion State = iota
	StateSecurityType
	StateSecurityResult
	StateClientInit
	StateServerInit
	StateRunning
	StateFailed
)

// AuthConfig selects the security type this session will offer.
type AuthConfig struct {
	None          bool
	VncAuthSecret string // non-empty enables VncAuth
}

// Config bundles the fixed parameters a Session needs at construction:
// the initial desktop geometry/name, the auth policy, and the
// collaborator interfaces the host service provides.
type Config struct {
	Name          string
	Width, Height int
	ServerFormat  pixfmt.PixelFormat
	Auth          AuthConfig
	TLS           TLSConfig
	Capture       collab.Capture
	Input         collab.Input
	ClipboardHost collab.ClipboardHost
	MaxClipboard  int
	MaxWorkers    int // tile-encoder worker cap; 0 means unlimited
}

// Session is one client connection's RFB protocol state. Exactly one
// goroutine reads and dispatches; FramebufferUpdates and other server
// messages are written from that goroutine or from collaborator
// callbacks, serialized by sendMu.
type Session struct {
	cfg   Config
	conn  net.Conn
	t     *transport.Transport
	state State

	mu            sync.Mutex
	clientFormat  pixfmt.PixelFormat
	encodingList  []encodings.Type
	continuous    bool
	extClipboard  bool
	cursorCapable bool

	pendingIncremental bool
	pendingRegion      region.Region
	damage             region.Region
	damageValid        bool

	closing int32

	injector *input.Injector
	relay    *clipboard.Relay

	sendMu sync.Mutex // held for the duration of one FramebufferUpdate frame
}

// New constructs a Session wrapping an already-accepted connection, plain
// (unencrypted) at the transport level until/unless the client picks a
// VeNCrypt sub-type during negotiateSecurity. Run drives the handshake and
// message loop; it blocks until the session ends.
func New(conn net.Conn, cfg Config) *Session {
	s := &Session{
		cfg:          cfg,
		conn:         conn,
		t:            transport.New(conn, conn),
		clientFormat: cfg.ServerFormat,
		encodingList: []encodings.Type{encodings.Raw},
		injector:     input.New(cfg.Input),
	}
	if cfg.ClipboardHost != nil {
		s.relay = clipboard.New(cfg.ClipboardHost, cfg.MaxClipboard)
		s.relay.OnServerCutText = s.sendServerCutText
	}
	if cfg.Capture != nil {
		cfg.Capture.SubscribeDamage(s.onDamage)
		cfg.Capture.SubscribeCursor(s.onCursorChange)
	}
	return s
}

// Run executes the handshake then the message dispatch loop until the
// transport closes, ctx is cancelled, or a protocol violation occurs.
func (s *Session) Run(ctx context.Context) error {
	defer s.shutdown()
	if err := s.handshake(ctx); err != nil {
		s.state = StateFailed
		return err
	}
	s.state = StateRunning
	return s.dispatchLoop(ctx)
}

func (s *Session) shutdown() {
	if !atomic.CompareAndSwapInt32(&s.closing, 0, 1) {
		return
	}
	s.injector.ReleaseAll()
	_ = s.t.Close()
	rfblog.Tracef(rfblog.FacilityProto, "session closed")
}

func (s *Session) isClosing() bool { return atomic.LoadInt32(&s.closing) != 0 }

func (s *Session) onDamage(r region.Region) {
	s.mu.Lock()
	if s.damageValid {
		s.damage = region.Union(s.damage, r)
	} else {
		s.damage, s.damageValid = r, true
	}
	s.mu.Unlock()
	s.maybeSendUpdate()
}

// onCursorChange is the Capture collaborator's callback for cursor shape
// or hotspot changes. Cursor rectangles bypass damage tracking entirely:
// they are sent immediately, outside of FramebufferUpdateRequest flow
// control, the same way an unsolicited ServerCutText is sent.
func (s *Session) onCursorChange(hotspotX, hotspotY int, cursor *framebuffer.Framebuffer, mask []byte) {
	if s.isClosing() {
		return
	}
	s.mu.Lock()
	wantsCursor := s.cursorCapable
	s.mu.Unlock()
	if !wantsCursor {
		return
	}
	if err := s.sendCursorUpdate(hotspotX, hotspotY, cursor, mask); err != nil {
		rfblog.Errorf("session: cursor update send failed: %v", err)
	}
}

// drainDamage atomically takes and clears the accumulated damage region.
func (s *Session) drainDamage() (region.Region, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.damageValid {
		return region.Region{}, false
	}
	r := s.damage
	s.damage, s.damageValid = region.Region{}, false
	return r, true
}

// selectedEncoding returns the highest-priority encoding in the client's
// list that this server implements. Raw is always supported, so this
// never fails (UnsupportedEncoding falls back to Raw).
func (s *Session) selectedEncoding() encoding.Encoder {
	s.mu.Lock()
	list := append([]encodings.Type(nil), s.encodingList...)
	s.mu.Unlock()
	for _, t := range list {
		if enc, ok := newEncoderFor(t); ok {
			return enc
		}
	}
	if len(list) > 0 {
		rfblog.Tracef(rfblog.FacilityProto, "%v", errUnsupported)
	}
	return encoding.RawEncoder{}
}

func newEncoderFor(t encodings.Type) (encoding.Encoder, bool) {
	switch t {
	case encodings.Raw:
		return encoding.RawEncoder{}, true
	case encodings.RRE:
		return encoding.RREEncoder{}, true
	case encodings.CoRRE:
		return encoding.CoRREEncoder{}, true
	case encodings.Hextile:
		return encoding.HextileEncoder{}, true
	case encodings.TRLE:
		return encoding.TRLEEncoder{}, true
	case encodings.ZRLE:
		return &encoding.ZRLEEncoder{}, true
	case encodings.Zlib:
		return &encoding.ZlibEncoder{}, true
	default:
		return nil, false
	}
}

var errUnsupported = fmt.Errorf("session: client offered no implemented encoding: %w", rfberr.UnsupportedEncoding)
