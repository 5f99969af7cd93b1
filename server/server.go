// Package server implements the listener and per-connection dispatch loop
// for an RFB server: accepting raw TCP connections, building a
// session.Config from process-wide settings, and handing each connection
// to a fresh session.Session. Grounded on patdhlk-rfb's example/main.go
// accept-loop shape (net.Listen, one goroutine per connection), adapted
// from an image-feed demo server into the host-service collaborator model
// this engine is built around.
package server

import (
	"context"
	"fmt"
	"net"

	"github.com/ltsm/rfbcore/collab"
	"github.com/ltsm/rfbcore/internal/rfblog"
	"github.com/ltsm/rfbcore/pixfmt"
	"github.com/ltsm/rfbcore/session"
)

// Config bundles everything a Server needs beyond the collaborator
// interfaces themselves: listen address, desktop name, auth policy, and
// TLS material for the X509* VeNCrypt sub-types.
type Config struct {
	ListenAddr    string
	DesktopName   string
	Auth          session.AuthConfig
	TLS           session.TLSConfig
	MaxClipboard  int
	MaxWorkers    int
	Capture       collab.Capture
	Input         collab.Input
	ClipboardHost collab.ClipboardHost
}

// Server accepts connections on a single listener and runs one
// session.Session per connection, each in its own goroutine.
type Server struct {
	cfg Config
	ln  net.Listener
}

// New binds cfg.ListenAddr. The caller owns ctx cancellation and calling
// Close to unblock a pending Accept.
func New(cfg Config) (*Server, error) {
	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("server: listen %s: %w", cfg.ListenAddr, err)
	}
	return &Server{cfg: cfg, ln: ln}, nil
}

// Addr returns the bound address, useful when ListenAddr used port 0.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Close stops accepting new connections. Sessions already running are
// unaffected; the caller's ctx governs their lifetime.
func (s *Server) Close() error { return s.ln.Close() }

// Serve accepts connections until ctx is cancelled or the listener is
// closed, running each session to completion in its own goroutine. Errors
// from individual sessions are logged, not returned: one client's
// protocol violation must not bring the listener down.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.ln.Close()
	}()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("server: accept: %w", err)
			}
		}
		go s.handle(ctx, conn)
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	w, h := 1280, 720
	if s.cfg.Capture != nil {
		w, h = s.cfg.Capture.ScreenSize()
	}
	format, err := defaultServerFormat()
	if err != nil {
		rfblog.Errorf("server: building default pixel format: %v", err)
		return
	}
	sess := session.New(conn, session.Config{
		Name:          s.cfg.DesktopName,
		Width:         w,
		Height:        h,
		ServerFormat:  format,
		Auth:          s.cfg.Auth,
		TLS:           s.cfg.TLS,
		Capture:       s.cfg.Capture,
		Input:         s.cfg.Input,
		ClipboardHost: s.cfg.ClipboardHost,
		MaxClipboard:  s.cfg.MaxClipboard,
		MaxWorkers:    s.cfg.MaxWorkers,
	})
	if err := sess.Run(ctx); err != nil {
		rfblog.Tracef(rfblog.FacilityProto, "session from %s ended: %v", conn.RemoteAddr(), err)
	}
}

// defaultServerFormat is 32bpp true-color RGB, depth 24, little-endian,
// the format virtually every viewer negotiates down to or accepts as-is.
func defaultServerFormat() (pixfmt.PixelFormat, error) {
	return pixfmt.New(32, 24, false, true,
		pixfmt.Channel{Max: 255, Shift: 16},
		pixfmt.Channel{Max: 255, Shift: 8},
		pixfmt.Channel{Max: 255, Shift: 0},
		pixfmt.Channel{Max: 0, Shift: 0},
	)
}
