// Command rfbserverd is the host binary for the remote-framebuffer engine:
// it parses process flags and hands the listener off to package server.
// Capture/input/clipboard backends (X11, RandR, synthetic-input injection)
// are outside this module's scope; this binary sets no Capture, Input or
// ClipboardHost collaborator in the server configuration.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/golang/glog"

	"github.com/ltsm/rfbcore/internal/rfblog"
	"github.com/ltsm/rfbcore/server"
	"github.com/ltsm/rfbcore/session"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		listen  = flag.String("listen", ":5900", "listen on [ip]:port")
		display = flag.Int("display", 0, "X11 display number exposed by the captured desktop")
		tlsMode = flag.String("tls", "none", "transport encryption: none, anon, or x509")
		tlsCA   = flag.String("tls-ca", "", "x509 mode: CA certificate path")
		tlsCert = flag.String("tls-cert", "", "x509 mode: server certificate path")
		tlsKey  = flag.String("tls-key", "", "x509 mode: server private key path")
		threads = flag.Int("threads", 0, "tile-encoder worker pool size (0 = GOMAXPROCS)")
		debug   = flag.String("debug", "", "comma-separated debug facilities: proto,encode,input,clipboard,transport")
		secret  = flag.String("vncauth-secret", "", "non-empty enables the VncAuth security type with this password")
	)
	flag.Parse()
	defer glog.Flush()

	rfblog.SetDebugFacilities(*debug)
	_ = display // the X11 display collaborator consumes this; wiring it is outside this module

	tlsCfg, err := resolveTLS(*tlsMode, *tlsCA, *tlsCert, *tlsKey)
	if err != nil {
		fmt.Fprintln(os.Stderr, "rfbserverd:", err)
		return 1
	}

	workers := *threads
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	srv, err := server.New(server.Config{
		ListenAddr:  *listen,
		DesktopName: "rfbcore",
		Auth: session.AuthConfig{
			None:          *secret == "",
			VncAuthSecret: *secret,
		},
		TLS:          tlsCfg,
		MaxClipboard: 0, // 0 lets clipboard.New fall back to clipboard.DefaultMaxPayload
		MaxWorkers:   workers,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "rfbserverd:", err)
		return 1
	}
	defer srv.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	glog.Infof("rfbserverd listening on %s", srv.Addr())
	if err := srv.Serve(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "rfbserverd:", err)
		return 1
	}
	return 0
}

func resolveTLS(mode, ca, cert, key string) (session.TLSConfig, error) {
	switch mode {
	case "none", "anon":
		return session.TLSConfig{}, nil
	case "x509":
		if cert == "" || key == "" {
			return session.TLSConfig{}, fmt.Errorf("--tls x509 requires --tls-cert and --tls-key")
		}
		_ = ca // the client side, not this server, verifies against a CA
		return session.TLSConfig{CertFile: cert, KeyFile: key}, nil
	default:
		return session.TLSConfig{}, fmt.Errorf("unknown --tls mode %q: want none, anon, or x509", mode)
	}
}
