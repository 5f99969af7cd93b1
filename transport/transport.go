// Package transport carries bytes over a connected socket or a stdin/stdout
// pair, with composable TLS (anonymous-DH or X.509) and zlib deflate/inflate
// decorators.
package transport

import (
	"io"
	"time"

	"github.com/ltsm/rfbcore/internal/rfblog"
	"github.com/ltsm/rfbcore/stream"
)

// Transport is the engine's view of a byte-stream connection: a
// *stream.Stream plus lifecycle (Close) and readiness (HasInput) hooks.
// The TLS and zlib decorators each return a *Transport too, so they
// compose transparently.
type Transport struct {
	*stream.Stream
	closer io.Closer
	// extraInput reports additional buffered-plaintext availability a
	// decorator layer (TLS, zlib) may hold that the raw socket can't see.
	extraInput func() bool
}

// New wraps a raw connection (e.g. net.Conn, or an os.Stdin/os.Stdout pipe
// pair adapted via io.ReadWriter) with no decoration.
func New(rw io.ReadWriter, closer io.Closer) *Transport {
	return &Transport{Stream: stream.New(rw), closer: closer}
}

// Close shuts the transport down. Safe to call multiple times.
func (t *Transport) Close() error {
	if t.closer == nil {
		return nil
	}
	err := t.closer.Close()
	rfblog.Tracef(rfblog.FacilityTransport, "transport closed: %v", err)
	return err
}

// HasInput reports whether at least one byte is available within timeout.
// It combines "a decorator (TLS/zlib) has buffered plaintext" with "the
// underlying stream is readable", since TLS may already hold plaintext for
// records fully received off the wire.
func (t *Transport) HasInput(timeout time.Duration) bool {
	if t.extraInput != nil && t.extraInput() {
		return true
	}
	return t.Stream.HasInput(timeout)
}

// withExtraInput lets decorators report their own buffered-plaintext state.
func (t *Transport) withExtraInput(fn func() bool) *Transport {
	t.extraInput = fn
	return t
}
