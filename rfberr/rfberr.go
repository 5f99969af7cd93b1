// Package rfberr defines the error taxonomy used throughout the engine.
// Sentinel values are meant to be wrapped with context via
// fmt.Errorf("...: %w", rfberr.ProtocolViolation) and tested with errors.Is.
package rfberr

import "errors"

var (
	// TransportClosed: the remote or local end of a transport closed.
	// Terminate the owning session, release any pressed keys, stop workers.
	TransportClosed = errors.New("rfb: transport closed")

	// ProtocolViolation: malformed header, unknown subencoding, or
	// out-of-range coordinates. The offending session is closed.
	ProtocolViolation = errors.New("rfb: protocol violation")

	// UnsupportedEncoding: the client only offered encodings the server
	// cannot produce. Raw is mandatory and is always available as a
	// fallback, so this should only surface for malformed SetEncodings
	// lists (empty, or containing only pseudo-encodings).
	UnsupportedEncoding = errors.New("rfb: unsupported encoding")

	// InvalidFormat: a PixelFormat was constructed with overlapping masks
	// or a bpp outside {8,16,24,30,32}. Rejected at the boundary; this
	// error never surfaces from inside the engine once a format exists.
	InvalidFormat = errors.New("rfb: invalid pixel format")

	// ResourceExhaustion: the worker pool could not allocate, or zlib
	// returned Z_MEM_ERROR. The owning session is bounced; the host
	// process remains stable.
	ResourceExhaustion = errors.New("rfb: resource exhaustion")

	// ClipboardTooLarge: an oversized clipboard payload was rejected.
	// The payload is dropped; the session continues.
	ClipboardTooLarge = errors.New("rfb: clipboard payload too large")
)
