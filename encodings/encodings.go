// Package encodings provides the wire identifiers for RFB rectangle
// encodings and pseudo-encodings.
// https://tools.ietf.org/html/rfc6143#section-7.7
package encodings

import "strconv"

// Type represents a known RFB encoding or pseudo-encoding type, sent as a
// signed 32-bit integer in SetEncodings and rectangle headers.
type Type int32

const (
	Raw      Type = 0
	CopyRect Type = 1
	RRE      Type = 2
	CoRRE    Type = 4
	Hextile  Type = 5
	Zlib     Type = 6
	Tight    Type = 7
	ZlibHex  Type = 8
	TRLE     Type = 15
	ZRLE     Type = 16
	Hitachi  Type = 17

	// Pseudo-encodings: never sent as a rectangle's own encoding, only
	// advertised in SetEncodings to negotiate optional behavior, or
	// (Cursor, DesktopSize, ExtendedDesktopSize, LastRect) used as the
	// encoding field of a rectangle that carries no pixel data.
	CursorPseudo              Type = -239
	DesktopSizePseudo         Type = -223
	LastRectPseudo            Type = -224
	ExtendedDesktopSizePseudo Type = -308
	DesktopNamePseudo         Type = -307
	FencePseudo               Type = -312
	ContinuousUpdatesPseudo   Type = -313
	ExtendedClipboardPseudo   Type = -1101
)

// Name returns a short identifier for logging, falling back to a numeric
// rendering for anything not in the known table.
func (t Type) Name() string {
	if n, ok := names[t]; ok {
		return n
	}
	return strconv.Itoa(int(t))
}

var names = map[Type]string{
	Raw:                       "Raw",
	CopyRect:                  "CopyRect",
	RRE:                       "RRE",
	CoRRE:                     "CoRRE",
	Hextile:                   "Hextile",
	Zlib:                      "Zlib",
	Tight:                     "Tight",
	ZlibHex:                   "ZlibHex",
	TRLE:                      "TRLE",
	ZRLE:                      "ZRLE",
	Hitachi:                   "Hitachi",
	CursorPseudo:              "CursorPseudo",
	DesktopSizePseudo:         "DesktopSizePseudo",
	LastRectPseudo:            "LastRectPseudo",
	ExtendedDesktopSizePseudo: "ExtendedDesktopSizePseudo",
	DesktopNamePseudo:         "DesktopNamePseudo",
	FencePseudo:               "FencePseudo",
	ContinuousUpdatesPseudo:   "ContinuousUpdatesPseudo",
	ExtendedClipboardPseudo:   "ExtendedClipboardPseudo",
}
