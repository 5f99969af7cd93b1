// Package rfbproto holds the wire constants and message-header shapes
// shared by the handshake and message-dispatch halves of a session,
// grounded on the client-side message structs in
// other_examples' stanliski-go-vnc server.go (ServerMessage/Rectangle/
// FramebufferUpdate) turned into the server-write direction, and on
// bigangryrobot-go-vnc/vncclient.go's handshake stage sequence turned
// into the server side of the same states.
package rfbproto

// ProtocolVersion is the 12-byte version string this server speaks.
const ProtocolVersion = "RFB 003.008\n"

// Security types (u8), §6.1 / RFC 6143 §7.1.2.
const (
	SecTypeInvalid  = 0
	SecTypeNone     = 1
	SecTypeVncAuth  = 2
	SecTypeVeNCrypt = 19
)

// VeNCrypt sub-types (u32), negotiated after SecTypeVeNCrypt is chosen.
const (
	VeNCryptPlain     = 256
	VeNCryptTLSNone   = 257
	VeNCryptTLSVnc    = 258
	VeNCryptTLSPlain  = 259
	VeNCryptX509None  = 260
	VeNCryptX509Vnc   = 261
	VeNCryptX509Plain = 262
)

// SecurityResult values following authentication.
const (
	SecurityResultOK     = 0
	SecurityResultFailed = 1
)

// Client-to-server message IDs, §4.G.2.
const (
	ClientMsgSetPixelFormat           = 0
	ClientMsgSetEncodings             = 2
	ClientMsgFramebufferUpdateRequest = 3
	ClientMsgKeyEvent                 = 4
	ClientMsgPointerEvent             = 5
	ClientMsgClientCutText            = 6
	ClientMsgSetDesktopSize           = 251
	ClientMsgEnableContinuousUpdates  = 150
)

// Server-to-client message IDs.
const (
	ServerMsgFramebufferUpdate      = 0
	ServerMsgSetColourMapEntries    = 1
	ServerMsgBell                   = 2
	ServerMsgServerCutText          = 3
	ServerMsgEndOfContinuousUpdates = 150
	ServerMsgServerFence            = 248
)

// LastRectSentinel, written in place of num_rects when the encoder does
// not know the rectangle count up front; terminated by a rectangle
// carrying the LastRect pseudo-encoding.
const LastRectSentinel = 0xFFFF

// RectangleHeader is the fixed 12-byte prefix of every rectangle in a
// FramebufferUpdate: x, y, width, height, then a signed 32-bit encoding
// id (negative for pseudo-encodings).
type RectangleHeader struct {
	X, Y, Width, Height uint16
	EncodingID          int32
}

// ExtendedClipboard capability/format flags, used in the 4-byte flags
// word of extended ClientCutText/ServerCutText messages.
const (
	ExtClipCapsFlag    uint32 = 1 << 24
	ExtClipRequestFlag uint32 = 1 << 25
	ExtClipPeekFlag    uint32 = 1 << 26
	ExtClipNotifyFlag  uint32 = 1 << 27
	ExtClipProvideFlag uint32 = 1 << 28

	ExtClipFormatText uint32 = 1 << 0
)
