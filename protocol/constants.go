// File: protocol/constants.go
// Package protocol wire constants shared by the handshake and the frame
// codec.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

// Handshake constants.
const (
	// WebSocketGUID is the magic string appended to the client key
	// before hashing for Sec-WebSocket-Accept.
	WebSocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

	// Subprotocol is the application subprotocol token offered on every
	// client handshake.
	Subprotocol = "rhubarb"

	// RequiredWebSocketVersion is the only Sec-WebSocket-Version value
	// accepted.
	RequiredWebSocketVersion = "13"

	// ClientKeyLength is the character length of a valid client key:
	// 16 random bytes, base64-encoded.
	ClientKeyLength = 24
)

// Header names, lower-cased the way parseHeaderBlock stores them.
const (
	HeaderHost            = "host"
	HeaderUpgrade         = "upgrade"
	HeaderConnection      = "connection"
	HeaderSecWebSocketKey = "sec-websocket-key"
	HeaderSecWebSocketVer = "sec-websocket-version"
	HeaderSecWebSocketAcc = "sec-websocket-accept"
)

// Frame layout constants.
const (
	// FinBit flags the final frame of a message in byte 0.
	FinBit = 0x80

	// MaskBit flags a masked payload in byte 1.
	MaskBit = 0x80

	// Len16Bit and Len64Bit are the 7-bit length values selecting the
	// 16-bit and 64-bit extended payload length encodings.
	Len16Bit = 126
	Len64Bit = 127

	// MaxFrameHeaderLen is the largest possible frame header: 2 fixed
	// bytes, an 8-byte extended length, and a 4-byte mask key.
	MaxFrameHeaderLen = 14
)

// Close codes carried in the first two bytes of a close frame payload.
const (
	CloseNormalClosure   = 1000
	CloseGoingAway       = 1001
	CloseProtocolError   = 1002
	CloseUnsupportedData = 1003
	CloseAbnormalClosure = 1006
	CloseMessageTooBig   = 1009
)
