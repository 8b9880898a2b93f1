// File: protocol/handshake_server.go
// Package protocol implements server-side opening-handshake validation.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidateHandshake checks an inbound opening-handshake request against
// server policy and returns the Sec-WebSocket-Accept value to respond
// with. On failure the returned *ProtocolError carries the reason to be
// used verbatim as the 400 Bad Request body.
//
// Validation order is fixed: request line (method, URI token, HTTP
// version), then Host, Upgrade, Connection, Sec-WebSocket-Version — the
// version is checked before the key so an unsupported peer is rejected
// without hashing — and finally Sec-WebSocket-Key.
func ValidateHandshake(raw, expectedHost string) (string, error) {
	requestLine, headerLines := splitHandshake(raw)
	if requestLine == "" {
		return "", &ProtocolError{Reason: "Handshake is not a valid HTTP request"}
	}

	parts := strings.Fields(requestLine)

	if len(parts) < 1 || parts[0] != "GET" {
		return "", &ProtocolError{Reason: "Handshake is not a GET Request"}
	}
	if len(parts) < 2 {
		return "", &ProtocolError{Reason: "Handshake contains invalid URI resource"}
	}
	// The URI token itself is opaque at this layer.
	if len(parts) < 3 || !validHTTPVersion(parts[2]) {
		return "", &ProtocolError{Reason: "Handshake is using an invalid HTTP version, must be HTTP/1.1 or higher"}
	}

	headers := parseHeaderBlock(headerLines)

	host, ok := headers[HeaderHost]
	switch {
	case !ok:
		return "", &ProtocolError{Reason: "Handshake missing Host header"}
	case host != expectedHost:
		return "", &ProtocolError{Reason: "Invalid hostname"}
	}

	upgrade, ok := headers[HeaderUpgrade]
	switch {
	case !ok:
		return "", &ProtocolError{Reason: "Handshake missing Upgrade header"}
	case !strings.EqualFold(upgrade, "websocket"):
		return "", &ProtocolError{Reason: "Requested Upgrade was not 'websocket'"}
	}

	connection, ok := headers[HeaderConnection]
	switch {
	case !ok:
		return "", &ProtocolError{Reason: "Handshake missing Connection header"}
	case !strings.EqualFold(connection, "upgrade"):
		return "", &ProtocolError{Reason: "Requested Connection was not 'upgrade'"}
	}

	version, ok := headers[HeaderSecWebSocketVer]
	switch {
	case !ok:
		return "", &ProtocolError{Reason: "Handshake missing Sec-WebSocket-Version header"}
	case version != RequiredWebSocketVersion:
		return "", &ProtocolError{Reason: "Requested Sec-WebSocket-Version was not '13'"}
	}

	key, ok := headers[HeaderSecWebSocketKey]
	if !ok {
		return "", &ProtocolError{Reason: "Handshake missing Sec-WebSocket-Key header"}
	}
	if utf8.RuneCountInString(key) != ClientKeyLength {
		return "", &ProtocolError{Reason: "Invalid Sec-WebSocket-Key"}
	}

	return AcceptKey(key), nil
}

// validHTTPVersion accepts HTTP/1.1 and the major versions above it.
func validHTTPVersion(token string) bool {
	name, version, ok := strings.Cut(token, "/")
	if !ok || name != "HTTP" {
		return false
	}
	switch version {
	case "1.1", "2", "3":
		return true
	}
	return false
}

// SwitchingProtocolsResponse renders the 101 response completing a
// successful server handshake.
func SwitchingProtocolsResponse(acceptKey string) string {
	return fmt.Sprintf("HTTP/1.1 101 Switching Protocols\r\n"+
		"Upgrade: websocket\r\n"+
		"Connection: Upgrade\r\n"+
		"Sec-WebSocket-Accept: %s\r\n\r\n", acceptKey)
}

// BadRequestResponse renders the 400 rejection carrying the validation
// failure reason as its body.
func BadRequestResponse(reason string) string {
	return "HTTP/1.1 400 Bad Request\r\n\r\n" + reason
}
