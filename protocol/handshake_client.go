// File: protocol/handshake_client.go
// Package protocol implements client-side opening-handshake logic.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

import (
	"fmt"
	"strings"
)

// BuildHandshakeRequest formats the opening-handshake request for path
// against host, using a freshly generated key. The request carries the
// fixed rhubarb subprotocol token; no wider negotiation is attempted.
// Returns the request text and the key, which the caller must retain to
// validate the server's Sec-WebSocket-Accept.
func BuildHandshakeRequest(path, host string) (request, key string, err error) {
	key, err = GenerateClientKey()
	if err != nil {
		return "", "", fmt.Errorf("handshake key generation: %w", err)
	}
	request = fmt.Sprintf("GET %s HTTP/1.1\r\n"+
		"Host: %s\r\n"+
		"Upgrade: websocket\r\n"+
		"Connection: Upgrade\r\n"+
		"Sec-WebSocket-Key: %s\r\n"+
		"Sec-WebSocket-Protocol: %s\r\n"+
		"Sec-WebSocket-Version: %s\r\n\r\n",
		path, host, key, Subprotocol, RequiredWebSocketVersion)
	return request, key, nil
}

// ValidateServerHandshake checks the server's response to an opening
// handshake sent with key. Validation order is fixed: status code
// exactly 101, Upgrade, Connection, then the accept key derivation.
func ValidateServerHandshake(response, key string) error {
	statusLine, headerLines := splitHandshake(response)
	if statusLine == "" {
		return &ProtocolError{Reason: "Handshake is not a valid HTTP response"}
	}

	// Status line: version, code, reason phrase. Only the code matters.
	parts := strings.Fields(statusLine)
	if len(parts) < 2 {
		return &ProtocolError{Reason: "Missing response code"}
	}
	if parts[1] != "101" {
		return &ProtocolError{Reason: fmt.Sprintf("Invalid response code %s", parts[1])}
	}

	headers := parseHeaderBlock(headerLines)

	upgrade, ok := headers[HeaderUpgrade]
	switch {
	case !ok:
		return &ProtocolError{Reason: "Handshake missing Upgrade header"}
	case !strings.EqualFold(upgrade, "websocket"):
		return &ProtocolError{Reason: "Requested Upgrade was not 'websocket'"}
	}

	connection, ok := headers[HeaderConnection]
	switch {
	case !ok:
		return &ProtocolError{Reason: "Handshake missing Connection header"}
	case !strings.EqualFold(connection, "upgrade"):
		return &ProtocolError{Reason: "Requested Connection was not 'upgrade'"}
	}

	accept, ok := headers[HeaderSecWebSocketAcc]
	if !ok {
		return &ProtocolError{Reason: "Handshake missing Sec-WebSocket-Accept header"}
	}
	if accept != AcceptKey(key) {
		return &ProtocolError{Reason: "Server key invalid"}
	}

	return nil
}
