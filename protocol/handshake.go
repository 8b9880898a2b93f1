// File: protocol/handshake.go
// Package protocol implements the shared opening-handshake logic.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Key derivation and header-block parsing common to both handshake
// directions. The server and client validators live in their own files.

package protocol

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"strings"
)

// ProtocolError is a handshake validation failure. Reason is a specific,
// stable message suitable for an HTTP 400 body; callers must not replace
// it with a generic description.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string { return e.Reason }

// EncodingError reports bytes that were claimed to be text but are not
// valid UTF-8.
type EncodingError struct {
	Context string
}

func (e *EncodingError) Error() string {
	return "failed to parse " + e.Context + " as utf8"
}

// AcceptKey derives the Sec-WebSocket-Accept value for a client key:
// base64 of the SHA1 of the key concatenated with the magic GUID. The
// derivation is versionless and byte-for-byte deterministic.
func AcceptKey(key string) string {
	sum := sha1.Sum([]byte(key + WebSocketGUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// GenerateClientKey returns a fresh handshake key: 16 cryptographically
// random bytes, base64-encoded to 24 ASCII characters. Keys are used
// once per handshake attempt and never persisted.
func GenerateClientKey() (string, error) {
	var nonce [16]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(nonce[:]), nil
}

// parseHeaderBlock collects header lines into a map keyed by the
// lower-cased header name with the value trimmed. When a name repeats,
// the last occurrence wins — the behavior peers are tested for
// compatibility against, even though RFC-correct handling would
// concatenate repeats.
func parseHeaderBlock(lines []string) map[string]string {
	headers := make(map[string]string, len(lines))
	for _, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}
	return headers
}

// splitHandshake separates a raw handshake block into its first line and
// the remaining header lines. Accepts CRLF or bare LF delimiters.
func splitHandshake(raw string) (first string, rest []string) {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	return strings.TrimSpace(lines[0]), lines[1:]
}
