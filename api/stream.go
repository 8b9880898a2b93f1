// File: api/stream.go
// Package api defines the interface contracts shared across rhubarb-ws.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The protocol and session layers depend on these contracts instead of
// concrete socket types, so handshake and framing logic can be exercised
// against deterministic fakes without real networking.

package api

import (
	"errors"
	"net"
)

// Stream is a connected, bidirectional byte stream with a peer identity.
//
// Read and Write block; there are no deadlines at this layer. A peer that
// never sends can therefore hold its connection goroutine indefinitely —
// a documented denial-of-service exposure of the current design, accepted
// rather than mitigated.
type Stream interface {
	// Read fills buf with the next available bytes, blocking until at
	// least one byte arrives, the peer closes, or the stream fails.
	Read(buf []byte) (int, error)

	// Write sends buf in full.
	Write(buf []byte) (int, error)

	// PeerAddr reports the remote endpoint of the stream.
	PeerAddr() net.Addr

	// Shutdown abruptly tears down both directions of the stream.
	// Used when a handshake fails validation mid-flight.
	Shutdown() error

	// Close releases the stream. Idempotent.
	Close() error
}

// ErrStreamClosed reports use of a stream after teardown.
var ErrStreamClosed = errors.New("stream is closed")
