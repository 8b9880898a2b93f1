// File: client/client.go
// Package client implements the rhubarb handshake client.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Dials a server, performs the opening handshake, and exchanges bytes
// afterward. The response is consumed in a single blocking read — a
// deliberate simplification, not a general HTTP client.

package client

import (
	"crypto/rand"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/momentics/rhubarb-ws/api"
	"github.com/momentics/rhubarb-ws/pool"
	"github.com/momentics/rhubarb-ws/protocol"
	"github.com/momentics/rhubarb-ws/transport"
)

// Client is one outbound rhubarb connection.
type Client struct {
	stream  api.Stream
	log     zerolog.Logger
	buffers *pool.BytePool
}

// Dial opens a TCP stream to addr. Transport failures surface as-is.
func Dial(addr string) (*Client, error) {
	stream, err := transport.Dial(addr)
	if err != nil {
		return nil, err
	}
	return NewFromStream(stream, log.Logger), nil
}

// NewFromStream builds a client over an already-connected stream; tests
// substitute a fake peer here.
func NewFromStream(stream api.Stream, logger zerolog.Logger) *Client {
	return &Client{
		stream:  stream,
		log:     logger.With().Str("peer", stream.PeerAddr().String()).Logger(),
		buffers: pool.NewBytePool(pool.DefaultBufferSize),
	}
}

// PerformHandshake runs the opening handshake for path. A fresh key is
// generated per attempt and never reused. Any validation failure tears
// the stream down in both directions and returns a descriptive error;
// on success the stream stays open for frame traffic.
func (c *Client) PerformHandshake(path string) error {
	c.log.Info().Str("path", path).Msg("performing handshake")

	request, key, err := protocol.BuildHandshakeRequest(path, c.stream.PeerAddr().String())
	if err != nil {
		return err
	}
	if _, err := c.stream.Write([]byte(request)); err != nil {
		return fmt.Errorf("handshake write: %w", err)
	}

	// The design assumes the full response arrives in one read.
	buf := c.buffers.GetBuffer()
	defer c.buffers.PutBuffer(buf)
	n, err := c.stream.Read(buf)
	if err != nil {
		return fmt.Errorf("handshake read: %w", err)
	}
	raw := buf[:n]

	if !utf8.Valid(raw) {
		_ = c.stream.Shutdown()
		return &protocol.EncodingError{Context: "handshake"}
	}

	c.log.Debug().Str("response", string(raw)).Msg("validating server handshake")

	if err := protocol.ValidateServerHandshake(string(raw), key); err != nil {
		_ = c.stream.Shutdown()
		return err
	}

	c.log.Info().Msg("handshake complete")
	return nil
}

// Send writes raw bytes to the established stream.
func (c *Client) Send(data []byte) error {
	_, err := c.stream.Write(data)
	return err
}

// SendFrame encodes and writes a single frame.
func (c *Client) SendFrame(f *protocol.Frame) error {
	wire, err := protocol.EncodeFrame(f)
	if err != nil {
		return err
	}
	_, err = c.stream.Write(wire)
	return err
}

// SendText sends one masked text frame, as client-originated frames must
// be masked on the wire.
func (c *Client) SendText(text string) error {
	key, err := newMaskKey()
	if err != nil {
		return err
	}
	return c.SendFrame(protocol.NewTextFrame(text, &key))
}

// Recv performs one blocking read and returns the bytes received. The
// bytes must be valid UTF-8; anything else tears the stream down and
// surfaces an EncodingError.
func (c *Client) Recv() ([]byte, error) {
	buf := c.buffers.GetBuffer()
	defer c.buffers.PutBuffer(buf)
	n, err := c.stream.Read(buf)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(buf[:n]) {
		_ = c.stream.Shutdown()
		return nil, &protocol.EncodingError{Context: "message"}
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return out, nil
}

// Close releases the underlying stream.
func (c *Client) Close() error {
	return c.stream.Close()
}

// newMaskKey draws 4 random bytes for a per-frame mask.
func newMaskKey() ([4]byte, error) {
	var key [4]byte
	if _, err := rand.Read(key[:]); err != nil {
		return key, fmt.Errorf("mask key generation: %w", err)
	}
	return key, nil
}
