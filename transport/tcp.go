// File: transport/tcp.go
// Package transport provides the TCP realization of the api.Stream
// capability used by the handshake and session layers.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"context"
	"fmt"
	"net"

	"github.com/momentics/rhubarb-ws/api"
)

// TCPStream adapts a net.TCPConn to api.Stream.
type TCPStream struct {
	conn *net.TCPConn
}

var _ api.Stream = (*TCPStream)(nil)

// NewTCPStream wraps an accepted or dialed TCP connection.
func NewTCPStream(conn *net.TCPConn) *TCPStream {
	return &TCPStream{conn: conn}
}

func (s *TCPStream) Read(buf []byte) (int, error) {
	return s.conn.Read(buf)
}

func (s *TCPStream) Write(buf []byte) (int, error) {
	return s.conn.Write(buf)
}

// PeerAddr reports the remote endpoint.
func (s *TCPStream) PeerAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// Shutdown tears down both directions without the usual FIN handshake
// niceties; used when a handshake fails validation.
func (s *TCPStream) Shutdown() error {
	if err := s.conn.CloseRead(); err != nil {
		return err
	}
	return s.conn.CloseWrite()
}

func (s *TCPStream) Close() error {
	return s.conn.Close()
}

// Dial connects to addr and returns the stream.
func Dial(addr string) (*TCPStream, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport dial %s: %w", addr, err)
	}
	return NewTCPStream(conn.(*net.TCPConn)), nil
}

// Listen binds addr with SO_REUSEADDR applied where the platform
// supports it, so restarts do not trip over sockets in TIME_WAIT.
func Listen(addr string) (net.Listener, error) {
	lc := net.ListenConfig{Control: reuseAddrControl}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport listen %s: %w", addr, err)
	}
	return ln, nil
}
