// Package fake
// Author: momentics <momentics@gmail.com>
//
// Deterministic api.Stream double for handshake and session tests.
// Reads are scripted, writes are captured, and the peer address is
// fixed, so protocol logic runs without real networking.

package fake

import (
	"io"
	"net"
	"sync"

	"github.com/momentics/rhubarb-ws/api"
)

// Stream is a scripted in-memory implementation of api.Stream.
type Stream struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pending  [][]byte
	written  [][]byte
	closed   bool
	readErr  error
	writeErr error

	// OnWrite, when set, observes every write while the lock is not
	// held. Tests use it to script a response to a captured request.
	OnWrite func(buf []byte)

	peer net.Addr
}

var _ api.Stream = (*Stream)(nil)

// NewStream returns a fake stream with a fixed loopback peer.
func NewStream() *Stream {
	s := &Stream{
		peer: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4024},
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Read pops the next scripted chunk, blocking until one arrives or the
// stream closes. A closed, drained stream reads io.EOF, matching a peer
// disconnect.
func (s *Stream) Read(buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.pending) == 0 {
		if s.readErr != nil {
			return 0, s.readErr
		}
		if s.closed {
			return 0, io.EOF
		}
		s.cond.Wait()
	}
	chunk := s.pending[0]
	n := copy(buf, chunk)
	if n < len(chunk) {
		s.pending[0] = chunk[n:]
	} else {
		s.pending = s.pending[1:]
	}
	return n, nil
}

// Write captures buf and notifies the OnWrite hook.
func (s *Stream) Write(buf []byte) (int, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, api.ErrStreamClosed
	}
	if s.writeErr != nil {
		err := s.writeErr
		s.mu.Unlock()
		return 0, err
	}
	cp := make([]byte, len(buf))
	copy(cp, buf)
	s.written = append(s.written, cp)
	hook := s.OnWrite
	s.mu.Unlock()

	if hook != nil {
		hook(cp)
	}
	return len(buf), nil
}

// PeerAddr reports the fixed fake peer.
func (s *Stream) PeerAddr() net.Addr {
	return s.peer
}

// Shutdown behaves like Close for the fake.
func (s *Stream) Shutdown() error {
	return s.Close()
}

// Close marks the stream closed and wakes blocked readers. Idempotent.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cond.Broadcast()
	return nil
}

// Closed reports whether Close or Shutdown has been called.
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// QueueRead schedules data to be returned by a future Read.
func (s *Stream) QueueRead(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.pending = append(s.pending, cp)
	s.cond.Broadcast()
}

// SetReadError makes the next Read fail with err once the script drains.
func (s *Stream) SetReadError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
	s.cond.Broadcast()
}

// SetWriteError makes every Write fail with err.
func (s *Stream) SetWriteError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Written returns a copy of everything written so far.
func (s *Stream) Written() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.written))
	copy(out, s.written)
	return out
}
