// File: internal/session/session.go
// Package session
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// One accepted connection end to end: server-side opening handshake,
// then the established data loop. A session owns its stream exclusively
// and shares nothing with other sessions except the log sink.

package session

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"unicode/utf8"

	"github.com/eapache/queue"
	"github.com/rs/zerolog"

	"github.com/momentics/rhubarb-ws/api"
	"github.com/momentics/rhubarb-ws/pool"
	"github.com/momentics/rhubarb-ws/protocol"
)

// State is the connection lifecycle position. Transitions run strictly
// forward; Closed is terminal.
type State int32

const (
	StateAccepted State = iota
	StateHandshaking
	StateEstablished
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAccepted:
		return "accepted"
	case StateHandshaking:
		return "handshaking"
	case StateEstablished:
		return "established"
	default:
		return "closed"
	}
}

// Session drives one accepted connection to completion.
type Session struct {
	stream  api.Stream
	host    string
	log     zerolog.Logger
	buffers *pool.BytePool

	mu     sync.Mutex
	cond   *sync.Cond
	outbox *queue.Queue
	done   bool
	state  State

	writerWG  sync.WaitGroup
	closeOnce sync.Once
}

// New prepares a session for an accepted stream. host is the server's
// own bound address, matched against the peer's Host header.
func New(stream api.Stream, host string, logger zerolog.Logger, buffers *pool.BytePool) *Session {
	if buffers == nil {
		buffers = pool.NewBytePool(pool.DefaultBufferSize)
	}
	s := &Session{
		stream:  stream,
		host:    host,
		log:     logger.With().Str("peer", stream.PeerAddr().String()).Logger(),
		buffers: buffers,
		outbox:  queue.New(),
		state:   StateAccepted,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// State reports the current lifecycle position.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
}

// Run performs the handshake and, on success, the established data loop.
// It returns when the peer disconnects or the first unrecoverable error
// occurs; the stream is torn down in every path. A failure here is local
// to this session by construction.
func (s *Session) Run() error {
	defer s.close()

	if err := s.handshake(); err != nil {
		s.setState(StateClosed)
		return err
	}

	s.setState(StateEstablished)
	err := s.echoLoop()
	s.setState(StateClosed)
	return err
}

// handshake reads the opening request, validates it against the bound
// host, and answers 101 or 400. There is no read deadline: a silent peer
// holds this goroutine, which is the documented exposure of the design.
func (s *Session) handshake() error {
	s.setState(StateHandshaking)

	buf := s.buffers.GetBuffer()
	defer s.buffers.PutBuffer(buf)

	n, err := s.stream.Read(buf)
	if err != nil {
		return fmt.Errorf("handshake read: %w", err)
	}
	raw := buf[:n]

	if !utf8.Valid(raw) {
		encErr := &protocol.EncodingError{Context: "handshake"}
		s.log.Warn().Msg(encErr.Error())
		_ = s.stream.Shutdown()
		return encErr
	}

	s.log.Debug().Str("request", string(raw)).Msg("validating handshake")

	accept, err := protocol.ValidateHandshake(string(raw), s.host)
	if err != nil {
		var perr *protocol.ProtocolError
		if errors.As(err, &perr) {
			s.log.Warn().Str("reason", perr.Reason).Msg("handshake rejected")
			_, _ = s.stream.Write([]byte(protocol.BadRequestResponse(perr.Reason)))
		}
		_ = s.stream.Shutdown()
		return err
	}

	if _, err := s.stream.Write([]byte(protocol.SwitchingProtocolsResponse(accept))); err != nil {
		return fmt.Errorf("handshake response write: %w", err)
	}

	s.log.Info().Msg("handshake complete")
	return nil
}

// echoLoop reads text and echoes it back unchanged. Each read must be
// valid UTF-8; bytes that are not abort the connection with an
// EncodingError and are never echoed. Replacing this passthrough with a
// frame-aware loop over protocol.DecodeFrame, plus Close/Ping handling,
// is the next increment; it is not wired here.
//
// Writes drain through the outbox on a dedicated goroutine so a slow
// peer cannot stall the read side.
func (s *Session) echoLoop() error {
	s.writerWG.Add(1)
	go s.writeLoop()
	defer func() {
		s.finishOutbox()
		s.writerWG.Wait()
	}()

	for {
		buf := s.buffers.GetBuffer()
		n, err := s.stream.Read(buf)
		if n > 0 {
			if !utf8.Valid(buf[:n]) {
				s.buffers.PutBuffer(buf)
				encErr := &protocol.EncodingError{Context: "message"}
				s.log.Warn().Msg(encErr.Error())
				_ = s.stream.Shutdown()
				return encErr
			}
			msg := make([]byte, n)
			copy(msg, buf[:n])
			s.log.Debug().Int("bytes", n).Msg("echoing")
			s.enqueue(msg)
		}
		s.buffers.PutBuffer(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Info().Msg("peer disconnected")
				return nil
			}
			return fmt.Errorf("session read: %w", err)
		}
	}
}

func (s *Session) enqueue(msg []byte) {
	s.mu.Lock()
	s.outbox.Add(msg)
	s.mu.Unlock()
	s.cond.Signal()
}

func (s *Session) finishOutbox() {
	s.mu.Lock()
	s.done = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

// writeLoop drains the outbox until the session finishes. A write error
// ends the loop; the read side then observes the broken stream.
func (s *Session) writeLoop() {
	defer s.writerWG.Done()
	for {
		s.mu.Lock()
		for s.outbox.Length() == 0 && !s.done {
			s.cond.Wait()
		}
		if s.outbox.Length() == 0 && s.done {
			s.mu.Unlock()
			return
		}
		msg := s.outbox.Remove().([]byte)
		s.mu.Unlock()

		if _, err := s.stream.Write(msg); err != nil {
			s.log.Warn().Err(err).Msg("echo write failed")
			return
		}
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		_ = s.stream.Close()
	})
}
