// File: server/server.go
// Package server implements the accept loop dispatching connection
// sessions.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// One goroutine per accepted connection, each running a session to
// completion over blocking I/O. The accept loop performs no per-
// connection protocol work, so a slow or malicious peer's handshake can
// never stall it.

package server

import (
	"errors"
	"net"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/momentics/rhubarb-ws/internal/session"
	"github.com/momentics/rhubarb-ws/pool"
	"github.com/momentics/rhubarb-ws/transport"
)

// Listener accepts connections and hands each one to an independent
// session goroutine.
type Listener struct {
	cfg     *Config
	log     zerolog.Logger
	ln      net.Listener
	host    string
	buffers *pool.BytePool

	stopOnce sync.Once
}

// New binds the configured address and prepares the accept loop.
func New(cfg *Config, opts ...Option) (*Listener, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	ln, err := transport.Listen(cfg.ListenAddr)
	if err != nil {
		return nil, err
	}

	l := &Listener{
		cfg: cfg,
		log: log.Logger,
		ln:  ln,
	}
	for _, o := range opts {
		o(l)
	}
	if l.buffers == nil {
		l.buffers = pool.NewBytePool(cfg.BufferSize)
	}

	l.host = cfg.Host
	if l.host == "" {
		l.host = ln.Addr().String()
	}
	return l, nil
}

// Addr reports the bound address, useful after a :0 bind.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Listen accepts connections until Shutdown. Each connection runs its
// session on its own goroutine; a session failure — malformed handshake
// included — never stops the loop or touches other sessions. Transient
// accept errors are logged and the loop continues.
func (l *Listener) Listen() error {
	l.log.Info().Str("addr", l.ln.Addr().String()).Msg("listening")

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			l.log.Warn().Err(err).Msg("accept failed")
			continue
		}

		stream := transport.NewTCPStream(conn.(*net.TCPConn))
		sess := session.New(stream, l.host, l.log, l.buffers)

		go func() {
			if err := sess.Run(); err != nil {
				l.log.Warn().Err(err).Msg("session ended with error")
			}
		}()
	}
}

// Shutdown stops accepting. In-flight sessions keep running until their
// peers disconnect; there is no per-connection cancellation signal in
// this design. Idempotent.
func (l *Listener) Shutdown() error {
	var err error
	l.stopOnce.Do(func() {
		err = l.ln.Close()
	})
	return err
}
