// File: server/options.go
// Package server defines functional options for the Listener.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"github.com/rs/zerolog"

	"github.com/momentics/rhubarb-ws/pool"
)

// Option customizes listener initialization.
type Option func(*Listener)

// WithLogger replaces the default global logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Listener) {
		l.log = logger
	}
}

// WithBufferPool shares an existing buffer pool across listeners.
func WithBufferPool(buffers *pool.BytePool) Option {
	return func(l *Listener) {
		l.buffers = buffers
	}
}
