// File: server/config.go
// Package server hosts the accept loop and its configuration.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/momentics/rhubarb-ws/pool"
)

// Config carries listener settings. Zero values fall back to defaults.
type Config struct {
	// ListenAddr is the TCP bind address.
	ListenAddr string

	// Host is the value inbound Host headers must equal. Empty means
	// "use the bound address", resolved after listen so a :0 bind still
	// validates correctly.
	Host string

	// BufferSize is the read buffer size handed out by the pool.
	BufferSize int
}

// DefaultConfig mirrors the historical rhubarb defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr: "127.0.0.1:4024",
		BufferSize: pool.DefaultBufferSize,
	}
}

type fileConfig struct {
	ListenAddr string `toml:"listen_addr"`
	Host       string `toml:"host"`
	BufferSize int    `toml:"buffer_size"`
}

// LoadConfig reads a TOML config file over the defaults. Only keys
// present in the file override.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load server config: %w", err)
	}

	if meta.IsDefined("listen_addr") {
		if addr := strings.TrimSpace(raw.ListenAddr); addr != "" {
			cfg.ListenAddr = addr
		}
	}
	if meta.IsDefined("host") {
		cfg.Host = strings.TrimSpace(raw.Host)
	}
	if meta.IsDefined("buffer_size") {
		if raw.BufferSize <= 0 {
			return nil, fmt.Errorf("load server config: buffer_size must be positive, got %d", raw.BufferSize)
		}
		cfg.BufferSize = raw.BufferSize
	}

	return cfg, nil
}
