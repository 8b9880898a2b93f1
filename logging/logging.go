// File: logging/logging.go
// Package logging configures the process-wide leveled log sink.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// zerolog console output with the level taken from the environment.
// zerolog writes each event atomically, so connection goroutines may log
// concurrently without torn lines.

package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvLogLevel selects the minimum level: debug, info, warn or error.
const EnvLogLevel = "RHUBARB_LOG_LEVEL"

// New builds the application logger and installs it as the global sink.
func New(app string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).
		Level(levelFromEnv()).
		With().Timestamp().Str("app", app).
		Logger()
	log.Logger = logger
	return logger
}

func levelFromEnv() zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogLevel))) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
