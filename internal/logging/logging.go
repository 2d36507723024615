// Package logging provides structured logging setup for gatepass.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup initializes the global zerolog logger on stderr and returns it.
// Dev mode uses the human-readable console writer at debug level; prod
// emits JSON at info level.
func Setup(devMode bool) zerolog.Logger {
	logger := New(os.Stderr, devMode)
	log.Logger = logger
	return logger
}

// New builds a logger writing to w with the same options Setup uses.
func New(w io.Writer, devMode bool) zerolog.Logger {
	if devMode {
		output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		return zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}
	return zerolog.New(w).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}
