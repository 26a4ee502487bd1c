// Package logger configures the structured logger shared by the API and dev tools.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level   string    // "debug", "info", ...; invalid or empty means info
	Output  io.Writer // defaults to os.Stdout
	Service string
	Pretty  bool // human-readable console output for local dev
}

// New builds a logger from cfg. It leaves zerolog's process-wide settings alone;
// binaries set zerolog.TimeFieldFormat once at startup.
func New(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil && parsed != zerolog.NoLevel {
			level = parsed
		}
	}

	w := cfg.Output
	if w == nil {
		w = os.Stdout
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	service := cfg.Service
	if service == "" {
		service = "carwash"
	}

	return zerolog.New(w).Level(level).With().
		Timestamp().
		Str("service", service).
		Logger()
}

// WithComponent returns a child logger annotated with the component name.
func WithComponent(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}
