// Package logging provides structured logging with zerolog.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	TimeFormat string // RFC3339, Unix, etc.
}

// DefaultConfig returns sensible default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "json",
		TimeFormat: time.RFC3339,
	}
}

// Init initializes the global zerolog logger.
func Init(cfg Config) {
	zerolog.TimeFieldFormat = cfg.TimeFormat

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer = os.Stdout
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.Kitchen,
		}
	}

	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Logger()
}

// Logger returns a new logger with common fields for the service.
func Logger() zerolog.Logger {
	return log.Logger
}

// WithCall returns a logger with call correlation context.
func WithCall(callID string) zerolog.Logger {
	return log.With().
		Str("callId", callID).
		Logger()
}

// WithSession returns a logger with speech session context.
func WithSession(name, provider string) zerolog.Logger {
	return log.With().
		Str("session", name).
		Str("speechProvider", provider).
		Logger()
}

// WithSubscription returns a logger with subscription context.
func WithSubscription(subscription string) zerolog.Logger {
	return log.With().
		Str("subscription", subscription).
		Logger()
}

// WithDimension returns a logger with scoring dimension context.
func WithDimension(subscription, dimension string) zerolog.Logger {
	return log.With().
		Str("subscription", subscription).
		Str("dimension", dimension).
		Logger()
}

// WithComponent returns a logger with a component tag.
func WithComponent(component string) zerolog.Logger {
	return log.With().
		Str("component", component).
		Logger()
}
