// Package logging builds the zerolog loggers used across medclarify.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLevel  = "MEDCLARIFY_LOG_LEVEL"
	EnvFormat = "MEDCLARIFY_LOG_FORMAT"
	EnvFile   = "MEDCLARIFY_LOG_FILE"
)

// Options holds logger configuration.
type Options struct {
	Level     string
	Format    string // json or console
	Output    io.Writer
	Component string
}

// New creates a logger with the given options. An unknown level falls back
// to warn so a typo never floods the terminal.
func New(opts Options) zerolog.Logger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	var zl zerolog.Logger
	if opts.Format == "console" {
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		})
	} else {
		zl = zerolog.New(output)
	}

	ctx := zl.Level(ParseLevel(opts.Level)).With().Timestamp()
	if opts.Component != "" {
		ctx = ctx.Str("component", opts.Component)
	}
	return ctx.Logger()
}

// ParseLevel maps a level name onto a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

// FromEnv builds the application logger from MEDCLARIFY_LOG_* variables.
// When MEDCLARIFY_LOG_FILE is set the log goes to that file so that terminal
// UIs are not disturbed; the returned closer must be called on exit.
func FromEnv() (zerolog.Logger, io.Closer, error) {
	opts := Options{
		Level:     os.Getenv(EnvLevel),
		Format:    os.Getenv(EnvFormat),
		Component: "medclarify",
	}

	path := os.Getenv(EnvFile)
	if path == "" {
		if opts.Format == "" {
			opts.Format = "console"
		}
		return New(opts), nopCloser{}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to open log file: %w", err)
	}
	opts.Output = f
	return New(opts), f, nil
}

// Module returns a child logger tagged with the package that owns it.
func Module(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("module", name).Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
