// Package logger configures the process-wide zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init sets the global level and output format ("json" or "console").
// Logs go to stderr so command output on stdout stays parseable.
func Init(level, format string) error {
	return InitWriter(os.Stderr, level, format)
}

func InitWriter(w io.Writer, level, format string) error {
	if level == "" {
		level = "info"
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	out := w
	switch strings.ToLower(format) {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	case "json":
	default:
		return fmt.Errorf("invalid log format '%s' (use json or console)", format)
	}

	Logger = zerolog.New(out).With().Timestamp().Logger()
	log.Logger = Logger
	return nil
}

// With returns a child logger tagged with the component name.
func With(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}
