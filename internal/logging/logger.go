// Package logging configures zerolog. The terminal belongs to the UI, so logs
// go to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration
type Config struct {
	Level      zerolog.Level
	Format     string // "json" or "console"
	TimeFormat string
	// File is the log destination. Empty discards everything.
	File string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Level:      zerolog.InfoLevel,
		Format:     "console",
		TimeFormat: time.RFC3339,
	}
}

// ParseConfig builds a Config from the textual level and file path found in
// the config file.
func ParseConfig(level, file string) (Config, error) {
	cfg := DefaultConfig()
	cfg.File = file
	if level == "" {
		return cfg, nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return cfg, fmt.Errorf("parse log level: %w", err)
	}
	cfg.Level = lvl
	return cfg, nil
}

// New creates a logger writing to w.
func New(cfg Config, w io.Writer) zerolog.Logger {
	output := w
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: cfg.TimeFormat,
			NoColor:    true,
		}
	}

	return zerolog.New(output).
		Level(cfg.Level).
		With().
		Timestamp().
		Logger()
}

// Setup opens the log file and installs the logger as the global one. The
// returned closer flushes and closes the file.
func Setup(cfg Config) (io.Closer, error) {
	if cfg.File == "" {
		log.Logger = zerolog.Nop()
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0750); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	log.Logger = New(cfg, f)
	zerolog.SetGlobalLevel(cfg.Level)
	return f, nil
}
