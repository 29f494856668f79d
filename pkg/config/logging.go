package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process logger from logging config.
//
// The returned closer releases the log file when Output is a path; for
// stdout/stderr it is a no-op. Loggers are passed explicitly into every
// constructor that wants one — nothing in the tree reads slog.Default.
func NewLogger(cfg LoggingConfig) (*slog.Logger, func() error, error) {
	var level slog.Level
	switch cfg.Level {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		return nil, nil, fmt.Errorf("unknown log level %q", cfg.Level)
	}

	var out io.Writer
	closer := func() error { return nil }
	switch cfg.Output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log output %s: %w", cfg.Output, err)
		}
		out = f
		closer = f.Close
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler), closer, nil
}
