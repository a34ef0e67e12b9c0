// Package logging builds the process logger.
package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// Options configures New.
type Options struct {
	Level      slog.Level
	Production bool
}

// New returns a JSON logger in production and a colorized console logger
// otherwise.
func New(w io.Writer, opts Options) *slog.Logger {
	if opts.Production {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: opts.Level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      opts.Level,
		TimeFormat: time.Kitchen,
	}))
}

// Init builds a logger with New and installs it as the slog default.
func Init(w io.Writer, opts Options) *slog.Logger {
	logger := New(w, opts)
	slog.SetDefault(logger)
	return logger
}
