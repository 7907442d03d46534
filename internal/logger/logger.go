// Package logger builds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"what-to-watch/internal/config"
)

// New returns a JSON logger, or a console logger when cfg.Log.Pretty is set.
// It also becomes the fallback for zerolog.Ctx on contexts without a logger.
func New(cfg *config.Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

func NewWithWriter(cfg *config.Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.Log.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.App.Name).
		Str("env", cfg.App.Env).
		Logger()

	zerolog.DefaultContextLogger = &logger
	return logger
}
