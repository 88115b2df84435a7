package config

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the root logger: JSON to stdout, or a console writer in development.
// An unknown level falls back to info.
func (c Config) NewLogger() zerolog.Logger {
	return newLogger(os.Stdout, c.LogLevel, c.IsDevelopment())
}

func newLogger(out io.Writer, level string, development bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if development {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
