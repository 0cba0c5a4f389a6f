package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger builds the process logger from the logging settings and installs
// it as the global zerolog logger. Unknown or empty levels fall back to info.
func (c LoggingConfig) NewLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	logger := zerolog.New(c.output()).
		Level(c.level()).
		With().
		Timestamp().
		Logger()
	log.Logger = logger
	return logger
}

func (c LoggingConfig) level() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Level))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// output returns a human-readable console writer when LOG_FORMAT=console;
// everything else logs JSON to stdout.
func (c LoggingConfig) output() io.Writer {
	if strings.EqualFold(c.Format, "console") {
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return os.Stdout
}
