// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Settings controls where and how much is logged
type Settings struct {
	Level      string // debug, info, warn, error, fatal
	Format     string // text or json
	File       string // optional rotating log file
	WithCaller bool
	// Quiet drops the stderr writer, leaving only File. The chat TUI sets it
	// so log lines never land on the alt screen.
	Quiet bool
}

// Init replaces the global logger according to s. Unknown levels are an
// error and leave the logger untouched.
func Init(s Settings) error {
	level, err := ParseLevel(s.Level)
	if err != nil {
		return err
	}

	var writers []io.Writer

	if !s.Quiet {
		if s.Format == "json" {
			writers = append(writers, os.Stderr)
		} else {
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr})
		}
	}

	if s.File != "" {
		writers = append(writers, zerolog.ConsoleWriter{
			NoColor: true,
			Out: &lumberjack.Logger{
				Filename:   s.File,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
			},
		})
	}

	var w io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		w = writers[0]
	default:
		w = io.MultiWriter(writers...)
	}

	logger := zerolog.New(w).With().Timestamp().Logger()
	if s.WithCaller {
		logger = logger.With().Caller().Logger()
	}
	log.Logger = logger

	zerolog.SetGlobalLevel(level)
	return nil
}

// ParseLevel maps a level name to a zerolog level. Empty means info.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "log level %q", level)
	}
	return l, nil
}
