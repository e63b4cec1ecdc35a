// Package logging builds the zerolog logger shared by the commands.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gsarma/samplefeed/internal/config"
)

// New creates a logger writing to w from cfg.
// Supports "trace" | "debug" | "info" | "warn" | "error" levels and
// "json" | "console" formats. Each verbose step lowers the level by one.
func New(w io.Writer, cfg config.LogConfig, verbose int) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	level -= zerolog.Level(verbose)
	if level < zerolog.TraceLevel {
		level = zerolog.TraceLevel
	}

	if w == nil {
		w = os.Stderr
	}
	if strings.ToLower(cfg.Format) == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
