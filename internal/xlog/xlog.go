// Package xlog centralizes zerolog construction so every binary and
// library package in this module gets the same leveled, structured
// output instead of each configuring its own logger ad hoc.
package xlog

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger writing to w (os.Stderr if nil) at the
// given level name ("debug", "info", "warn", "error"; defaults to
// "info" on an unrecognized value).
func New(levelName string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := parseLevel(levelName)
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// NewConsole builds a human-readable console logger, useful for the
// cmd/ binaries' default interactive output.
func NewConsole(levelName string) zerolog.Logger {
	level := parseLevel(levelName)
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

func parseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
