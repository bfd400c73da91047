// Package logging configures the structured logger shared by formwire's packages.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger wraps a charmbracelet logger.
type Logger struct {
	*log.Logger
}

// New returns a logger writing to w at the named level
// (debug, info, warn or error). Debug output includes timestamps and callers.
func New(w io.Writer, level string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := log.Options{Prefix: "formwire", Level: lvl}
	if lvl == log.DebugLevel {
		opts.ReportTimestamp = true
		opts.ReportCaller = true
	}
	return &Logger{Logger: log.NewWithOptions(w, opts)}, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: log.New(io.Discard)}
}

// ParseLevel maps a level name to a log level. An empty name means info.
func ParseLevel(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return log.InfoLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}
