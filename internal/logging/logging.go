// Package logging builds the charmbracelet/log loggers used across the
// tool.
package logging

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Field names for structured log lines.
const (
	FieldPath       = "path"
	FieldPatterns   = "patterns"
	FieldClasses    = "classes"
	FieldCases      = "cases"
	FieldComplaints = "complaints"
	FieldRules      = "rules"
	FieldJobs       = "jobs"
	FieldLanguage   = "language"
)

// New creates a logger writing to w without timestamps. Valid levels
// are debug, info, warn and error; "warning" is accepted for warn.
func New(w io.Writer, level string) (*log.Logger, error) {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})

	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(lvl)
	return logger, nil
}

// ParseLevel converts a level name to a log.Level. The empty string is
// info.
func ParseLevel(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return log.InfoLevel, fmt.Errorf("unknown log level %q", level)
}

type contextKey struct{}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored in ctx, or a logger that
// discards everything.
func FromContext(ctx context.Context) *log.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*log.Logger); ok && logger != nil {
		return logger
	}
	return log.New(io.Discard)
}
