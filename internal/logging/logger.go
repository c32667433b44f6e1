// Package logging builds the structured logger shared by every command.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Options selects the handler level and destination.
type Options struct {
	Level   string
	Quiet   bool
	Verbose bool
	Output  io.Writer
}

// ParseLevel maps a case-insensitive level name to a slog level.
func ParseLevel(raw string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Setup creates a text logger writing to opts.Output and installs it as the
// slog default. Quiet wins over Verbose; both win over Level. Quiet keeps
// warnings: stale or foreign Running entries must always be reported.
func Setup(opts Options) *slog.Logger {
	level, ok := ParseLevel(opts.Level)
	if !ok && opts.Level != "" && opts.Output != nil {
		slog.New(slog.NewTextHandler(opts.Output, nil)).Warn("invalid log level configured, using default level",
			"configured_level", opts.Level,
			"default_level", "info")
	}
	switch {
	case opts.Quiet:
		level = slog.LevelWarn
	case opts.Verbose:
		level = slog.LevelDebug
	}

	output := opts.Output
	if output == nil {
		output = io.Discard
	}
	handler := slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if len(groups) == 0 && attr.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return attr
		},
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// Discard returns a logger that drops everything, for tests and library callers.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
