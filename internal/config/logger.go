package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

var logLevels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLogLevel maps a config or flag value to a slog level. Matching is
// case-insensitive.
func ParseLogLevel(name string) (slog.Level, error) {
	lvl, ok := logLevels[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (must be debug, info, warn or error)", name)
	}
	return lvl, nil
}

// SetupLogger returns a text logger on w that drops records below level.
// Every record carries component=snapkit so file logs shared with other
// tools stay attributable.
func SetupLogger(level slog.Level, w io.Writer) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("component", "snapkit")
}
