// Package app wires process-level concerns shared by the daemon binaries.
package app

import (
	"log/slog"
	"os"
	"strings"

	"github.com/rosterdev/roster-store/internal/config"
)

// NewLogger creates a *slog.Logger from the log configuration and installs
// it as the default via slog.SetDefault.
//
// Format "json" produces structured output for production; anything else
// falls back to human-readable text with source locations. Level is one of
// debug, info, warn, error (case-insensitive), defaulting to info. Output
// goes to stderr.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: !strings.EqualFold(cfg.Format, "json"),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
