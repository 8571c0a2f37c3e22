// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the diagnostic logger. Diagnostics go to stderr so
// that command output on stdout stays clean.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/pdiddy/lispendens/pkg/types"
)

// New returns a logger writing to w at cfg's level in cfg's format
// (text unless "json").
func New(cfg types.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// ParseLevel maps a level name to a slog.Level. Unknown names mean warn,
// which keeps routine progress out of the terminal.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
