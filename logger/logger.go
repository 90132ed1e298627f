// Package logger builds the process-wide structured logger. Output is JSON
// on stdout so scheduled runs stay machine-parseable.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger returns a JSON logger on stdout. The level defaults to Info;
// set LOG_LEVEL=debug to see connection init and per-item fetch details.
func NewLogger() *slog.Logger {
	level := slog.LevelInfo
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
