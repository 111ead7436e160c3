package logger

import (
	"log/slog"
	"os"
)

// New returns the structured logger used across services and handlers.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
