// Package logger configures the process-wide slog logger and carries the
// request ID through contexts.
package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/Strob0t/AdForge/internal/config"
)

// New builds a JSON slog logger on stdout at the configured level, tagging
// every record with the service name. Unknown level strings fall back to
// info rather than failing startup.
func New(cfg config.Logging) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	})
	return slog.New(h).With("service", cfg.Service)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
