package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/V4T54L/dealer-portal/internal/adapter/pii"
)

// New returns a JSON logger writing to stdout at the given level. Unknown
// levels fall back to info. Attributes named in redactFields are masked.
func New(level string, redactFields ...string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: l}
	if redactor := pii.NewRedactor(redactFields); redactor.Enabled() {
		opts.ReplaceAttr = redactor.ReplaceAttr
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
