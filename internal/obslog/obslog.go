package obslog

import (
	"io"
	"log/slog"
)

// New builds the default locator logger: JSON output through
// SanitizingHandler at level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	base := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewSanitizingHandler(base))
}
