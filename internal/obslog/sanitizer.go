// Package obslog provides the structured logging handler every locator
// component logs through. It wraps an slog.Handler and strips or
// fingerprints attributes that would otherwise leak secret key material,
// conversation keys, or session keys into log output.
package obslog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
)

// sensitiveKeyParts are substrings that mark an attribute key as carrying
// material that must never appear in cleartext in a log line.
var sensitiveKeyParts = []string{
	"secret", "privkey", "private_key", "seed", "mnemonic",
	"conversation_key", "session_key", "nsec",
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

// Fingerprint returns a short, non-reversible identifier for sensitive
// byte material, stable across calls so repeated log lines about the same
// key are correlatable without revealing it.
func Fingerprint(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:6])
}

// SanitizingHandler redacts sensitive attributes before delegating to the
// wrapped handler.
type SanitizingHandler struct {
	next slog.Handler
}

// NewSanitizingHandler wraps next so every record it emits has passed
// through SanitizeAttr first.
func NewSanitizingHandler(next slog.Handler) *SanitizingHandler {
	return &SanitizingHandler{next: next}
}

func (h *SanitizingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SanitizingHandler) Handle(ctx context.Context, r slog.Record) error {
	cleaned := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		cleaned.AddAttrs(SanitizeAttr(a))
		return true
	})
	return h.next.Handle(ctx, cleaned)
}

func (h *SanitizingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitized := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitized[i] = SanitizeAttr(a)
	}
	return &SanitizingHandler{next: h.next.WithAttrs(sanitized)}
}

func (h *SanitizingHandler) WithGroup(name string) slog.Handler {
	return &SanitizingHandler{next: h.next.WithGroup(name)}
}

// SanitizeAttr redacts a when its key marks it as sensitive. Byte
// slices and strings are fingerprinted rather than dropped outright, so
// correlation across log lines stays possible; any other value is
// replaced with "[redacted]".
func SanitizeAttr(a slog.Attr) slog.Attr {
	if !isSensitiveKey(a.Key) {
		return a
	}
	switch v := a.Value.Any().(type) {
	case []byte:
		return slog.String(a.Key, "fp:"+Fingerprint(v))
	case string:
		return slog.String(a.Key, "fp:"+Fingerprint([]byte(v)))
	default:
		return slog.String(a.Key, "[redacted]")
	}
}
