package logging

import (
	"io"
	"log/slog"
	"regexp"
	"strings"
)

var (
	reBasic    = regexp.MustCompile(`(?i)(basic\s+)([A-Za-z0-9+/=]+)`)
	rePassword = regexp.MustCompile(`(?i)(password["']?\s*[=:]\s*["']?)([^\s;,"']+)`)
	reToken    = regexp.MustCompile(`(?i)(token=|bearer\s+)([A-Za-z0-9._-]+)`)
	reURLPass  = regexp.MustCompile(`(://)([^:/@\s]+):([^@\s]+)(@)`)
)

// Mask replaces sensitive values in s with "***".
func Mask(s string) string {
	out := reBasic.ReplaceAllString(s, "$1***")
	out = rePassword.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reURLPass.ReplaceAllString(out, "$1*:*$4")
	return out
}

// ParseLevel maps a textual level to slog.Level; unknown values yield info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// New returns a JSON logger writing to w with string attributes masked.
// Callers serving MCP over stdio must pass stderr.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Value.Kind() == slog.KindString {
				attr.Value = slog.StringValue(Mask(attr.Value.String()))
			}
			return attr
		},
	}))
}
