// Package filename turns raw model candidates into filesystem-safe,
// collision-free names.
package filename

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxNameLen bounds a validated name (without extension).
const MaxNameLen = 160

var (
	reSeparators = regexp.MustCompile(`[\s./\\:\-]+`)
	reDisallowed = regexp.MustCompile(`[^A-Za-z0-9_]+`)
	reUnderscore = regexp.MustCompile(`_{2,}`)
)

// Validate sanitizes a raw candidate into a filesystem-safe name:
// separators become underscores, everything outside [A-Za-z0-9_] is
// stripped, runs collapse, and the result is length-bounded. A leading
// underscore survives (a candidate like "你好世界_document" yields
// "_document"); only trailing underscores are trimmed. An empty or
// all-invalid candidate yields a unique placeholder instead of failing.
func Validate(raw string) string {
	s := strings.TrimSpace(raw)
	s = reSeparators.ReplaceAllString(s, "_")
	s = reDisallowed.ReplaceAllString(s, "")
	s = reUnderscore.ReplaceAllString(s, "_")
	s = strings.TrimRight(s, "_")
	if len(s) > MaxNameLen {
		s = strings.TrimRight(s[:MaxNameLen], "_")
	}
	if s == "" {
		return placeholder()
	}
	return s
}

// placeholder builds a deterministic-shape fallback name carrying a
// timestamp and a short uuid so concurrent placeholders cannot collide.
func placeholder() string {
	return "document_" + time.Now().UTC().Format("20060102_150405") + "_" + uuid.New().String()[:8]
}
