package llm

import (
	"regexp"
	"strings"

	"github.com/quanyeomans/content-tamer-ai-sub003/internal/common"
)

// Prompt-injection patterns scanned for in extracted document content.
// A match means the document is trying to steer the model; we refuse to
// forward it rather than transmit and hope.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bignore\s+(all\s+|any\s+)?(previous|prior|above|earlier)\s+instructions?\b`),
	regexp.MustCompile(`(?i)\bdisregard\s+(all\s+|any\s+)?(previous|prior|above|earlier|the)\s+(instructions?|prompts?)\b`),
	regexp.MustCompile(`(?i)\bforget\s+(everything|all\s+previous|your\s+instructions)\b`),
	regexp.MustCompile(`(?i)\bsystem\s+prompt\b`),
	regexp.MustCompile(`(?i)\byou\s+are\s+now\s+(a|an|the)\b`),
	regexp.MustCompile(`(?i)\bnew\s+instructions?\s*:`),
	regexp.MustCompile(`(?i)\breveal\b[^\n]{0,40}\b(api\s*key|secret|password|credential)`),
	regexp.MustCompile(`(?i)\b(api\s*key|secret|password)\b[^\n]{0,40}\breveal\b`),
}

var reControlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)

// SanitizeContent prepares extracted text for transmission: strips
// control characters, scans for injection attempts, and caps length.
// On an injection match it returns a security error and no content —
// refusing to proceed is the contract, not best-effort.
func SanitizeContent(text string, maxChars int) (string, error) {
	cleaned := reControlChars.ReplaceAllString(text, "")

	// Scan the full text, not just the transmitted prefix: an injection
	// past the cap still marks the document as hostile.
	for _, re := range injectionPatterns {
		if loc := re.FindString(cleaned); loc != "" {
			return "", common.NewAppError(common.KindSecurity,
				"prompt injection pattern detected in document content: "+truncateForLog(loc, 80), nil)
		}
	}

	if maxChars > 0 && len(cleaned) > maxChars {
		cleaned = cleaned[:maxChars]
	}
	return strings.TrimSpace(cleaned), nil
}

func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
