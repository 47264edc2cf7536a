// Package publish takes approved queue items to their destination. Every
// outgoing text passes a content-safety gate that blocks leaked model
// artifacts, then an optional humanizer rewrite, then the daily rate limit.
package publish

import (
	"regexp"
	"strings"
)

// Patterns that mark a draft as containing assistant meta-commentary or
// template scaffolding rather than publishable content. The gate is strict:
// one match blocks the whole text.
var blockPatterns = []*regexp.Regexp{
	// "Here's the corrected/updated/revised ... post:" style preambles.
	regexp.MustCompile(`(?i)^\s*here'?s (the|your|a|an) (corrected|updated|revised|edited|improved|rewritten|final|new)\b`),
	regexp.MustCompile(`(?i)^\s*(sure|certainly|of course|absolutely)[,!] (here|i)`),
	regexp.MustCompile(`(?i)^\s*i('ve| have) (corrected|updated|revised|edited|rewritten)\b`),
	// Assistant self-reference.
	regexp.MustCompile(`(?i)\bas an ai\b`),
	regexp.MustCompile(`(?i)\bas a language model\b`),
	regexp.MustCompile(`(?i)\bi cannot (assist|help) with\b`),
	// System-prompt markers.
	regexp.MustCompile(`<<SYS>>|\[INST\]|<\|im_start\|>`),
	regexp.MustCompile(`(?im)^\s*(system|assistant|user):\s`),
	// Unfilled template placeholders.
	regexp.MustCompile(`\{\{[^}]+\}\}`),
	regexp.MustCompile(`(?i)\[(insert|your|add|placeholder|company name|link)[^\]]*\]`),
	regexp.MustCompile(`(?i)\blorem ipsum\b`),
}

// SanitizeContent is the hard gate in front of every publish. It returns the
// trimmed text and whether it is safe to send. Blocked text is returned
// as-is so callers can log what tripped the gate.
func SanitizeContent(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", false
	}
	for _, p := range blockPatterns {
		if p.MatchString(trimmed) {
			return trimmed, false
		}
	}
	return trimmed, true
}
