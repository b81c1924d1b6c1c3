package llm

import (
	"regexp"
	"strings"
)

var thinkSpan = regexp.MustCompile(`(?s)<think>.*?</think>`)

// FilterThinking strips model reasoning spans from assembled text. It only
// acts when both markers are present; already-filtered text passes through
// unchanged, so the filter is idempotent.
func FilterThinking(text string) string {
	if !strings.Contains(text, "<think>") || !strings.Contains(text, "</think>") {
		return text
	}
	return strings.TrimSpace(thinkSpan.ReplaceAllString(text, ""))
}
