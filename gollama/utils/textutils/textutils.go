package textutils

import (
	"strings"

	"golang.org/x/net/html"
)

const titleWords = 6

// Escape HTML-escapes text before it is stored or rendered.
func Escape(text string) string {
	return html.EscapeString(text)
}

// DeriveTitle builds a session title from the first words of a prompt,
// appending an ellipsis when the prompt is longer. The result is escaped.
func DeriveTitle(prompt string) string {
	words := strings.Fields(prompt)
	title := strings.Join(words[:min(len(words), titleWords)], " ")
	if len(words) > titleWords {
		title += "..."
	}
	return Escape(title)
}

// TruncatePreview shortens message content for list previews.
func TruncatePreview(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "..."
}
