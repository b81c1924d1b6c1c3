package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterThinking(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no markers", "plain answer", "plain answer"},
		{"single span", "<think>X</think>Y", "Y"},
		{"span with surrounding whitespace", "<think>reasoning</think>\n\nanswer", "answer"},
		{"multiple spans", "<think>a</think>one<think>b</think> two", "one two"},
		{"multiline span", "<think>line1\nline2</think>done", "done"},
		{"opening marker only", "<think>never closed", "<think>never closed"},
		{"closing marker only", "no opening</think>", "no opening</think>"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FilterThinking(tt.input))
		})
	}
}

func TestFilterThinkingIdempotent(t *testing.T) {
	once := FilterThinking("<think>X</think>Y")
	assert.Equal(t, once, FilterThinking(once))
}
