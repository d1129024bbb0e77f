package summarizer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/richinex/condense/conversation"
)

// DefaultMaxItemChars caps the text taken from a single item.
const DefaultMaxItemChars = 4000

// RenderTranscript renders turns as labeled plain text. Each item's text is
// clipped to maxItemChars runes; zero or less means no limit.
func RenderTranscript(turns []conversation.Turn, adapter conversation.Adapter, maxItemChars int) string {
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[Turn %d]\n", i+1)
		for _, item := range turn.Items() {
			text := strings.TrimSpace(adapter.ExtractText(item))
			if text == "" {
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", label(adapter.Classify(item)), clip(text, maxItemChars))
		}
	}
	return b.String()
}

func label(kind conversation.Kind) string {
	switch kind {
	case conversation.KindUser:
		return "User"
	case conversation.KindAssistant:
		return "Assistant"
	case conversation.KindToolCall:
		return "Assistant (tool)"
	case conversation.KindToolResult:
		return "Tool"
	case conversation.KindReasoning:
		return "Reasoning"
	default:
		return "Other"
	}
}

// clip truncates s to n runes, noting how much was dropped.
func clip(s string, n int) string {
	if n <= 0 {
		return s
	}
	total := utf8.RuneCountInString(s)
	if total <= n {
		return s
	}
	runes := []rune(s)
	return fmt.Sprintf("%s... [+%d chars]", string(runes[:n]), total-n)
}
