package summarizer

import "strings"

const (
	summaryOpen  = "<summary>"
	summaryClose = "</summary>"
)

// ExtractSummary returns the body of the first <summary> block in response.
// Responses without tags are returned whole, minus any code fence.
// An unterminated block runs to the end of the response.
func ExtractSummary(response string) string {
	text := stripCodeFence(response)

	start := strings.Index(text, summaryOpen)
	if start == -1 {
		return strings.TrimSpace(text)
	}
	body := text[start+len(summaryOpen):]
	if end := strings.Index(body, summaryClose); end != -1 {
		body = body[:end]
	}
	return strings.TrimSpace(stripCodeFence(body))
}

// stripCodeFence removes a surrounding markdown code fence such as
// ```markdown ... ``` or ``` ... ```.
func stripCodeFence(response string) string {
	trimmed := strings.TrimSpace(response)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop the info string (language tag) on the opening line.
	if nl := strings.Index(trimmed, "\n"); nl != -1 && !strings.ContainsAny(trimmed[:nl], " \t") {
		trimmed = trimmed[nl+1:]
	}
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}
