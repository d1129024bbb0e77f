package wire

import (
	"testing"

	"github.com/richinex/condense/conversation"
	"github.com/stretchr/testify/assert"
)

func TestGeminiClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    conversation.Item
		expected conversation.Kind
	}{
		{
			name:     "user",
			input:    conversation.Item{"role": "user", "parts": []any{map[string]any{"text": "hi"}}},
			expected: conversation.KindUser,
		},
		{
			name: "function response echo",
			input: conversation.Item{"role": "user", "parts": []any{
				map[string]any{"functionResponse": map[string]any{"name": "ls", "response": map[string]any{"output": "a.go"}}},
			}},
			expected: conversation.KindToolResult,
		},
		{
			name: "function call",
			input: conversation.Item{"role": "model", "parts": []any{
				map[string]any{"functionCall": map[string]any{"name": "ls", "args": map[string]any{}}},
			}},
			expected: conversation.KindToolCall,
		},
		{
			name: "thought",
			input: conversation.Item{"role": "model", "parts": []any{
				map[string]any{"text": "planning", "thought": true},
			}},
			expected: conversation.KindReasoning,
		},
		{
			name:     "model text",
			input:    conversation.Item{"role": "model", "parts": []any{map[string]any{"text": "done"}}},
			expected: conversation.KindAssistant,
		},
		{
			name:     "unknown role",
			input:    conversation.Item{"role": "system", "parts": []any{}},
			expected: conversation.KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Gemini{}.Classify(tt.input))
		})
	}
}

func TestGeminiExtractText(t *testing.T) {
	item := conversation.Item{"role": "model", "parts": []any{
		map[string]any{"text": "planning", "thought": true},
		map[string]any{"text": "listing"},
		map[string]any{"functionCall": map[string]any{"name": "ls", "args": map[string]any{"dir": "."}}},
	}}
	assert.Equal(t, "[Thinking: planning]\nlisting\n[Tool call: ls {\"dir\":\".\"}]", Gemini{}.ExtractText(item))

	echo := conversation.Item{"role": "user", "parts": []any{
		map[string]any{"functionResponse": map[string]any{"name": "ls", "response": map[string]any{"output": "a.go"}}},
	}}
	assert.Equal(t, `[Tool result: {"output":"a.go"}]`, Gemini{}.ExtractText(echo))
}

func TestGeminiSummaryMessageShape(t *testing.T) {
	item := Gemini{}.BuildSummaryMessage("S")

	assert.Equal(t, "model", item["role"])
	parts := item.Blocks("parts")
	if assert.Len(t, parts, 1) {
		assert.Equal(t, "S", parts[0]["text"])
	}
}
