package wire

import (
	"testing"

	"github.com/richinex/condense/conversation"
	"github.com/stretchr/testify/assert"
)

func TestOpenAIClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    conversation.Item
		expected conversation.Kind
	}{
		{name: "user", input: conversation.Item{"role": "user", "content": "hi"}, expected: conversation.KindUser},
		{name: "assistant", input: conversation.Item{"role": "assistant", "content": "hello"}, expected: conversation.KindAssistant},
		{
			name: "tool calls",
			input: conversation.Item{"role": "assistant", "tool_calls": []any{
				map[string]any{"id": "c1", "type": "function", "function": map[string]any{"name": "ls", "arguments": "{}"}},
			}},
			expected: conversation.KindToolCall,
		},
		{
			name:     "legacy function call",
			input:    conversation.Item{"role": "assistant", "function_call": map[string]any{"name": "ls", "arguments": "{}"}},
			expected: conversation.KindToolCall,
		},
		{name: "tool", input: conversation.Item{"role": "tool", "tool_call_id": "c1", "content": "ok"}, expected: conversation.KindToolResult},
		{name: "function", input: conversation.Item{"role": "function", "name": "ls", "content": "ok"}, expected: conversation.KindToolResult},
		{name: "reasoning only", input: conversation.Item{"role": "assistant", "reasoning_content": "thinking"}, expected: conversation.KindReasoning},
		{name: "system", input: conversation.Item{"role": "system", "content": "rules"}, expected: conversation.KindUnknown},
		{name: "developer", input: conversation.Item{"role": "developer", "content": "rules"}, expected: conversation.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OpenAI{}.Classify(tt.input))
		})
	}
}

func TestOpenAIExtractText(t *testing.T) {
	tests := []struct {
		name     string
		input    conversation.Item
		expected string
	}{
		{
			name:     "string content",
			input:    conversation.Item{"role": "user", "content": "hi"},
			expected: "hi",
		},
		{
			name: "multi content",
			input: conversation.Item{"role": "user", "content": []any{
				map[string]any{"type": "text", "text": "look"},
				map[string]any{"type": "image_url", "image_url": map[string]any{"url": "data:..."}},
				map[string]any{"type": "text", "text": "here"},
			}},
			expected: "look\nhere",
		},
		{
			name: "tool call",
			input: conversation.Item{"role": "assistant", "content": nil, "tool_calls": []any{
				map[string]any{"id": "c1", "type": "function", "function": map[string]any{"name": "ls", "arguments": `{"dir":"."}`}},
			}},
			expected: `[Tool call: ls {"dir":"."}]`,
		},
		{
			name:     "tool result",
			input:    conversation.Item{"role": "tool", "tool_call_id": "c1", "content": "a.go"},
			expected: "[Tool result: a.go]",
		},
		{
			name:     "reasoning",
			input:    conversation.Item{"role": "assistant", "reasoning_content": "hmm"},
			expected: "[Thinking: hmm]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OpenAI{}.ExtractText(tt.input))
		})
	}
}

func TestOpenAISummaryMessageShape(t *testing.T) {
	item := OpenAI{}.BuildSummaryMessage("S")
	assert.Equal(t, conversation.Item{"role": "assistant", "content": "S"}, item)
}
