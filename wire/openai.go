// OpenAI Chat Completions adapter (also used for DeepSeek).
//
// Information Hiding:
// - Tool calls ride on assistant messages via tool_calls
// - Tool results use the dedicated "tool" role
// - Synthetic messages are built from go-openai ChatCompletionMessage values

package wire

import (
	"fmt"
	"strings"

	"github.com/richinex/condense/conversation"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAI implements conversation.Adapter for the Chat Completions message shape:
//
//	{"role": "user"|"assistant"|"tool", "content": "..." | [parts], "tool_calls": [...], "tool_call_id": "..."}
//
// System and developer messages are not part of any turn and classify as unknown.
type OpenAI struct{}

// Name returns the provider name.
func (OpenAI) Name() string {
	return "openai"
}

// Classify returns the kind of a chat message.
func (OpenAI) Classify(item conversation.Item) conversation.Kind {
	switch item.String("role") {
	case openai.ChatMessageRoleUser:
		return conversation.KindUser
	case openai.ChatMessageRoleAssistant:
		if calls, ok := item["tool_calls"].([]any); ok && len(calls) > 0 {
			return conversation.KindToolCall
		}
		if _, ok := item["function_call"].(map[string]any); ok {
			return conversation.KindToolCall
		}
		if textOf(item["content"]) == "" && item.String("reasoning_content") != "" {
			return conversation.KindReasoning
		}
		return conversation.KindAssistant
	case openai.ChatMessageRoleTool, openai.ChatMessageRoleFunction:
		return conversation.KindToolResult
	default:
		return conversation.KindUnknown
	}
}

// ExtractText returns the readable text of a chat message.
func (OpenAI) ExtractText(item conversation.Item) string {
	role := item.String("role")
	content := ""
	if raw, ok := item["content"]; ok && raw != nil {
		content = textOf(raw)
	}

	if role == openai.ChatMessageRoleTool || role == openai.ChatMessageRoleFunction {
		return fmt.Sprintf("[Tool result: %s]", content)
	}

	var parts []string
	if reasoning := item.String("reasoning_content"); reasoning != "" && content == "" {
		parts = append(parts, fmt.Sprintf("[Thinking: %s]", reasoning))
	}
	if content != "" {
		parts = append(parts, content)
	}
	for _, call := range item.Blocks("tool_calls") {
		fn, _ := call["function"].(map[string]any)
		name, _ := fn["name"].(string)
		parts = append(parts, fmt.Sprintf("[Tool call: %s %s]", name, renderJSON(fn["arguments"])))
	}
	if fn, ok := item["function_call"].(map[string]any); ok {
		name, _ := fn["name"].(string)
		parts = append(parts, fmt.Sprintf("[Tool call: %s %s]", name, renderJSON(fn["arguments"])))
	}
	return strings.Join(parts, "\n")
}

// BuildSummaryMessage creates an assistant message carrying text.
func (OpenAI) BuildSummaryMessage(text string) conversation.Item {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: text}
	return buildItem(msg, conversation.Item{"role": openai.ChatMessageRoleAssistant, "content": text})
}

// BuildRollingSummaryMessage creates a user message carrying text.
func (OpenAI) BuildRollingSummaryMessage(text string) conversation.Item {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: text}
	return buildItem(msg, conversation.Item{"role": openai.ChatMessageRoleUser, "content": text})
}

// BuildPlaceholderUserMessage creates the synthetic user message for orphan content.
func (o OpenAI) BuildPlaceholderUserMessage() conversation.Item {
	return o.BuildRollingSummaryMessage(conversation.PlaceholderUserText)
}

// Verify OpenAI implements conversation.Adapter
var _ conversation.Adapter = OpenAI{}
