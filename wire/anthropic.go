// Anthropic Messages API adapter.
//
// Information Hiding:
// - The "user" role carries both genuine user turns and tool_result echoes
// - Disambiguation inspects content blocks: all tool_result blocks means a tool result
// - Synthetic messages are built with anthropic-sdk-go param builders

package wire

import (
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/richinex/condense/conversation"
)

// Anthropic implements conversation.Adapter for the Anthropic Messages API shape:
//
//	{"role": "user"|"assistant", "content": "..." | [{"type": "text"|"tool_use"|"tool_result"|"thinking"|"image", ...}]}
type Anthropic struct{}

// Name returns the provider name.
func (Anthropic) Name() string {
	return "anthropic"
}

// Classify returns the kind of an Anthropic message.
func (Anthropic) Classify(item conversation.Item) conversation.Kind {
	blocks := item.Blocks("content")

	switch item.String("role") {
	case string(anthropic.MessageParamRoleUser):
		if _, isText := item["content"].(string); !isText && allBlocks(blocks, "tool_result") {
			return conversation.KindToolResult
		}
		return conversation.KindUser
	case string(anthropic.MessageParamRoleAssistant):
		if anyBlock(blocks, "tool_use", "server_tool_use") {
			return conversation.KindToolCall
		}
		if allBlocks(blocks, "thinking", "redacted_thinking") {
			return conversation.KindReasoning
		}
		return conversation.KindAssistant
	default:
		return conversation.KindUnknown
	}
}

// ExtractText returns the readable text of an Anthropic message.
func (Anthropic) ExtractText(item conversation.Item) string {
	if text, ok := item["content"].(string); ok {
		return text
	}

	var parts []string
	for _, block := range item.Blocks("content") {
		switch blockType(block) {
		case "text":
			if text, _ := block["text"].(string); text != "" {
				parts = append(parts, text)
			}
		case "thinking":
			if thinking, _ := block["thinking"].(string); thinking != "" {
				parts = append(parts, fmt.Sprintf("[Thinking: %s]", thinking))
			}
		case "tool_use", "server_tool_use":
			name, _ := block["name"].(string)
			parts = append(parts, fmt.Sprintf("[Tool call: %s %s]", name, renderJSON(block["input"])))
		case "tool_result":
			label := "Tool result"
			if isError, _ := block["is_error"].(bool); isError {
				label = "Tool error"
			}
			parts = append(parts, fmt.Sprintf("[%s: %s]", label, textOf(block["content"])))
		case "image":
			parts = append(parts, "[Image]")
		}
	}
	return strings.Join(parts, "\n")
}

// BuildSummaryMessage creates an assistant message carrying text.
func (Anthropic) BuildSummaryMessage(text string) conversation.Item {
	msg := anthropic.NewAssistantMessage(anthropic.NewTextBlock(text))
	return buildItem(msg, anthropicTextItem(string(anthropic.MessageParamRoleAssistant), text))
}

// BuildRollingSummaryMessage creates a user message carrying text.
func (Anthropic) BuildRollingSummaryMessage(text string) conversation.Item {
	msg := anthropic.NewUserMessage(anthropic.NewTextBlock(text))
	return buildItem(msg, anthropicTextItem(string(anthropic.MessageParamRoleUser), text))
}

// BuildPlaceholderUserMessage creates the synthetic user message for orphan content.
func (a Anthropic) BuildPlaceholderUserMessage() conversation.Item {
	return a.BuildRollingSummaryMessage(conversation.PlaceholderUserText)
}

func anthropicTextItem(role, text string) conversation.Item {
	return conversation.Item{
		"role": role,
		"content": []any{
			map[string]any{"type": "text", "text": text},
		},
	}
}

// Verify Anthropic implements conversation.Adapter
var _ conversation.Adapter = Anthropic{}
