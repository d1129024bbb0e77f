// Package wire provides conversation.Adapter implementations for provider wire schemas.
//
// Information Hiding:
// - Each provider's message shape (roles, block types, tool encodings) stays in its adapter
// - Synthetic messages are built with the provider's own SDK types, then decoded to Items
// - Callers select an adapter by provider name and never see the raw shapes

package wire

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/richinex/condense/conversation"
)

// ForProvider returns the adapter for a provider name or alias.
// DeepSeek speaks the OpenAI chat schema.
func ForProvider(name string) (conversation.Adapter, error) {
	switch strings.ToLower(name) {
	case "anthropic", "claude":
		return Anthropic{}, nil
	case "openai", "gpt", "deepseek":
		return OpenAI{}, nil
	case "gemini", "google":
		return Gemini{}, nil
	default:
		return nil, fmt.Errorf("unknown provider: %q", name)
	}
}

// buildItem converts an SDK value into an Item. When encoding fails or
// drops the role, the hand-built fallback is returned instead.
func buildItem(v any, fallback conversation.Item) conversation.Item {
	item, err := conversation.ItemFromValue(v)
	if err != nil || item.String("role") == "" {
		return fallback
	}
	return item
}

// renderJSON renders a value compactly for transcripts.
func renderJSON(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// textOf flattens a content value that is either a plain string or a list
// of blocks with "text" fields.
func textOf(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		var parts []string
		for _, entry := range val {
			block, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := block["text"].(string); ok && text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, "\n")
	default:
		return renderJSON(v)
	}
}

func blockType(block map[string]any) string {
	typ, _ := block["type"].(string)
	return typ
}

// allBlocks reports whether blocks is non-empty and every block has one of types.
func allBlocks(blocks []map[string]any, types ...string) bool {
	if len(blocks) == 0 {
		return false
	}
	for _, block := range blocks {
		if !oneOf(blockType(block), types) {
			return false
		}
	}
	return true
}

func anyBlock(blocks []map[string]any, types ...string) bool {
	for _, block := range blocks {
		if oneOf(blockType(block), types) {
			return true
		}
	}
	return false
}

func oneOf(s string, set []string) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}
