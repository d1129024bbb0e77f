// Google Gemini adapter (genai Content shape).
//
// Information Hiding:
// - Like Anthropic, the "user" role also carries functionResponse echoes
// - Thought parts are flagged with "thought": true
// - Synthetic messages are built with genai.NewContentFromText

package wire

import (
	"fmt"
	"strings"

	"github.com/richinex/condense/conversation"
	"google.golang.org/genai"
)

// Gemini implements conversation.Adapter for the genai Content shape:
//
//	{"role": "user"|"model", "parts": [{"text": "..."}, {"functionCall": {...}}, {"functionResponse": {...}}]}
type Gemini struct{}

// Name returns the provider name.
func (Gemini) Name() string {
	return "gemini"
}

// Classify returns the kind of a Gemini content.
func (Gemini) Classify(item conversation.Item) conversation.Kind {
	parts := item.Blocks("parts")

	switch item.String("role") {
	case string(genai.RoleUser):
		if allParts(parts, "functionResponse") {
			return conversation.KindToolResult
		}
		return conversation.KindUser
	case string(genai.RoleModel):
		if anyPart(parts, "functionCall") {
			return conversation.KindToolCall
		}
		if len(parts) > 0 && allThoughts(parts) {
			return conversation.KindReasoning
		}
		return conversation.KindAssistant
	default:
		return conversation.KindUnknown
	}
}

// ExtractText returns the readable text of a Gemini content.
func (Gemini) ExtractText(item conversation.Item) string {
	var out []string
	for _, part := range item.Blocks("parts") {
		text, _ := part["text"].(string)
		thought, _ := part["thought"].(bool)
		switch {
		case thought && text != "":
			out = append(out, fmt.Sprintf("[Thinking: %s]", text))
		case text != "":
			out = append(out, text)
		case part["functionCall"] != nil:
			call, _ := part["functionCall"].(map[string]any)
			name, _ := call["name"].(string)
			out = append(out, fmt.Sprintf("[Tool call: %s %s]", name, renderJSON(call["args"])))
		case part["functionResponse"] != nil:
			resp, _ := part["functionResponse"].(map[string]any)
			out = append(out, fmt.Sprintf("[Tool result: %s]", renderJSON(resp["response"])))
		case part["inlineData"] != nil || part["fileData"] != nil:
			out = append(out, "[Attachment]")
		}
	}
	return strings.Join(out, "\n")
}

// BuildSummaryMessage creates a model-role content carrying text.
func (Gemini) BuildSummaryMessage(text string) conversation.Item {
	content := genai.NewContentFromText(text, genai.RoleModel)
	return buildItem(content, geminiTextItem(string(genai.RoleModel), text))
}

// BuildRollingSummaryMessage creates a user-role content carrying text.
func (Gemini) BuildRollingSummaryMessage(text string) conversation.Item {
	content := genai.NewContentFromText(text, genai.RoleUser)
	return buildItem(content, geminiTextItem(string(genai.RoleUser), text))
}

// BuildPlaceholderUserMessage creates the synthetic user message for orphan content.
func (g Gemini) BuildPlaceholderUserMessage() conversation.Item {
	return g.BuildRollingSummaryMessage(conversation.PlaceholderUserText)
}

func geminiTextItem(role, text string) conversation.Item {
	return conversation.Item{
		"role":  role,
		"parts": []any{map[string]any{"text": text}},
	}
}

func allParts(parts []map[string]any, key string) bool {
	if len(parts) == 0 {
		return false
	}
	for _, part := range parts {
		if part[key] == nil {
			return false
		}
	}
	return true
}

func anyPart(parts []map[string]any, key string) bool {
	for _, part := range parts {
		if part[key] != nil {
			return true
		}
	}
	return false
}

func allThoughts(parts []map[string]any) bool {
	for _, part := range parts {
		if thought, _ := part["thought"].(bool); !thought {
			return false
		}
	}
	return true
}

// Verify Gemini implements conversation.Adapter
var _ conversation.Adapter = Gemini{}
