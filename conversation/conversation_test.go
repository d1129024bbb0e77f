package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roleAdapter classifies by role alone.
type roleAdapter struct{}

func (roleAdapter) Name() string { return "role" }

func (roleAdapter) Classify(item Item) Kind {
	switch item.String("role") {
	case "user":
		return KindUser
	case "assistant":
		return KindAssistant
	case "tool":
		return KindToolResult
	default:
		return KindUnknown
	}
}

func (roleAdapter) ExtractText(item Item) string { return item.String("content") }

func (roleAdapter) BuildSummaryMessage(text string) Item {
	return Item{"role": "assistant", "content": text}
}

func (roleAdapter) BuildRollingSummaryMessage(text string) Item {
	return Item{"role": "user", "content": text}
}

func (a roleAdapter) BuildPlaceholderUserMessage() Item {
	return a.BuildRollingSummaryMessage(PlaceholderUserText)
}

func TestParseItems(t *testing.T) {
	items, err := ParseItems([]byte(`[{"role":"user","content":"hi"},{"role":"assistant","content":[{"type":"text","text":"hello"}]}]`))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "hi", items[0].String("content"))
	assert.Len(t, items[1].Blocks("content"), 1)
}

func TestParseItemsEmpty(t *testing.T) {
	for _, input := range []string{`[]`, `null`} {
		items, err := ParseItems([]byte(input))
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	}
}

func TestParseItemsRejectsNonArray(t *testing.T) {
	_, err := ParseItems([]byte(`{"role":"user"}`))
	assert.Error(t, err)
}

func TestMarshalItemsRoundTrip(t *testing.T) {
	items := []Item{
		{"role": "user", "content": "hi"},
		{"role": "tool", "tool_call_id": "c1", "content": "ok"},
	}

	data, err := MarshalItems(items)
	require.NoError(t, err)

	decoded, err := ParseItems(data)
	require.NoError(t, err)
	assert.Equal(t, items, decoded)
}

func TestMarshalItemsNil(t *testing.T) {
	data, err := MarshalItems(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestItemFromValue(t *testing.T) {
	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	item, err := ItemFromValue(message{Role: "assistant", Content: "done"})
	require.NoError(t, err)
	assert.Equal(t, Item{"role": "assistant", "content": "done"}, item)

	_, err = ItemFromValue(make(chan int))
	assert.Error(t, err)
}

func TestItemAccessors(t *testing.T) {
	item := Item{
		"role":    "assistant",
		"count":   3.0,
		"content": []any{map[string]any{"type": "text"}, "stray", map[string]any{"type": "tool_use"}},
	}

	assert.Equal(t, "assistant", item.String("role"))
	assert.Equal(t, "", item.String("count"))
	assert.Equal(t, "", item.String("missing"))

	blocks := item.Blocks("content")
	require.Len(t, blocks, 2)
	assert.Equal(t, "tool_use", blocks[1]["type"])
	assert.Nil(t, item.Blocks("role"))
}

func TestKind(t *testing.T) {
	tests := []struct {
		kind        Kind
		name        string
		turnContent bool
	}{
		{KindUnknown, "unknown", false},
		{KindUser, "user", false},
		{KindAssistant, "assistant", true},
		{KindToolCall, "tool_call", true},
		{KindToolResult, "tool_result", true},
		{KindReasoning, "reasoning", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.kind.String())
			assert.Equal(t, tt.turnContent, tt.kind.IsTurnContent())
		})
	}
}

func TestClassify(t *testing.T) {
	items := []Item{
		{"role": "system", "content": "be brief"},
		{"role": "user", "content": "hi"},
		{"role": "tool", "content": "ok"},
	}

	classified := Classify(roleAdapter{}, items)
	require.Len(t, classified, 3)
	assert.Equal(t, KindUnknown, classified[0].Kind)
	assert.Equal(t, KindUser, classified[1].Kind)
	assert.Equal(t, KindToolResult, classified[2].Kind)
	assert.Equal(t, items[1], classified[1].Item)
}

func TestTurnItems(t *testing.T) {
	turn := Turn{
		UserMessage: Item{"role": "user", "content": "q"},
		AssistantAndTools: []Item{
			{"role": "assistant", "content": "a1"},
			{"role": "assistant", "content": "a2"},
		},
	}

	items := turn.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "q", items[0].String("content"))
	assert.Equal(t, "a2", items[2].String("content"))
	assert.True(t, turn.HasActivity())

	bare := Turn{UserMessage: Item{"role": "user", "content": "q"}}
	assert.Len(t, bare.Items(), 1)
	assert.False(t, bare.HasActivity())
}

func TestPlaceholderUserMessage(t *testing.T) {
	item := roleAdapter{}.BuildPlaceholderUserMessage()
	assert.Equal(t, KindUser, roleAdapter{}.Classify(item))
	assert.Equal(t, PlaceholderUserText, item.String("content"))
}
