package compaction

import (
	"github.com/richinex/condense/conversation"
	"github.com/richinex/condense/tokens"
)

// Metrics holds per-category token totals for a history.
type Metrics struct {
	UserTokens       int `json:"user_tokens"`
	AssistantTokens  int `json:"assistant_tokens"`
	ToolCallTokens   int `json:"tool_call_tokens"`
	ToolResultTokens int `json:"tool_result_tokens"`
	ReasoningTokens  int `json:"reasoning_tokens"`
	UnknownTokens    int `json:"unknown_tokens"`
	TotalTokens      int `json:"total_tokens"`

	Items        int `json:"items"`
	Turns        int `json:"turns"`
	SummaryItems int `json:"summary_items"`
}

// Measure classifies and estimates every item in history.
func Measure(history []conversation.Item, adapter conversation.Adapter) Metrics {
	m := Metrics{Items: len(history)}
	for _, c := range conversation.Classify(adapter, history) {
		n := tokens.Estimate(c.Item)
		switch c.Kind {
		case conversation.KindUser:
			m.UserTokens += n
		case conversation.KindAssistant:
			m.AssistantTokens += n
		case conversation.KindToolCall:
			m.ToolCallTokens += n
		case conversation.KindToolResult:
			m.ToolResultTokens += n
		case conversation.KindReasoning:
			m.ReasoningTokens += n
		default:
			m.UnknownTokens += n
		}
		m.TotalTokens += n

		if IsSummary(adapter.ExtractText(c.Item)) {
			m.SummaryItems++
		}
	}
	m.Turns = len(Segment(history, adapter))
	return m
}

// UsagePercent returns TotalTokens as a percentage of cfg.MaxContextTokens.
func (m Metrics) UsagePercent(cfg Config) float64 {
	if cfg.MaxContextTokens <= 0 {
		return 0
	}
	return float64(m.TotalTokens) / float64(cfg.MaxContextTokens) * 100
}

// NeedsCompaction reports whether a history of these metrics would be compacted under cfg.
func (m Metrics) NeedsCompaction(cfg Config) bool {
	_, skip := skipReason(cfg, m.TotalTokens)
	return !skip
}
