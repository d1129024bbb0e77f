package compaction

import (
	"github.com/richinex/condense/conversation"
	"github.com/richinex/condense/tokens"
)

// SegmentReport describes what segmentation did with its input.
type SegmentReport struct {
	Items        int
	Turns        int
	Kept         int // unclassifiable items kept in the open turn
	Skipped      int // unclassifiable items outside any turn, dropped
	Placeholders int // synthetic user messages inserted
}

// Segment groups a flat item stream into turns.
func Segment(items []conversation.Item, adapter conversation.Adapter) []conversation.Turn {
	turns, _ := SegmentWithReport(items, adapter, noopLogger{})
	return turns
}

// SegmentWithReport groups a flat item stream into turns and reports skipped
// and synthesized items. A user message closes the open turn and opens a new
// one; assistant and tool items join the open turn, or open a placeholder turn
// when none is open. Unclassifiable items stay in the open turn, or are
// skipped when no turn is open. Either way a warning is logged.
func SegmentWithReport(items []conversation.Item, adapter conversation.Adapter, logger Logger) ([]conversation.Turn, SegmentReport) {
	report := SegmentReport{Items: len(items)}
	var turns []conversation.Turn
	var current *conversation.Turn

	closeTurn := func() {
		if current == nil {
			return
		}
		current.EstimatedTokens = estimateTurn(*current)
		turns = append(turns, *current)
		current = nil
	}

	for i, c := range conversation.Classify(adapter, items) {
		switch {
		case c.Kind == conversation.KindUser:
			closeTurn()
			current = &conversation.Turn{UserMessage: c.Item}
		case c.Kind.IsTurnContent():
			if current == nil {
				current = &conversation.Turn{UserMessage: adapter.BuildPlaceholderUserMessage()}
				report.Placeholders++
			}
			current.AssistantAndTools = append(current.AssistantAndTools, c.Item)
		case current != nil:
			report.Kept++
			current.AssistantAndTools = append(current.AssistantAndTools, c.Item)
			logger.Warn("unclassifiable item kept",
				"index", i,
				"provider", adapter.Name(),
				"error", ErrMalformedItem,
			)
		default:
			report.Skipped++
			logger.Warn("unclassifiable item skipped",
				"index", i,
				"provider", adapter.Name(),
				"error", ErrMalformedItem,
			)
		}
	}
	closeTurn()

	report.Turns = len(turns)
	return turns, report
}

// Flatten rebuilds the item stream from turns, preserving order.
func Flatten(turns []conversation.Turn) []conversation.Item {
	n := 0
	for _, t := range turns {
		n += 1 + len(t.AssistantAndTools)
	}
	items := make([]conversation.Item, 0, n)
	for _, t := range turns {
		items = append(items, t.UserMessage)
		items = append(items, t.AssistantAndTools...)
	}
	return items
}

func estimateTurn(t conversation.Turn) int {
	return tokens.Estimate(t.UserMessage) + tokens.EstimateAll(t.AssistantAndTools)
}
