package compaction

import "github.com/richinex/condense/conversation"

// Selection partitions turns into those to summarize and those to keep.
type Selection struct {
	ToSummarize []conversation.Turn
	ToPreserve  []conversation.Turn

	// ExistingSummary is a leading summary turn detached from selection.
	// It is re-emitted verbatim at the front of the result.
	ExistingSummary *conversation.Turn
}

// SelectTargets splits turns by recency: the newest preserveCount turns are
// kept and everything older is selected for summarization. A leading turn
// whose user message carries the summary marker is detached first.
func SelectTargets(turns []conversation.Turn, preserveCount int, adapter conversation.Adapter) Selection {
	existing, remaining := detachSummary(turns, adapter)

	preserve := min(max(preserveCount, 0), len(remaining))
	split := len(remaining) - preserve

	return Selection{
		ToSummarize:     remaining[:split],
		ToPreserve:      remaining[split:],
		ExistingSummary: existing,
	}
}

func detachSummary(turns []conversation.Turn, adapter conversation.Adapter) (*conversation.Turn, []conversation.Turn) {
	if len(turns) == 0 {
		return nil, turns
	}
	if !IsSummary(adapter.ExtractText(turns[0].UserMessage)) {
		return nil, turns
	}
	existing := turns[0]
	return &existing, turns[1:]
}

// splitPinned separates a turn's unclassifiable items, which are kept verbatim
// and never summarized, from the rest of its activity.
func splitPinned(turn conversation.Turn, adapter conversation.Adapter) (conversation.Turn, []conversation.Item) {
	var pinned []conversation.Item
	rest := conversation.Turn{UserMessage: turn.UserMessage}
	for _, item := range turn.AssistantAndTools {
		if adapter.Classify(item) == conversation.KindUnknown {
			pinned = append(pinned, item)
			continue
		}
		rest.AssistantAndTools = append(rest.AssistantAndTools, item)
	}
	if pinned == nil {
		return turn, nil
	}
	rest.EstimatedTokens = estimateTurn(rest)
	return rest, pinned
}
