// Package compaction keeps a conversation history under a token budget by
// summarizing older turns while preserving a valid, replayable structure.
//
// Information Hiding:
// - Turn reconstruction, target selection, and pass iteration are internal
// - Provider wire shapes are reached only through conversation.Adapter
// - The LLM call is an injected Summarizer; failures degrade to "keep the original"
// - Already-summarized content is recognized solely by its text marker
//
// A typical call:
//
//	c := compaction.New(wire.Anthropic{}, summarize, compaction.WithLogger(logger))
//	result := c.Compact(ctx, history, compaction.PresetFor("anthropic"))
//	if result.Compacted {
//		history = result.History
//	}
package compaction
