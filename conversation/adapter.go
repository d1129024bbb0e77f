package conversation

// PlaceholderUserText is the content of the synthetic user message that
// opens a turn whose content arrived before any real user message.
const PlaceholderUserText = "[system initialization]"

// Adapter hides one provider's wire schema from the compaction engine.
// Implementations must be pure: no I/O, no mutation of the given items.
type Adapter interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Classify returns the tagged-variant kind of an item.
	Classify(item Item) Kind

	// ExtractText returns the human-readable text of an item. Tool calls
	// and results are rendered in a bracketed form.
	ExtractText(item Item) string

	// BuildSummaryMessage creates an assistant-role item carrying text.
	BuildSummaryMessage(text string) Item

	// BuildRollingSummaryMessage creates a user-role item carrying text.
	// Rolling summaries lead the history and must open a turn.
	BuildRollingSummaryMessage(text string) Item

	// BuildPlaceholderUserMessage creates the synthetic user message used
	// for orphan content.
	BuildPlaceholderUserMessage() Item
}

// Classify classifies every item once.
func Classify(adapter Adapter, items []Item) []Classified {
	out := make([]Classified, len(items))
	for i, item := range items {
		out[i] = Classified{Item: item, Kind: adapter.Classify(item)}
	}
	return out
}
