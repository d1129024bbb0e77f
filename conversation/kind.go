package conversation

// Kind is the tagged-variant classification of an Item.
type Kind int

const (
	// KindUnknown marks items an adapter could not classify.
	KindUnknown Kind = iota
	// KindUser is a genuine user message. It opens a turn.
	KindUser
	// KindAssistant is assistant text output.
	KindAssistant
	// KindToolCall is an assistant request to run a tool.
	KindToolCall
	// KindToolResult is the output of a tool, echoed back to the model.
	KindToolResult
	// KindReasoning is model reasoning or thinking content.
	KindReasoning
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindAssistant:
		return "assistant"
	case KindToolCall:
		return "tool_call"
	case KindToolResult:
		return "tool_result"
	case KindReasoning:
		return "reasoning"
	default:
		return "unknown"
	}
}

// IsTurnContent reports whether the kind belongs after a user message
// inside a turn.
func (k Kind) IsTurnContent() bool {
	switch k {
	case KindAssistant, KindToolCall, KindToolResult, KindReasoning:
		return true
	default:
		return false
	}
}

// Classified pairs an item with its classification, computed once.
type Classified struct {
	Item Item
	Kind Kind
}
