package conversation

// Turn is one user message plus all assistant/tool activity up to the
// next user message.
type Turn struct {
	UserMessage       Item
	AssistantAndTools []Item
	EstimatedTokens   int
}

// Items returns the turn's items in order: the user message first.
func (t Turn) Items() []Item {
	items := make([]Item, 0, 1+len(t.AssistantAndTools))
	items = append(items, t.UserMessage)
	items = append(items, t.AssistantAndTools...)
	return items
}

// HasActivity reports whether the turn carries any assistant/tool content.
func (t Turn) HasActivity() bool {
	return len(t.AssistantAndTools) > 0
}
