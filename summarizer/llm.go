package summarizer

import (
	"context"
	"fmt"

	"github.com/richinex/condense/compaction"
	"github.com/richinex/condense/conversation"
	"github.com/richinex/condense/llm"
)

// LLM summarizes turns with a language model.
type LLM struct {
	Client  *llm.Client
	Adapter conversation.Adapter

	// Prompt overrides DefaultPrompt when set.
	Prompt string

	// MaxItemChars overrides DefaultMaxItemChars when positive.
	MaxItemChars int
}

// NewLLM creates an LLM summarizer.
func NewLLM(client *llm.Client, adapter conversation.Adapter) *LLM {
	return &LLM{Client: client, Adapter: adapter}
}

// Summarize implements compaction.Summarizer.
func (s *LLM) Summarize(ctx context.Context, turns []conversation.Turn, existing string) (string, error) {
	if s.Client == nil {
		return "", fmt.Errorf("summarizer has no LLM client")
	}

	maxItem := s.MaxItemChars
	if maxItem <= 0 {
		maxItem = DefaultMaxItemChars
	}

	prompt := BuildPrompt(s.Prompt, existing, RenderTranscript(turns, s.Adapter, maxItem))
	response, err := s.Client.Complete(ctx, SystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to summarize %d turns: %w", len(turns), err)
	}

	summary := ExtractSummary(response)
	if summary == "" {
		return "", compaction.ErrEmptySummary
	}
	return summary, nil
}

// Verify LLM.Summarize satisfies compaction.Summarizer
var _ compaction.Summarizer = (*LLM)(nil).Summarize
