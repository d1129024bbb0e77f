package summarizer

import (
	"context"
	"strings"

	"github.com/richinex/condense/compaction"
	"github.com/richinex/condense/conversation"
)

// DefaultTruncateChars is the summary length used by Truncating when MaxChars is unset.
const DefaultTruncateChars = 600

// Truncating is an offline summarizer that keeps the head of the rendered
// transcript. It is deterministic and makes no network calls.
type Truncating struct {
	Adapter  conversation.Adapter
	MaxChars int
}

// Summarize implements compaction.Summarizer.
func (s Truncating) Summarize(_ context.Context, turns []conversation.Turn, existing string) (string, error) {
	limit := s.MaxChars
	if limit <= 0 {
		limit = DefaultTruncateChars
	}

	var b strings.Builder
	if existing = strings.TrimSpace(existing); existing != "" {
		b.WriteString(existing)
		b.WriteString("\n")
	}
	b.WriteString(RenderTranscript(turns, s.Adapter, limit))

	return clip(strings.TrimSpace(b.String()), limit), nil
}

// Verify Truncating.Summarize satisfies compaction.Summarizer
var _ compaction.Summarizer = Truncating{}.Summarize
