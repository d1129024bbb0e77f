package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/richinex/condense/compaction"
)

// CompactionEvent records one compaction run against a stored session.
type CompactionEvent struct {
	ID              string
	SessionID       string
	Strategy        compaction.Strategy
	Compacted       bool
	OriginalTokens  int
	NewTokens       int
	TurnsSummarized int
	Summary         string
	CreatedAt       time.Time
}

// NewCompactionEvent creates an event for a compaction result.
func NewCompactionEvent(sessionID string, strategy compaction.Strategy, result compaction.Result) CompactionEvent {
	return CompactionEvent{
		ID:              uuid.NewString(),
		SessionID:       sessionID,
		Strategy:        strategy,
		Compacted:       result.Compacted,
		OriginalTokens:  result.OriginalTokens,
		NewTokens:       result.NewTokens,
		TurnsSummarized: result.TurnsSummarized,
		Summary:         result.SummaryText,
		CreatedAt:       time.Now().UTC(),
	}
}

// Saved returns the number of tokens removed by the run.
func (e CompactionEvent) Saved() int {
	return e.OriginalTokens - e.NewTokens
}
