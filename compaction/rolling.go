package compaction

import (
	"context"

	"github.com/richinex/condense/conversation"
	"github.com/richinex/condense/tokens"
)

// rollingPass folds every selected turn into one summary message placed after
// the preamble. Selected user messages, their unclassifiable items and the
// preserved turns are kept verbatim.
func (c *Compactor) rollingPass(ctx context.Context, history []conversation.Item, cfg Config) Result {
	original := tokens.EstimateAll(history)
	if _, skip := skipReason(cfg, original); skip {
		return unchanged(history, original)
	}

	preamble, body := c.splitPreamble(history)
	existingText := ""
	if len(body) > 0 {
		if text := c.adapter.ExtractText(body[0]); IsRollingSummary(text) {
			existingText = StripMarker(text)
			body = body[1:]
		}
	}

	turns := c.segment(body)
	_, remaining := detachSummary(turns, c.adapter)
	if len(remaining) < MinTurnsForCompaction {
		return unchanged(history, original)
	}

	sel := SelectTargets(turns, EffectivePreserveCount(cfg, len(remaining)), c.adapter)

	batch := make([]conversation.Turn, len(sel.ToSummarize))
	pinned := make([][]conversation.Item, len(sel.ToSummarize))
	active := 0
	for i, t := range sel.ToSummarize {
		batch[i], pinned[i] = splitPinned(t, c.adapter)
		if batch[i].HasActivity() {
			active++
		}
	}
	if active == 0 {
		return unchanged(history, original)
	}

	summary, err := c.callSummarizer(ctx, string(StrategyRollingSummary), -1, batch, existingText)
	if err != nil {
		c.logger.Warn("summarizer failed",
			"strategy", string(StrategyRollingSummary),
			"turns", len(sel.ToSummarize),
			"error", err,
		)
		return unchanged(history, original)
	}

	newHistory := append(preamble, c.adapter.BuildRollingSummaryMessage(RollingText(summary)))
	if sel.ExistingSummary != nil {
		newHistory = append(newHistory, sel.ExistingSummary.Items()...)
	}
	for i, t := range sel.ToSummarize {
		newHistory = append(newHistory, t.UserMessage)
		newHistory = append(newHistory, pinned[i]...)
	}
	newHistory = append(newHistory, Flatten(sel.ToPreserve)...)

	newTokens := tokens.EstimateAll(newHistory)
	if newTokens >= original {
		c.logger.Info("rolling summary rejected",
			"tokens_before", original,
			"tokens_after", newTokens,
		)
		return unchanged(history, original)
	}

	return Result{
		History:         newHistory,
		Compacted:       true,
		TurnsSummarized: active,
		OriginalTokens:  original,
		NewTokens:       newTokens,
		SummaryText:     summary,
	}
}
