package compaction

import (
	"context"
	"strings"

	"github.com/richinex/condense/conversation"
	"github.com/richinex/condense/tokens"
)

// perTurnPass summarizes each selected turn's activity separately. A failed
// turn is kept as it was and the sweep continues.
func (c *Compactor) perTurnPass(ctx context.Context, history []conversation.Item, cfg Config) Result {
	original := tokens.EstimateAll(history)
	if _, skip := skipReason(cfg, original); skip {
		return unchanged(history, original)
	}

	preamble, body := c.splitPreamble(history)
	turns := c.segment(body)
	_, remaining := detachSummary(turns, c.adapter)
	if len(remaining) < MinTurnsForCompaction {
		return unchanged(history, original)
	}

	sel := SelectTargets(turns, EffectivePreserveCount(cfg, len(remaining)), c.adapter)
	if len(sel.ToSummarize) == 0 {
		return unchanged(history, original)
	}

	rebuilt := make([]conversation.Turn, 0, len(turns))
	if sel.ExistingSummary != nil {
		rebuilt = append(rebuilt, *sel.ExistingSummary)
	}

	summarized := 0
	lastSummary := ""
	for i, turn := range sel.ToSummarize {
		replaced, summary, ok := c.summarizeTurn(ctx, i, turn)
		if ok {
			summarized++
			lastSummary = summary
		}
		rebuilt = append(rebuilt, replaced)
	}
	rebuilt = append(rebuilt, sel.ToPreserve...)

	if summarized == 0 {
		return unchanged(history, original)
	}

	newHistory := append(preamble, Flatten(rebuilt)...)
	newTokens := tokens.EstimateAll(newHistory)
	if newTokens >= original {
		c.logger.Info("per-turn pass rejected",
			"tokens_before", original,
			"tokens_after", newTokens,
		)
		return unchanged(history, original)
	}

	return Result{
		History:         newHistory,
		Compacted:       true,
		TurnsSummarized: summarized,
		OriginalTokens:  original,
		NewTokens:       newTokens,
		SummaryText:     lastSummary,
	}
}

// summarizeTurn replaces a turn's unsummarized activity with one summary
// message, followed by any unclassifiable items the turn held. The turn is
// returned unchanged with ok=false when there is nothing new to summarize or
// the Summarizer fails.
func (c *Compactor) summarizeTurn(ctx context.Context, index int, turn conversation.Turn) (conversation.Turn, string, bool) {
	if !turn.HasActivity() {
		return turn, "", false
	}

	rest, pinned := splitPinned(turn, c.adapter)
	var previous []string
	var fresh []conversation.Item
	for _, item := range rest.AssistantAndTools {
		if text := c.adapter.ExtractText(item); IsSummary(text) {
			previous = append(previous, StripMarker(text))
			continue
		}
		fresh = append(fresh, item)
	}
	if len(fresh) == 0 {
		return turn, "", false
	}

	existing := strings.Join(previous, "\n\n")
	pending := conversation.Turn{UserMessage: turn.UserMessage, AssistantAndTools: fresh}
	pending.EstimatedTokens = estimateTurn(pending)

	summary, err := c.callSummarizer(ctx, string(StrategyPerTurn), index, []conversation.Turn{pending}, existing)
	if err != nil {
		c.logger.Warn("summarizer failed",
			"strategy", string(StrategyPerTurn),
			"turn", index,
			"error", err,
		)
		return turn, "", false
	}

	replaced := conversation.Turn{
		UserMessage:       turn.UserMessage,
		AssistantAndTools: append([]conversation.Item{c.adapter.BuildSummaryMessage(PerTurnText(summary, existing != ""))}, pinned...),
	}
	replaced.EstimatedTokens = estimateTurn(replaced)
	return replaced, summary, true
}
