package compaction

import (
	"context"

	"github.com/richinex/condense/conversation"
)

// adaptive runs iterative per_turn compaction and, if the target is still not
// met, one rolling pass over its output. The candidate with fewer tokens
// wins; ties keep the per_turn result.
func (c *Compactor) adaptive(ctx context.Context, history []conversation.Item, cfg Config) Result {
	perTurn := c.iterate(ctx, history, cfg, StrategyPerTurn, c.perTurnPass)
	if perTurn.NewTokens <= cfg.TargetContextTokens {
		return perTurn
	}

	c.logger.Info("adaptive fallback",
		"tokens", perTurn.NewTokens,
		"target", cfg.TargetContextTokens,
	)
	rolling := c.iterate(ctx, perTurn.History, cfg.WithMaxIterations(1), StrategyRollingSummary, c.rollingPass)

	result := perTurn
	if rolling.Compacted && rolling.NewTokens < perTurn.NewTokens {
		result.History = rolling.History
		result.NewTokens = rolling.NewTokens
		result.Compacted = true
		result.SummaryText = rolling.SummaryText
	}
	result.OriginalTokens = perTurn.OriginalTokens
	result.TurnsSummarized = perTurn.TurnsSummarized + rolling.TurnsSummarized
	return result
}
