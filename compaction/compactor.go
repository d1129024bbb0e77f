package compaction

import (
	"context"
	"fmt"
	"strings"

	"github.com/richinex/condense/conversation"
	"github.com/richinex/condense/tokens"
)

// Summarizer condenses turns into summary text. existingSummary carries a
// previous summary to build on, or "" when there is none.
type Summarizer func(ctx context.Context, turns []conversation.Turn, existingSummary string) (string, error)

// Result contains the outcome of a compaction call.
type Result struct {
	// History is the compacted history, or the input slice itself when
	// Compacted is false.
	History []conversation.Item

	Compacted       bool
	TurnsSummarized int
	OriginalTokens  int
	NewTokens       int

	// SummaryText is the most recent summary produced, or "".
	SummaryText string
}

// Option configures a Compactor.
type Option func(*Compactor)

// WithLogger sets the event logger.
func WithLogger(logger Logger) Option {
	return func(c *Compactor) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Compactor runs compaction strategies over histories of one provider.
// It holds no per-history state and may be reused across calls.
type Compactor struct {
	adapter   conversation.Adapter
	summarize Summarizer
	logger    Logger
}

// New creates a Compactor for the given adapter and summarizer.
func New(adapter conversation.Adapter, summarize Summarizer, opts ...Option) *Compactor {
	c := &Compactor{
		adapter:   adapter,
		summarize: summarize,
		logger:    noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compact is a convenience wrapper around New(adapter, summarize).Compact.
func Compact(ctx context.Context, adapter conversation.Adapter, history []conversation.Item, cfg Config, summarize Summarizer) Result {
	return New(adapter, summarize).Compact(ctx, history, cfg)
}

// Compact reduces history toward cfg.TargetContextTokens using cfg.Strategy.
// It never fails: any problem leaves the history unchanged.
func (c *Compactor) Compact(ctx context.Context, history []conversation.Item, cfg Config) Result {
	original := tokens.EstimateAll(history)
	if reason, skip := skipReason(cfg, original); skip {
		c.logger.Debug("compaction skipped",
			"reason", reason,
			"tokens", original,
			"target", cfg.TargetContextTokens,
		)
		return unchanged(history, original)
	}

	var result Result
	switch cfg.Strategy {
	case StrategyPerTurn:
		result = c.iterate(ctx, history, cfg, StrategyPerTurn, c.perTurnPass)
	case StrategyRollingSummary:
		result = c.iterate(ctx, history, cfg, StrategyRollingSummary, c.rollingPass)
	case StrategyAdaptive, "":
		result = c.adaptive(ctx, history, cfg)
	default:
		c.logger.Warn("unknown strategy, using adaptive", "strategy", string(cfg.Strategy))
		result = c.adaptive(ctx, history, cfg)
	}

	c.logger.Info("compaction finished",
		"provider", c.adapter.Name(),
		"strategy", string(cfg.Strategy),
		"compacted", result.Compacted,
		"turns_summarized", result.TurnsSummarized,
		"original_tokens", result.OriginalTokens,
		"new_tokens", result.NewTokens,
	)
	return result
}

type passFunc func(ctx context.Context, history []conversation.Item, cfg Config) Result

// iterate runs pass repeatedly on its own output while the history is over
// target, up to EffectiveMaxIterations passes. It stops on the first pass
// that does not compact or does not shrink the history.
func (c *Compactor) iterate(ctx context.Context, history []conversation.Item, cfg Config, strategy Strategy, pass passFunc) Result {
	original := tokens.EstimateAll(history)
	result := unchanged(history, original)

	current, currentTokens := history, original
	for i := 0; i < EffectiveMaxIterations(cfg); i++ {
		if _, skip := skipReason(cfg, currentTokens); skip {
			break
		}

		r := pass(ctx, current, cfg)
		if !r.Compacted || r.NewTokens >= currentTokens {
			c.logger.Debug("compaction stopped",
				"strategy", string(strategy),
				"iteration", i+1,
				"compacted", r.Compacted,
			)
			break
		}

		c.logger.Info("compaction pass",
			"strategy", string(strategy),
			"iteration", i+1,
			"turns_summarized", r.TurnsSummarized,
			"tokens_before", currentTokens,
			"tokens_after", r.NewTokens,
		)

		current, currentTokens = r.History, r.NewTokens
		result.Compacted = true
		result.TurnsSummarized += r.TurnsSummarized
		if r.SummaryText != "" {
			result.SummaryText = r.SummaryText
		}
	}

	result.History = current
	result.NewTokens = currentTokens
	return result
}

// splitPreamble separates leading unclassifiable items, such as system
// prompts, from the rest of history. The preamble is carried through every
// pass untouched.
func (c *Compactor) splitPreamble(history []conversation.Item) (preamble, body []conversation.Item) {
	n := 0
	for n < len(history) && c.adapter.Classify(history[n]) == conversation.KindUnknown {
		n++
	}
	return history[:n:n], history[n:]
}

// segment splits a preamble-free body into turns. Unclassifiable items inside
// the body stay in their turn.
func (c *Compactor) segment(body []conversation.Item) []conversation.Turn {
	turns, _ := SegmentWithReport(body, c.adapter, c.logger)
	return turns
}

// callSummarizer invokes the Summarizer, converting errors, panics, and blank
// output into a *SummarizerError.
func (c *Compactor) callSummarizer(ctx context.Context, op string, turn int, turns []conversation.Turn, existing string) (summary string, err error) {
	defer func() {
		if r := recover(); r != nil {
			summary = ""
			err = &SummarizerError{Op: op, Turn: turn, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if c.summarize == nil {
		return "", &SummarizerError{Op: op, Turn: turn, Err: fmt.Errorf("no summarizer configured")}
	}

	summary, err = c.summarize(ctx, turns, existing)
	if err != nil {
		return "", &SummarizerError{Op: op, Turn: turn, Err: err}
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", &SummarizerError{Op: op, Turn: turn, Err: ErrEmptySummary}
	}
	return summary, nil
}

func skipReason(cfg Config, tokenCount int) (string, bool) {
	if !cfg.Enabled {
		return "disabled", true
	}
	if tokenCount <= cfg.TargetContextTokens {
		return "under target", true
	}
	return "", false
}

func unchanged(history []conversation.Item, tokenCount int) Result {
	return Result{
		History:        history,
		OriginalTokens: tokenCount,
		NewTokens:      tokenCount,
	}
}
