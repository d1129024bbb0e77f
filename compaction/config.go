package compaction

import (
	"fmt"
	"strings"
)

// Strategy selects how older turns are summarized.
type Strategy string

const (
	// StrategyPerTurn replaces each old turn's assistant/tool activity with its own summary.
	StrategyPerTurn Strategy = "per_turn"

	// StrategyRollingSummary folds all old turns into one leading summary message.
	StrategyRollingSummary Strategy = "rolling_summary"

	// StrategyAdaptive runs per_turn first and falls back to one rolling pass
	// when the target is still not met.
	StrategyAdaptive Strategy = "adaptive"
)

// ParseStrategy converts a string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyPerTurn:
		return StrategyPerTurn, nil
	case StrategyRollingSummary, "rolling":
		return StrategyRollingSummary, nil
	case StrategyAdaptive, "":
		return StrategyAdaptive, nil
	default:
		return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, s)
	}
}

// Default configuration values.
const (
	DefaultPreserveLastTurns = 20
	DefaultStrategy          = StrategyAdaptive
	DefaultMaxIterations     = 2

	// MinTurnsForCompaction is the fewest turns a history must have to be compacted.
	MinTurnsForCompaction = 2

	// MinTurnsToPreserve is the fewest recent turns always kept verbatim.
	MinTurnsToPreserve = 1
)

// Config holds compaction configuration. It is passed by value and never
// modified by the engine; effective values are derived by pure functions.
type Config struct {
	// MaxContextTokens is the provider's context window.
	MaxContextTokens int `yaml:"max_context_tokens"`

	// TargetContextTokens is both the trigger threshold and the goal:
	// histories at or under it are left alone.
	TargetContextTokens int `yaml:"target_context_tokens"`

	// PreserveLastTurns is how many recent turns are kept verbatim.
	PreserveLastTurns int `yaml:"preserve_last_turns"`

	Strategy Strategy `yaml:"strategy"`

	// MaxIterations bounds the number of passes per strategy.
	MaxIterations int `yaml:"max_iterations"`

	Enabled bool `yaml:"enabled"`

	// SummaryModel is passed through to summarizers; the engine ignores it.
	SummaryModel string `yaml:"summary_model,omitempty"`
}

// Preset holds the context limits for one provider.
type Preset struct {
	MaxContextTokens    int
	TargetContextTokens int
}

var presets = map[string]Preset{
	"anthropic": {MaxContextTokens: 200000, TargetContextTokens: 150000},
	"openai":    {MaxContextTokens: 128000, TargetContextTokens: 96000},
	"gemini":    {MaxContextTokens: 1048576, TargetContextTokens: 786432},
	"deepseek":  {MaxContextTokens: 64000, TargetContextTokens: 48000},
	"default":   {MaxContextTokens: 128000, TargetContextTokens: 96000},
}

// DefaultConfig returns the default configuration with the default preset limits.
func DefaultConfig() Config {
	return PresetFor("default")
}

// PresetFor returns the default configuration sized for a provider.
// Unknown providers get the default preset.
func PresetFor(provider string) Config {
	preset, ok := presets[normalizeProvider(provider)]
	if !ok {
		preset = presets["default"]
	}
	return Config{
		MaxContextTokens:    preset.MaxContextTokens,
		TargetContextTokens: preset.TargetContextTokens,
		PreserveLastTurns:   DefaultPreserveLastTurns,
		Strategy:            DefaultStrategy,
		MaxIterations:       DefaultMaxIterations,
		Enabled:             true,
	}
}

func normalizeProvider(provider string) string {
	switch p := strings.ToLower(strings.TrimSpace(provider)); p {
	case "claude":
		return "anthropic"
	case "gpt":
		return "openai"
	case "google":
		return "gemini"
	default:
		return p
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.MaxContextTokens <= 0 {
		return fmt.Errorf("%w: max_context_tokens must be positive, got %d", ErrInvalidConfig, c.MaxContextTokens)
	}
	if c.TargetContextTokens <= 0 {
		return fmt.Errorf("%w: target_context_tokens must be positive, got %d", ErrInvalidConfig, c.TargetContextTokens)
	}
	if c.TargetContextTokens > c.MaxContextTokens {
		return fmt.Errorf("%w: target_context_tokens (%d) exceeds max_context_tokens (%d)",
			ErrInvalidConfig, c.TargetContextTokens, c.MaxContextTokens)
	}
	if c.PreserveLastTurns < 0 {
		return fmt.Errorf("%w: preserve_last_turns must not be negative, got %d", ErrInvalidConfig, c.PreserveLastTurns)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("%w: max_iterations must not be negative, got %d", ErrInvalidConfig, c.MaxIterations)
	}
	if _, err := ParseStrategy(string(c.Strategy)); err != nil {
		return err
	}
	return nil
}

// WithMaxIterations returns a copy of c with MaxIterations set to n.
func (c Config) WithMaxIterations(n int) Config {
	c.MaxIterations = n
	return c
}

// EffectivePreserveCount clamps cfg.PreserveLastTurns to [MinTurnsToPreserve, turnCount-1]
// so that at least one turn is kept and at least one can be summarized.
func EffectivePreserveCount(cfg Config, turnCount int) int {
	n := max(cfg.PreserveLastTurns, MinTurnsToPreserve)
	n = min(n, turnCount-1)
	return max(n, 0)
}

// EffectiveMaxIterations returns the pass cap, at least 1.
func EffectiveMaxIterations(cfg Config) int {
	return max(cfg.MaxIterations, 1)
}
