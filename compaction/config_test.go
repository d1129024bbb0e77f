package compaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetFor(t *testing.T) {
	tests := []struct {
		provider string
		max      int
		target   int
	}{
		{provider: "anthropic", max: 200000, target: 150000},
		{provider: "claude", max: 200000, target: 150000},
		{provider: "openai", max: 128000, target: 96000},
		{provider: "GPT", max: 128000, target: 96000},
		{provider: "gemini", max: 1048576, target: 786432},
		{provider: "deepseek", max: 64000, target: 48000},
		{provider: "mystery", max: 128000, target: 96000},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := PresetFor(tt.provider)
			assert.Equal(t, tt.max, cfg.MaxContextTokens)
			assert.Equal(t, tt.target, cfg.TargetContextTokens)
			assert.Equal(t, DefaultPreserveLastTurns, cfg.PreserveLastTurns)
			assert.Equal(t, StrategyAdaptive, cfg.Strategy)
			assert.Equal(t, DefaultMaxIterations, cfg.MaxIterations)
			assert.True(t, cfg.Enabled)
			require.NoError(t, cfg.Validate())
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{name: "zero max", modify: func(c *Config) { c.MaxContextTokens = 0 }},
		{name: "zero target", modify: func(c *Config) { c.TargetContextTokens = 0 }},
		{name: "target above max", modify: func(c *Config) { c.TargetContextTokens = c.MaxContextTokens + 1 }},
		{name: "negative preserve", modify: func(c *Config) { c.PreserveLastTurns = -1 }},
		{name: "negative iterations", modify: func(c *Config) { c.MaxIterations = -1 }},
		{name: "unknown strategy", modify: func(c *Config) { c.Strategy = "shred" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input    string
		expected Strategy
	}{
		{input: "per_turn", expected: StrategyPerTurn},
		{input: "rolling_summary", expected: StrategyRollingSummary},
		{input: "rolling", expected: StrategyRollingSummary},
		{input: "ADAPTIVE", expected: StrategyAdaptive},
		{input: "", expected: StrategyAdaptive},
	}

	for _, tt := range tests {
		got, err := ParseStrategy(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got)
	}

	_, err := ParseStrategy("nope")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEffectivePreserveCount(t *testing.T) {
	tests := []struct {
		name     string
		preserve int
		turns    int
		expected int
	}{
		{name: "within range", preserve: 2, turns: 5, expected: 2},
		{name: "zero raised to minimum", preserve: 0, turns: 5, expected: 1},
		{name: "too many leaves one to summarize", preserve: 20, turns: 5, expected: 4},
		{name: "two turns", preserve: 20, turns: 2, expected: 1},
		{name: "single turn", preserve: 20, turns: 1, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.PreserveLastTurns = tt.preserve
			assert.Equal(t, tt.expected, EffectivePreserveCount(cfg, tt.turns))
		})
	}
}

func TestWithMaxIterationsDoesNotModifyOriginal(t *testing.T) {
	cfg := DefaultConfig()
	forced := cfg.WithMaxIterations(1)

	assert.Equal(t, 1, forced.MaxIterations)
	assert.Equal(t, DefaultMaxIterations, cfg.MaxIterations)
	assert.Equal(t, 1, EffectiveMaxIterations(cfg.WithMaxIterations(0)))
}
