// Package config provides condense settings loaded from presets, a YAML file
// and environment variables.
//
// Settings are created via Load() which handles:
// - Provider preset lookup (context window and target)
// - Optional YAML overlay
// - Environment variable parsing with validation
//
// Command-line flags are applied by the caller on top of the loaded settings.

package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/richinex/condense/compaction"
	"gopkg.in/yaml.v3"
)

// DefaultProvider is used when neither the caller nor the file names one.
const DefaultProvider = "anthropic"

// Summarizer backends.
const (
	BackendLLM      = "llm"
	BackendTruncate = "truncate"
)

// Settings holds all application configuration.
type Settings struct {
	Provider   string            `yaml:"provider"`
	Compaction compaction.Config `yaml:"compaction"`
	Summarizer SummarizerConfig  `yaml:"summarizer"`
}

// SummarizerConfig holds the configuration of the summarizer used by the CLI.
type SummarizerConfig struct {
	// Backend is "llm" or "truncate".
	Backend string `yaml:"backend"`

	// Provider overrides the history provider for summarization calls.
	Provider string `yaml:"provider,omitempty"`

	// Model overrides the provider's default model.
	Model string `yaml:"model,omitempty"`

	MaxTokens     uint32  `yaml:"max_tokens"`
	Temperature   float64 `yaml:"temperature"`
	TruncateChars int     `yaml:"truncate_chars"`
}

// Defaults used when nothing overrides them.
const (
	DefaultSummaryMaxTokens   = 2048
	DefaultSummaryTemperature = 0.2
	DefaultTruncateChars      = 600
)

var supportedProviders = []string{"anthropic", "openai", "deepseek", "gemini"}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
}

// Defaults returns the settings for a provider before any file or
// environment overrides.
func Defaults(provider string) Settings {
	provider = NormalizeProvider(provider)
	return Settings{
		Provider:   provider,
		Compaction: compaction.PresetFor(provider),
		Summarizer: SummarizerConfig{
			Backend:       BackendLLM,
			MaxTokens:     DefaultSummaryMaxTokens,
			Temperature:   DefaultSummaryTemperature,
			TruncateChars: DefaultTruncateChars,
		},
	}
}

// Load builds settings for provider, overlaying the YAML file at path (if
// non-empty) and then CONDENSE_* environment variables.
// An empty provider falls back to the file's provider, then DefaultProvider.
func Load(provider, path string) (Settings, error) {
	var data []byte
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, fmt.Errorf("failed to read config file: %w", err)
		}
		data = raw
	}

	var head struct {
		Provider string `yaml:"provider"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	switch {
	case provider != "":
	case head.Provider != "":
		provider = head.Provider
	default:
		provider = DefaultProvider
	}

	settings := Defaults(provider)
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	settings.Provider = NormalizeProvider(provider)

	if err := applyEnv(&settings); err != nil {
		return Settings{}, err
	}
	if strategy, err := compaction.ParseStrategy(string(settings.Compaction.Strategy)); err == nil {
		settings.Compaction.Strategy = strategy
	}
	return settings, nil
}

// applyEnv overlays CONDENSE_* environment variables onto s.
func applyEnv(s *Settings) error {
	c := &s.Compaction
	var err error

	if c.MaxContextTokens, err = getEnvInt("CONDENSE_MAX_CONTEXT_TOKENS", c.MaxContextTokens); err != nil {
		return err
	}
	if c.TargetContextTokens, err = getEnvInt("CONDENSE_TARGET_TOKENS", c.TargetContextTokens); err != nil {
		return err
	}
	if c.PreserveLastTurns, err = getEnvInt("CONDENSE_PRESERVE_LAST_TURNS", c.PreserveLastTurns); err != nil {
		return err
	}
	if c.MaxIterations, err = getEnvInt("CONDENSE_MAX_ITERATIONS", c.MaxIterations); err != nil {
		return err
	}
	if c.Enabled, err = getEnvBool("CONDENSE_ENABLED", c.Enabled); err != nil {
		return err
	}
	if val := os.Getenv("CONDENSE_STRATEGY"); val != "" {
		strategy, err := compaction.ParseStrategy(val)
		if err != nil {
			return fmt.Errorf("invalid value for CONDENSE_STRATEGY: %w", err)
		}
		c.Strategy = strategy
	}
	if val := os.Getenv("CONDENSE_SUMMARY_MODEL"); val != "" {
		c.SummaryModel = val
	}

	sum := &s.Summarizer
	if val := os.Getenv("CONDENSE_SUMMARIZER"); val != "" {
		sum.Backend = strings.ToLower(val)
	}
	if sum.MaxTokens, err = getEnvUint32("CONDENSE_SUMMARY_MAX_TOKENS", sum.MaxTokens); err != nil {
		return err
	}
	if sum.Temperature, err = getEnvFloat64("CONDENSE_SUMMARY_TEMPERATURE", sum.Temperature); err != nil {
		return err
	}
	return nil
}

// Validate checks the settings for consistency.
func (s Settings) Validate() error {
	if !slices.Contains(supportedProviders, s.Provider) {
		return fmt.Errorf("%w: unknown provider %q", compaction.ErrInvalidConfig, s.Provider)
	}
	if err := s.Compaction.Validate(); err != nil {
		return err
	}

	switch s.Summarizer.Backend {
	case BackendLLM:
		if p := s.Summarizer.Provider; p != "" && !slices.Contains(supportedProviders, NormalizeProvider(p)) {
			return fmt.Errorf("%w: unknown summarizer provider %q", compaction.ErrInvalidConfig, p)
		}
		if s.Summarizer.MaxTokens == 0 {
			return fmt.Errorf("%w: summarizer max_tokens must be positive", compaction.ErrInvalidConfig)
		}
	case BackendTruncate:
		if s.Summarizer.TruncateChars <= 0 {
			return fmt.Errorf("%w: summarizer truncate_chars must be positive, got %d",
				compaction.ErrInvalidConfig, s.Summarizer.TruncateChars)
		}
	default:
		return fmt.Errorf("%w: unknown summarizer backend %q", compaction.ErrInvalidConfig, s.Summarizer.Backend)
	}
	return nil
}

// SummaryProvider returns the provider used for summarization calls.
func (s Settings) SummaryProvider() string {
	if s.Summarizer.Provider != "" {
		return NormalizeProvider(s.Summarizer.Provider)
	}
	return s.Provider
}

// SummaryModel returns the model used for summarization calls, or "" for
// the provider default. The summarizer section wins over compaction.summary_model.
func (s Settings) SummaryModel() string {
	if s.Summarizer.Model != "" {
		return s.Summarizer.Model
	}
	return s.Compaction.SummaryModel
}

// NormalizeProvider converts provider aliases to canonical names.
func NormalizeProvider(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// SupportedProviders returns the list of supported provider names.
func SupportedProviders() []string {
	return slices.Clone(supportedProviders)
}

// Environment variable helpers with proper error handling

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return b, nil
}
