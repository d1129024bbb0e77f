package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProviderType(t *testing.T) {
	tests := []struct {
		input    string
		expected ProviderType
	}{
		{input: "openai", expected: ProviderOpenAI},
		{input: "GPT", expected: ProviderOpenAI},
		{input: "anthropic", expected: ProviderAnthropic},
		{input: "claude", expected: ProviderAnthropic},
		{input: "deepseek", expected: ProviderDeepSeek},
		{input: "gemini", expected: ProviderGemini},
		{input: " google ", expected: ProviderGemini},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProviderType(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ParseProviderType("mistral")
	assert.Error(t, err)
}

func TestProviderBuilder(t *testing.T) {
	assert.Equal(t, ModelAnthropicClaudeHaiku45, NewProviderBuilder(ProviderAnthropic).ResolvedModel())
	assert.Equal(t, "custom", ProviderOpenAI.Model("custom").ResolvedModel())

	provider, err := ProviderDeepSeek.Model("").MaxTokens(512).Temperature(0).APIKey("sk-test")
	require.NoError(t, err)
	assert.Equal(t, "deepseek", provider.Name())
	assert.Equal(t, ModelDeepSeekChat, provider.Model())
}

func TestProviderFromEnvRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := ProviderOpenAI.FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	t.Setenv("OPENAI_API_KEY", "sk-test")
	provider, err := ProviderOpenAI.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "openai", provider.Name())
}
