// Client - Simple wrapper around providers.

package llm

import (
	"context"
	"fmt"
	"sync"
)

// Client wraps a Provider and keeps a running total of token usage.
type Client struct {
	provider Provider

	mu    sync.Mutex
	usage Usage
	calls int
}

// NewClient creates a new LLM client from a provider.
func NewClient(provider Provider) *Client {
	return &Client{provider: provider}
}

// Chat sends a chat completion request and returns just the content.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	response, err := c.provider.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	c.record(response.Usage)
	return response.Content, nil
}

// Complete sends a single prompt with an optional system prompt.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	messages := make([]Message, 0, 2)
	if system != "" {
		messages = append(messages, SystemMessage(system))
	}
	messages = append(messages, UserMessage(prompt))

	content, err := c.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", c.provider.Name(), err)
	}
	return content, nil
}

// Usage returns the accumulated token usage and number of successful calls.
func (c *Client) Usage() (Usage, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage, c.calls
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}

func (c *Client) record(usage *Usage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.usage.Add(usage)
}
