package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	reply    string
	err      error
	received [][]Message
}

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub-1" }

func (s *stubProvider) Chat(_ context.Context, messages []Message) (Response, error) {
	s.received = append(s.received, messages)
	if s.err != nil {
		return Response{}, s.err
	}
	return Response{
		Content: s.reply,
		Usage:   &Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

func TestClientComplete(t *testing.T) {
	stub := &stubProvider{reply: "done"}
	client := NewClient(stub)

	got, err := client.Complete(context.Background(), "be brief", "summarize this")
	require.NoError(t, err)
	assert.Equal(t, "done", got)
	assert.Equal(t, []Message{SystemMessage("be brief"), UserMessage("summarize this")}, stub.received[0])

	_, err = client.Complete(context.Background(), "", "again")
	require.NoError(t, err)
	assert.Equal(t, []Message{UserMessage("again")}, stub.received[1])

	usage, calls := client.Usage()
	assert.Equal(t, 2, calls)
	assert.Equal(t, Usage{PromptTokens: 20, CompletionTokens: 10, TotalTokens: 30}, usage)
}

func TestClientCompleteWrapsErrors(t *testing.T) {
	cause := errors.New("overloaded")
	client := NewClient(&stubProvider{err: cause})

	_, err := client.Complete(context.Background(), "", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "stub completion failed")

	_, calls := client.Usage()
	assert.Equal(t, 0, calls)
}

func TestSplitSystem(t *testing.T) {
	system, rest := splitSystem([]Message{
		SystemMessage("one"),
		UserMessage("hi"),
		SystemMessage("two"),
		AssistantMessage("hello"),
	})

	assert.Equal(t, "one\n\ntwo", system)
	assert.Equal(t, []Message{UserMessage("hi"), AssistantMessage("hello")}, rest)
}
