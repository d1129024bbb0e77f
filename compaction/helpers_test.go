package compaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/richinex/condense/conversation"
	"github.com/richinex/condense/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var adapter = wire.OpenAI{}

// bulk is 1000 tokens of text.
var bulk = strings.Repeat("x", 3500)

func user(text string) conversation.Item {
	return conversation.Item{"role": "user", "content": text}
}

func assistant(text string) conversation.Item {
	return conversation.Item{"role": "assistant", "content": text}
}

func toolCall(id, name string) conversation.Item {
	return conversation.Item{
		"role": "assistant",
		"tool_calls": []any{
			map[string]any{
				"id":       id,
				"type":     "function",
				"function": map[string]any{"name": name, "arguments": `{"path":"."}`},
			},
		},
	}
}

func toolResult(id, text string) conversation.Item {
	return conversation.Item{"role": "tool", "tool_call_id": id, "content": text}
}

// history builds n turns, each a short question followed by a bulky answer.
func history(n int) []conversation.Item {
	var items []conversation.Item
	for i := 1; i <= n; i++ {
		items = append(items, user(fmt.Sprintf("question %d", i)), assistant(bulk))
	}
	return items
}

func config(strategy Strategy, preserve, target int) Config {
	cfg := DefaultConfig()
	cfg.Strategy = strategy
	cfg.PreserveLastTurns = preserve
	cfg.TargetContextTokens = target
	return cfg
}

// fakeSummarizer records calls and replies with a fixed summary.
type fakeSummarizer struct {
	reply    string
	failOn   map[int]bool // 1-based call numbers that fail
	panicOn  map[int]bool
	calls    int
	existing []string
	batches  [][]conversation.Turn
}

func (f *fakeSummarizer) summarize(_ context.Context, turns []conversation.Turn, existing string) (string, error) {
	f.calls++
	f.existing = append(f.existing, existing)
	f.batches = append(f.batches, turns)
	if f.panicOn[f.calls] {
		panic("summarizer exploded")
	}
	if f.failOn[f.calls] {
		return "", errors.New("rate limited")
	}
	return f.reply, nil
}

// recordingLogger captures event messages.
type recordingLogger struct {
	events []string
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.events = append(l.events, msg) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.events = append(l.events, msg) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.events = append(l.events, msg) }
func (l *recordingLogger) Error(msg string, args ...any) { l.events = append(l.events, msg) }

// assertSameSlice checks that got is the very slice passed in, not a copy.
func assertSameSlice(t *testing.T, want, got []conversation.Item) {
	t.Helper()
	require.Len(t, got, len(want))
	if len(want) > 0 {
		assert.True(t, &want[0] == &got[0], "expected the input slice to be returned unchanged")
	}
}
