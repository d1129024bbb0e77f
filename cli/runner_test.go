package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/richinex/condense/compaction"
	"github.com/richinex/condense/config"
	"github.com/richinex/condense/conversation"
	"github.com/richinex/condense/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bulkyHistory returns n OpenAI-shaped turns with large assistant replies.
func bulkyHistory(n int) []conversation.Item {
	var items []conversation.Item
	for i := 1; i <= n; i++ {
		items = append(items,
			conversation.Item{"role": "user", "content": "question " + string(rune('0'+i))},
			conversation.Item{"role": "assistant", "content": strings.Repeat("x", 3500)},
		)
	}
	return items
}

func historyJSON(t *testing.T, items []conversation.Item) []byte {
	t.Helper()
	data, err := conversation.MarshalItems(items)
	require.NoError(t, err)
	return data
}

func testSettings(target int) config.Settings {
	settings := config.Defaults("openai")
	settings.Compaction.TargetContextTokens = target
	settings.Compaction.PreserveLastTurns = 1
	settings.Compaction.Strategy = compaction.StrategyPerTurn
	settings.Summarizer.Backend = config.BackendTruncate
	settings.Summarizer.TruncateChars = 80
	return settings
}

func newTestRunner(settings config.Settings, stdin []byte) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	r := &Runner{
		Settings: settings,
		Stdin:    bytes.NewReader(stdin),
		Stdout:   &stdout,
		Stderr:   &stderr,
	}
	return r, &stdout, &stderr
}

func TestCompactFileFromStdin(t *testing.T) {
	input := bulkyHistory(4)
	r, stdout, stderr := newTestRunner(testSettings(100), historyJSON(t, input))

	require.NoError(t, r.CompactFile(context.Background(), StdinPath, ""))

	out, err := conversation.ParseItems(stdout.Bytes())
	require.NoError(t, err)
	assert.Len(t, out, len(input))
	assert.Equal(t, input[len(input)-1], out[len(out)-1], "last turn is preserved")
	assert.True(t, compaction.IsSummary(out[1].String("content")))

	report := stderr.String()
	assert.Contains(t, report, "Compacted: true")
	assert.Contains(t, report, "Turns summarized: 3")
	assert.Contains(t, report, "Saved:")
}

func TestCompactFileKeepsSystemPrompt(t *testing.T) {
	system := conversation.Item{"role": "system", "content": "You are a code reviewer."}
	input := append([]conversation.Item{system}, bulkyHistory(4)...)
	r, stdout, stderr := newTestRunner(testSettings(100), historyJSON(t, input))

	require.NoError(t, r.CompactFile(context.Background(), StdinPath, ""))

	out, err := conversation.ParseItems(stdout.Bytes())
	require.NoError(t, err)
	require.Len(t, out, len(input))
	assert.Equal(t, system, out[0])
	assert.True(t, compaction.IsSummary(out[2].String("content")))
	assert.Contains(t, stderr.String(), "Compacted: true")
}

func TestCompactFileToOutputFile(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "history.json")
	outPath := filepath.Join(dir, "compacted.json")
	require.NoError(t, os.WriteFile(inPath, historyJSON(t, bulkyHistory(3)), 0o644))

	r, stdout, _ := newTestRunner(testSettings(100), nil)
	require.NoError(t, r.CompactFile(context.Background(), inPath, outPath))

	assert.Empty(t, stdout.String())
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	out, err := conversation.ParseItems(data)
	require.NoError(t, err)
	assert.Len(t, out, 6)
}

func TestCompactFileUnderTarget(t *testing.T) {
	input := bulkyHistory(2)
	r, stdout, stderr := newTestRunner(testSettings(100000), historyJSON(t, input))

	require.NoError(t, r.CompactFile(context.Background(), StdinPath, ""))

	out, err := conversation.ParseItems(stdout.Bytes())
	require.NoError(t, err)
	assert.Equal(t, input, out)
	assert.Contains(t, stderr.String(), "Compacted: false")
}

func TestCompactFileSummarizerFailureKeepsHistory(t *testing.T) {
	input := bulkyHistory(3)
	r, stdout, stderr := newTestRunner(testSettings(100), historyJSON(t, input))
	r.Summarize = func(context.Context, []conversation.Turn, string) (string, error) {
		return "", errors.New("rate limited")
	}

	require.NoError(t, r.CompactFile(context.Background(), StdinPath, ""))

	out, err := conversation.ParseItems(stdout.Bytes())
	require.NoError(t, err)
	assert.Equal(t, input, out)
	assert.Contains(t, stderr.String(), "Compacted: false")
}

func TestCompactFileLLMBackendRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	settings := testSettings(100)
	settings.Summarizer.Backend = config.BackendLLM

	r, _, _ := newTestRunner(settings, historyJSON(t, bulkyHistory(3)))
	err := r.CompactFile(context.Background(), StdinPath, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestCompactFileInvalidJSON(t *testing.T) {
	r, _, _ := newTestRunner(testSettings(100), []byte(`{"role": "user"}`))
	assert.Error(t, r.CompactFile(context.Background(), StdinPath, ""))
}

func TestCompactFileMissingFile(t *testing.T) {
	r, _, _ := newTestRunner(testSettings(100), nil)
	err := r.CompactFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"), "")
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	r, stdout, _ := newTestRunner(testSettings(100), historyJSON(t, bulkyHistory(2)))

	require.NoError(t, r.Stats(StdinPath, false))

	out := stdout.String()
	assert.Contains(t, out, "Items: 4")
	assert.Contains(t, out, "Turns: 2")
	assert.Contains(t, out, "Compaction: needed")
}

func TestStatsJSON(t *testing.T) {
	r, stdout, _ := newTestRunner(testSettings(100), historyJSON(t, bulkyHistory(2)))

	require.NoError(t, r.Stats(StdinPath, true))

	var metrics compaction.Metrics
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &metrics))
	assert.Equal(t, 4, metrics.Items)
	assert.Equal(t, 2, metrics.Turns)
	assert.Equal(t, metrics.UserTokens+metrics.AssistantTokens, metrics.TotalTokens)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemoryStorage()
	r, stdout, stderr := newTestRunner(testSettings(100), historyJSON(t, bulkyHistory(4)))

	require.NoError(t, r.ImportSession(ctx, store, "demo", StdinPath))
	assert.Contains(t, stdout.String(), "Imported 8 items into session demo (openai)")

	require.NoError(t, r.CompactSession(ctx, store, "demo"))
	assert.Contains(t, stderr.String(), "Compacted: true")

	session, err := store.Load(ctx, "demo")
	require.NoError(t, err)
	assert.True(t, compaction.IsSummary(session.Items[1].String("content")))

	events, err := store.Events(ctx, "demo")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Compacted)
	assert.Equal(t, 3, events[0].TurnsSummarized)

	stdout.Reset()
	require.NoError(t, r.ShowSession(ctx, store, "demo"))
	assert.Contains(t, stdout.String(), "Session: demo")
	assert.Contains(t, stdout.String(), "Compaction runs:")
	assert.Contains(t, stdout.String(), events[0].ID)

	stdout.Reset()
	require.NoError(t, r.ListSessions(ctx, store))
	assert.Contains(t, stdout.String(), "demo")

	require.NoError(t, r.DeleteSession(ctx, store, "demo"))
	err = r.DeleteSession(ctx, store, "demo")
	assert.True(t, errors.Is(err, storage.ErrSessionNotFound))
}

func TestCompactSessionNoOpIsRecorded(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemoryStorage()
	input := bulkyHistory(2)
	require.NoError(t, store.Save(ctx, "small", "openai", input))

	r, _, _ := newTestRunner(testSettings(100000), nil)
	require.NoError(t, r.CompactSession(ctx, store, "small"))

	session, err := store.Load(ctx, "small")
	require.NoError(t, err)
	assert.Equal(t, input, session.Items)

	events, err := store.Events(ctx, "small")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Compacted)
}

func TestSessionCommandsMissingSession(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemoryStorage()
	r, stdout, _ := newTestRunner(testSettings(100), nil)

	assert.True(t, errors.Is(r.CompactSession(ctx, store, "ghost"), storage.ErrSessionNotFound))
	assert.True(t, errors.Is(r.ShowSession(ctx, store, "ghost"), storage.ErrSessionNotFound))

	require.NoError(t, r.ListSessions(ctx, store))
	assert.Contains(t, stdout.String(), "No sessions.")
}
