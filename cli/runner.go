// Command execution for CLI commands.
//
// Information Hiding:
// - Summarizer and provider setup hidden
// - History file and session store I/O hidden
// - Report formatting hidden

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/richinex/condense/compaction"
	"github.com/richinex/condense/config"
	"github.com/richinex/condense/conversation"
	"github.com/richinex/condense/llm"
	"github.com/richinex/condense/storage"
	"github.com/richinex/condense/summarizer"
	"github.com/richinex/condense/wire"
)

// StdinPath selects standard input as the history source.
const StdinPath = "-"

// Runner executes CLI commands against loaded settings.
type Runner struct {
	Settings config.Settings
	Logger   compaction.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Summarize replaces the configured summarizer when set.
	Summarize compaction.Summarizer

	client *llm.Client
}

// NewRunner creates a runner writing to the process's standard streams.
func NewRunner(settings config.Settings, logger compaction.Logger) *Runner {
	return &Runner{
		Settings: settings,
		Logger:   logger,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// CompactFile compacts the history at inPath and writes the result to
// outPath, or to stdout when outPath is empty. The report goes to stderr.
func (r *Runner) CompactFile(ctx context.Context, inPath, outPath string) error {
	history, err := r.readHistory(inPath)
	if err != nil {
		return err
	}

	adapter, err := wire.ForProvider(r.Settings.Provider)
	if err != nil {
		return err
	}

	result, err := r.compact(ctx, adapter, history)
	if err != nil {
		return err
	}

	if err := r.writeHistory(outPath, result.History); err != nil {
		return err
	}
	r.printReport(result)
	return nil
}

// Stats prints token metrics for the history at path.
func (r *Runner) Stats(path string, asJSON bool) error {
	history, err := r.readHistory(path)
	if err != nil {
		return err
	}

	adapter, err := wire.ForProvider(r.Settings.Provider)
	if err != nil {
		return err
	}

	metrics := compaction.Measure(history, adapter)
	if asJSON {
		data, err := json.MarshalIndent(metrics, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
		fmt.Fprintln(r.Stdout, string(data))
		return nil
	}
	printMetrics(r.Stdout, metrics, r.Settings.Compaction)
	return nil
}

// ImportSession stores the history at path under sessionID.
func (r *Runner) ImportSession(ctx context.Context, store storage.HistoryStore, sessionID, path string) error {
	history, err := r.readHistory(path)
	if err != nil {
		return err
	}

	if err := store.Save(ctx, sessionID, r.Settings.Provider, history); err != nil {
		return fmt.Errorf("failed to import session: %w", err)
	}
	fmt.Fprintf(r.Stdout, "Imported %d items into session %s (%s)\n", len(history), sessionID, r.Settings.Provider)
	return nil
}

// CompactSession compacts a stored session in place and records the run.
// The session's stored provider selects the adapter; limits come from the settings.
func (r *Runner) CompactSession(ctx context.Context, store storage.Store, sessionID string) error {
	session, err := store.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	adapter, err := wire.ForProvider(session.Provider)
	if err != nil {
		return err
	}

	result, err := r.compact(ctx, adapter, session.Items)
	if err != nil {
		return err
	}

	if result.Compacted {
		if err := store.Save(ctx, sessionID, session.Provider, result.History); err != nil {
			return fmt.Errorf("failed to save compacted session: %w", err)
		}
	}

	event := storage.NewCompactionEvent(sessionID, r.Settings.Compaction.Strategy, result)
	if err := store.RecordEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to record compaction event: %w", err)
	}

	r.printReport(result)
	return nil
}

// ShowSession prints a stored session's metrics and its compaction log.
func (r *Runner) ShowSession(ctx context.Context, store storage.Store, sessionID string) error {
	session, err := store.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	adapter, err := wire.ForProvider(session.Provider)
	if err != nil {
		return err
	}

	events, err := store.Events(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load compaction events: %w", err)
	}

	fmt.Fprintf(r.Stdout, "Session: %s\n", session.ID)
	fmt.Fprintf(r.Stdout, "Provider: %s\n", session.Provider)
	fmt.Fprintf(r.Stdout, "Updated: %s\n\n", session.UpdatedAt.Format("2006-01-02 15:04:05"))
	printMetrics(r.Stdout, compaction.Measure(session.Items, adapter), r.Settings.Compaction)

	if len(events) == 0 {
		fmt.Fprintln(r.Stdout, "\nNo compaction runs.")
		return nil
	}

	fmt.Fprintln(r.Stdout, "\nCompaction runs:")
	for _, e := range events {
		status := "no-op"
		if e.Compacted {
			status = "compacted"
		}
		fmt.Fprintf(r.Stdout, "  %s  %-15s %-9s %d -> %d tokens, %d turns summarized  [%s]\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.Strategy, status,
			e.OriginalTokens, e.NewTokens, e.TurnsSummarized, e.ID)
	}
	return nil
}

// ListSessions prints all stored sessions.
func (r *Runner) ListSessions(ctx context.Context, store storage.HistoryStore) error {
	sessions, err := store.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(r.Stdout, "No sessions.")
		return nil
	}

	for _, s := range sessions {
		fmt.Fprintf(r.Stdout, "%-24s %-10s %5d items  %s\n",
			s.ID, s.Provider, s.ItemCount, s.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// DeleteSession deletes a stored session.
func (r *Runner) DeleteSession(ctx context.Context, store storage.HistoryStore, sessionID string) error {
	exists, err := store.Exists(ctx, sessionID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", storage.ErrSessionNotFound, sessionID)
	}

	if err := store.Delete(ctx, sessionID); err != nil {
		return err
	}
	fmt.Fprintf(r.Stdout, "Deleted session %s\n", sessionID)
	return nil
}

func (r *Runner) compact(ctx context.Context, adapter conversation.Adapter, history []conversation.Item) (compaction.Result, error) {
	summarize, err := r.summarizer(adapter)
	if err != nil {
		return compaction.Result{}, err
	}

	c := compaction.New(adapter, summarize, compaction.WithLogger(r.Logger))
	return c.Compact(ctx, history, r.Settings.Compaction), nil
}

// summarizer returns the summarizer for the configured backend.
func (r *Runner) summarizer(adapter conversation.Adapter) (compaction.Summarizer, error) {
	if r.Summarize != nil {
		return r.Summarize, nil
	}

	sum := r.Settings.Summarizer
	switch sum.Backend {
	case config.BackendTruncate:
		return summarizer.Truncating{Adapter: adapter, MaxChars: sum.TruncateChars}.Summarize, nil
	case config.BackendLLM:
		provider, err := createProvider(r.Settings)
		if err != nil {
			return nil, err
		}
		r.client = llm.NewClient(provider)
		return summarizer.NewLLM(r.client, adapter).Summarize, nil
	default:
		return nil, fmt.Errorf("%w: unknown summarizer backend %q", compaction.ErrInvalidConfig, sum.Backend)
	}
}

// createProvider builds the summarization provider, reading its API key from the environment.
func createProvider(settings config.Settings) (llm.Provider, error) {
	providerType, err := llm.ParseProviderType(settings.SummaryProvider())
	if err != nil {
		return nil, err
	}

	return providerType.
		Model(settings.SummaryModel()).
		MaxTokens(settings.Summarizer.MaxTokens).
		Temperature(float32(settings.Summarizer.Temperature)).
		FromEnv()
}

func (r *Runner) readHistory(path string) ([]conversation.Item, error) {
	var data []byte
	var err error
	if path == StdinPath || path == "" {
		data, err = io.ReadAll(r.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return conversation.ParseItems(data)
}

func (r *Runner) writeHistory(path string, history []conversation.Item) error {
	data, err := conversation.MarshalItems(history)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "" || path == StdinPath {
		_, err = r.Stdout.Write(data)
	} else {
		err = os.WriteFile(path, data, 0644)
	}
	if err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

func (r *Runner) printReport(result compaction.Result) {
	w := r.Stderr
	saved := result.OriginalTokens - result.NewTokens

	fmt.Fprintf(w, "\nCompaction (%s):\n", r.Settings.Compaction.Strategy)
	fmt.Fprintf(w, "  Compacted: %t\n", result.Compacted)
	fmt.Fprintf(w, "  Original tokens: %d\n", result.OriginalTokens)
	fmt.Fprintf(w, "  New tokens: %d\n", result.NewTokens)
	if saved > 0 {
		fmt.Fprintf(w, "  Saved: %d (%.1f%%)\n", saved, 100*float64(saved)/float64(result.OriginalTokens))
	}
	fmt.Fprintf(w, "  Turns summarized: %d\n", result.TurnsSummarized)

	if r.client != nil {
		usage, calls := r.client.Usage()
		if calls > 0 {
			fmt.Fprintf(w, "\nSummarizer usage (%s):\n", r.client.Provider().Model())
			fmt.Fprintf(w, "  LLM calls: %d\n", calls)
			fmt.Fprintf(w, "  Prompt tokens: %d\n", usage.PromptTokens)
			fmt.Fprintf(w, "  Completion tokens: %d\n", usage.CompletionTokens)
		}
	}
}

func printMetrics(w io.Writer, m compaction.Metrics, cfg compaction.Config) {
	fmt.Fprintf(w, "Items: %d\n", m.Items)
	fmt.Fprintf(w, "Turns: %d\n", m.Turns)
	fmt.Fprintf(w, "Summary items: %d\n", m.SummaryItems)
	fmt.Fprintf(w, "\nEstimated tokens:\n")
	fmt.Fprintf(w, "  User: %d\n", m.UserTokens)
	fmt.Fprintf(w, "  Assistant: %d\n", m.AssistantTokens)
	fmt.Fprintf(w, "  Tool calls: %d\n", m.ToolCallTokens)
	fmt.Fprintf(w, "  Tool results: %d\n", m.ToolResultTokens)
	fmt.Fprintf(w, "  Reasoning: %d\n", m.ReasoningTokens)
	if m.UnknownTokens > 0 {
		fmt.Fprintf(w, "  Other: %d\n", m.UnknownTokens)
	}
	fmt.Fprintf(w, "  Total: %d\n", m.TotalTokens)
	fmt.Fprintf(w, "\nContext: %.1f%% of %d (target %d)\n", m.UsagePercent(cfg), cfg.MaxContextTokens, cfg.TargetContextTokens)
	if m.NeedsCompaction(cfg) {
		fmt.Fprintln(w, "Compaction: needed")
	} else {
		fmt.Fprintln(w, "Compaction: not needed")
	}
}
