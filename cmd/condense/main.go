// Package main provides the condense CLI entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/richinex/condense/cli"
	"github.com/richinex/condense/compaction"
	"github.com/richinex/condense/config"
	"github.com/richinex/condense/storage"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	provider   string
	configPath string
	verbose    bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "condense",
		Short: "Compact LLM conversation histories under a token budget",
		Long: `Compact provider-shaped conversation histories by summarizing older turns.

Strategies:
- per_turn: replace each old turn's assistant/tool activity with its own summary
- rolling_summary: fold all old turns into one leading summary message
- adaptive: per_turn first, one rolling pass if still over target

User messages and the most recent turns are always kept verbatim.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "History provider (anthropic, openai, deepseek, gemini)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log compaction events to stderr")

	rootCmd.AddCommand(compactCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(sessionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// compactionFlags are the per-command overrides shared by compact and session compact.
type compactionFlags struct {
	strategy     string
	target       int
	preserve     int
	maxIter      int
	summarizer   string
	summaryModel string
}

func (f *compactionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "Compaction strategy: per_turn, rolling_summary, adaptive")
	cmd.Flags().IntVar(&f.target, "target", 0, "Target context tokens")
	cmd.Flags().IntVar(&f.preserve, "preserve", 0, "Number of recent turns kept verbatim")
	cmd.Flags().IntVar(&f.maxIter, "max-iter", 0, "Maximum passes per strategy")
	cmd.Flags().StringVar(&f.summarizer, "summarizer", "", "Summarizer backend: llm, truncate")
	cmd.Flags().StringVar(&f.summaryModel, "summary-model", "", "Model used for summarization")
}

// apply overlays flags the user actually set onto settings.
func (f *compactionFlags) apply(cmd *cobra.Command, settings *config.Settings) error {
	flags := cmd.Flags()
	if flags.Changed("strategy") {
		strategy, err := compaction.ParseStrategy(f.strategy)
		if err != nil {
			return err
		}
		settings.Compaction.Strategy = strategy
	}
	if flags.Changed("target") {
		settings.Compaction.TargetContextTokens = f.target
	}
	if flags.Changed("preserve") {
		settings.Compaction.PreserveLastTurns = f.preserve
	}
	if flags.Changed("max-iter") {
		settings.Compaction.MaxIterations = f.maxIter
	}
	if flags.Changed("summarizer") {
		settings.Summarizer.Backend = f.summarizer
	}
	if flags.Changed("summary-model") {
		settings.Summarizer.Model = f.summaryModel
	}
	return nil
}

// newRunner loads settings, applies flag overrides and validates the result.
func newRunner(cmd *cobra.Command, flags *compactionFlags) (*cli.Runner, error) {
	settings, err := config.Load(provider, configPath)
	if err != nil {
		return nil, err
	}
	if flags != nil {
		if err := flags.apply(cmd, &settings); err != nil {
			return nil, err
		}
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return cli.NewRunner(settings, newLogger()), nil
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func compactCmd() *cobra.Command {
	var flags compactionFlags
	var outPath string

	cmd := &cobra.Command{
		Use:   "compact [file]",
		Short: "Compact a JSON history file (or stdin)",
		Long: `Compact a JSON array of provider-shaped messages.

Reads from the given file, or stdin when the file is "-" or omitted.
Writes the compacted history to --out (stdout by default) and a report to stderr.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner(cmd, &flags)
			if err != nil {
				return err
			}
			return runner.CompactFile(context.Background(), inputPath(args), outPath)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")

	return cmd
}

func statsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Show token metrics for a JSON history file (or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner(cmd, nil)
			if err != nil {
				return err
			}
			return runner.Stats(inputPath(args), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print metrics as JSON")

	return cmd
}

func sessionCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage stored conversation sessions",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", ".condense/condense.db", "Database path for storage")

	// withStore opens the session database for the duration of fn.
	withStore := func(cmd *cobra.Command, flags *compactionFlags, fn func(*cli.Runner, storage.Store) error) error {
		runner, err := newRunner(cmd, flags)
		if err != nil {
			return err
		}
		store, err := storage.OpenSqlite(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(runner, store)
	}

	importCmd := &cobra.Command{
		Use:   "import <id> <file>",
		Short: "Store a JSON history file as a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, nil, func(r *cli.Runner, s storage.Store) error {
				return r.ImportSession(context.Background(), s, args[0], args[1])
			})
		},
	}

	var compactFlags compactionFlags
	compactSessionCmd := &cobra.Command{
		Use:   "compact <id>",
		Short: "Compact a stored session and record the run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, &compactFlags, func(r *cli.Runner, s storage.Store) error {
				return r.CompactSession(context.Background(), s, args[0])
			})
		},
	}
	compactFlags.register(compactSessionCmd)

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a session's metrics and compaction log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, nil, func(r *cli.Runner, s storage.Store) error {
				return r.ShowSession(context.Background(), s, args[0])
			})
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, nil, func(r *cli.Runner, s storage.Store) error {
				return r.ListSessions(context.Background(), s)
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, nil, func(r *cli.Runner, s storage.Store) error {
				return r.DeleteSession(context.Background(), s, args[0])
			})
		},
	}

	cmd.AddCommand(importCmd, compactSessionCmd, showCmd, listCmd, deleteCmd)
	return cmd
}

func inputPath(args []string) string {
	if len(args) == 0 {
		return cli.StdinPath
	}
	return args[0]
}
