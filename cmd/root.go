// Package cmd wires the term-prettify CLI.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "term-prettify",
	Short: "Detect and prettify structured terminal output",
	Long: `term-prettify segments terminal output into content blocks, detects
structured formats (json, diff, yaml, markdown, logs, code), and prints
them with syntax-aware styling.

Examples:
  git diff | term-prettify
  curl -s https://api.example.com/items | term-prettify
  term-prettify --raw < output.txt     # show what would be detected`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	SilenceUsage:      true,
}

var (
	flagRaw     bool
	flagVerbose bool
	flagWidth   int
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Emit debug logs to stderr")
	rootCmd.Flags().BoolVar(&flagRaw, "raw", false, "Report detections without rendering")
	rootCmd.Flags().IntVar(&flagWidth, "width", 0, "Override terminal width")
	rootCmd.RunE = runPrettify
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the CLI's logger. Debug level is opt-in; logs go to
// stderr so piped output stays clean.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func fail(err error) error {
	fmt.Fprintln(os.Stderr, "term-prettify:", err)
	return err
}
