package cmd

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/samsaffron/term-prettify/internal/config"
	"github.com/samsaffron/term-prettify/internal/prettify"
	"github.com/samsaffron/term-prettify/internal/prettify/formats"
)

// runPrettify reads stdin through the pipeline and prints each detected
// block's rendered view.
func runPrettify(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}

	opts := cfg.Prettify.PipelineOptions(logger)
	opts.TerminalWidth = terminalWidth()
	if flagWidth > 0 {
		opts.TerminalWidth = flagWidth
	}

	pipeline := prettify.NewPipeline(opts)
	formats.RegisterAll(pipeline.Registry())
	pipeline.SetEnabled(cfg.Prettify.Enabled)
	pipeline.ClaudeCode().OnProcessChange(os.Getenv, "")

	var nextID uint64
	emit := func() {
		for _, pb := range pipeline.ActiveBlocks() {
			if pb.BlockID < nextID {
				continue
			}
			printBlock(pb, opts.Theme, opts.TerminalWidth)
			nextID = pb.BlockID + 1
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	row := 0
	for scanner.Scan() {
		pipeline.ProcessOutput(scanner.Text(), row)
		pipeline.CheckDebounce(time.Now())
		row++
		emit()
	}
	if err := scanner.Err(); err != nil {
		return fail(fmt.Errorf("reading stdin: %w", err))
	}
	pipeline.Flush()
	emit()

	if flagVerbose {
		stats := pipeline.RenderCacheStats()
		logger.Debug("render cache", "hits", stats.Hits, "misses", stats.Misses, "evictions", stats.Evictions)
	}
	return nil
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

func printBlock(pb *prettify.PrettifiedBlock, theme *prettify.Theme, width int) {
	out := termenv.NewOutput(os.Stdout)
	if flagRaw {
		fmt.Fprintf(out, "block %d rows [%d,%d) format=%s confidence=%.2f\n",
			pb.BlockID,
			pb.Buffer.Source().StartRow,
			pb.Buffer.Source().EndRow,
			pb.Detection.FormatID,
			pb.Detection.Confidence)
		return
	}
	if width > 60 {
		width = 60
	}
	fmt.Fprintln(out, theme.BadgeLine(pb.Detection.FormatID, width).ANSI())
	for _, line := range pb.Buffer.DisplayLines() {
		fmt.Fprintln(out, line.ANSI())
	}
}
