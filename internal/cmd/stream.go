package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/kenfdev/cc-tail/internal/streammode"
)

var streamFlags struct {
	file    string
	replay  int
	verbose bool
	theme   string
}

func newStreamCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stream",
		Short:         "Tail a single JSONL log file to stdout, non-interactively",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, args []string) error {
			return runStream(c)
		},
	}

	cmd.Flags().StringVar(&streamFlags.file, "file", "", "path to a specific .jsonl file to tail (required)")
	cmd.Flags().IntVar(&streamFlags.replay, "replay", 20, "number of visible messages to replay before live tailing")
	cmd.Flags().BoolVar(&streamFlags.verbose, "verbose", false, "write parse errors and watcher diagnostics to stderr")
	cmd.Flags().StringVar(&streamFlags.theme, "theme", "", "color theme for ANSI output: dark or light")
	cmd.MarkFlagRequired("file")

	return cmd
}

// runStream replays then live-tails streamFlags.file until SIGINT/SIGTERM.
// A missing file returns streammode.ErrFileNotFound; any other failure of
// streammode.Run (opening the file, starting the watcher) is returned
// wrapped. Either causes exit 1. A signal or broken pipe is a clean,
// zero-exit shutdown.
func runStream(c *cobra.Command) error {
	rootFlags.verbose = rootFlags.verbose || streamFlags.verbose
	if streamFlags.theme != "" {
		rootFlags.theme = streamFlags.theme
	}
	logger := newLogger()
	cfg := buildConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scfg := streammode.Config{
		Path:        streamFlags.file,
		ReplayCount: streamFlags.replay,
		Verbose:     streamFlags.verbose,
		Theme:       cfg.Theme,
		IsTTY:       isatty.IsTerminal(os.Stdout.Fd()),
		Out:         os.Stdout,
		Logger:      logger,
	}

	err := streammode.Run(ctx, scfg)
	if err == nil {
		return nil
	}
	if errors.Is(err, streammode.ErrFileNotFound) {
		return err
	}
	return fmt.Errorf("stream: %w", err)
}
