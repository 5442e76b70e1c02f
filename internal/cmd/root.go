// Package cmd wires the cobra command tree: a root command that launches
// the interactive TUI, and a stream subcommand for non-interactive tailing
// of a single log file.
package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kenfdev/cc-tail/internal/config"
)

// Version is the cc-tail release version.
const Version = "0.1.0"

// rootFlags holds the root command's persistent flag values, read by
// runTUI after cobra has parsed them.
var rootFlags struct {
	project    string
	session    string
	verbose    bool
	theme      string
	configPath string
}

// NewRootCommand builds the cc-tail command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "cc-tail",
		Short:   "Monitor Claude Code sessions in real-time",
		Version: Version,
		// Errors are reported by main via the returned error, not cobra's
		// own usage dump, which would otherwise double-print them.
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, args []string) error {
			return runTUI(c)
		},
	}

	root.PersistentFlags().StringVar(&rootFlags.project, "project", "", "project directory (defaults to auto-detection from the current directory)")
	root.PersistentFlags().StringVar(&rootFlags.session, "session", "", "session id prefix to attach to (defaults to the most recently active session)")
	root.PersistentFlags().BoolVar(&rootFlags.verbose, "verbose", false, "write diagnostics to stderr")
	root.PersistentFlags().StringVar(&rootFlags.theme, "theme", "", "color theme: dark or light")
	root.PersistentFlags().StringVar(&rootFlags.configPath, "config", "", "path to a config file")

	root.AddCommand(newStreamCommand())
	return root
}

// buildConfig merges the root command's persistent flags into an AppConfig
// via the shared config.Build precedence (CLI > file > defaults).
func buildConfig(logger *log.Logger) config.AppConfig {
	opts := config.CLIOptions{
		Project:    rootFlags.project,
		Session:    rootFlags.session,
		Verbose:    rootFlags.verbose,
		ConfigPath: rootFlags.configPath,
	}
	if rootFlags.theme != "" {
		if theme, ok := config.ParseTheme(rootFlags.theme); ok {
			opts.Theme = theme
			opts.ThemeSet = true
		} else if logger != nil {
			logger.Warn("unknown theme, ignoring", "theme", rootFlags.theme)
		}
	}
	return config.Build(opts, logger)
}

// newLogger builds the shared stderr logger, leveled by --verbose.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if rootFlags.verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}
