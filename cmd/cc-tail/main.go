// Command cc-tail monitors Claude Code session logs: an interactive TUI by
// default, or a lightweight non-interactive tail via the stream subcommand.
package main

import (
	"fmt"
	"os"

	"github.com/kenfdev/cc-tail/internal/cmd"
)

func main() {
	root := cmd.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cc-tail: %v\n", err)
		os.Exit(1)
	}
}
