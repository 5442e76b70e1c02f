package cmd

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kenfdev/cc-tail/internal/projectpath"
	"github.com/kenfdev/cc-tail/internal/session"
	"github.com/kenfdev/cc-tail/internal/tmux"
	"github.com/kenfdev/cc-tail/internal/tui"
)

// runTUI resolves the project directory, builds the App, and runs it as a
// full-screen Bubble Tea program. Startup fails with exit code 1 when the
// working directory cannot be read, the project directory is not found,
// session discovery hits an I/O error, or --session matches no session or
// more than one; an error from the program itself is returned the same
// way.
func runTUI(c *cobra.Command) error {
	logger := newLogger()
	cfg := buildConfig(logger)

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("could not determine working directory: %w", err)
	}

	projectDir, err := projectpath.DetectProjectPath(cwd, cfg.Project)
	if err != nil {
		return err
	}

	app, err := tui.New(projectDir, cfg, tmux.IsInsideTmux(), logger)
	if err != nil {
		var discErr *session.DiscoveryError
		if errors.As(err, &discErr) {
			return discErr
		}
		return err
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// If the update loop panics mid-render, raw mode / the alternate
	// screen / mouse capture must still be released before the process
	// dies, or the parent shell is left corrupted. bubbletea restores the
	// terminal on an ordinary Run() return (including a graceful
	// tea.Quit), but a panic unwinds past that path, so this deferred
	// hook resets the terminal directly via escape sequences before
	// re-raising.
	defer func() {
		if r := recover(); r != nil {
			resetTerminal()
			panic(r)
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// resetTerminal leaves the alternate screen, disables mouse reporting, and
// shows the cursor — the same state bubbletea restores on a clean exit.
func resetTerminal() {
	fmt.Fprint(os.Stdout, "\x1b[?1049l\x1b[?1000l\x1b[?1003l\x1b[?25h")
}
