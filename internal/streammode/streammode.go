// Package streammode implements the non-interactive "stream" subcommand:
// replay the tail of a single JSONL log file to stdout, then live-tail new
// entries as they're appended, with TTY-aware formatting (emoji and ANSI
// color for an interactive terminal, ASCII role tags and no color when
// piped) and clean shutdown on broken pipe or signal.
package streammode

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/kenfdev/cc-tail/internal/config"
	"github.com/kenfdev/cc-tail/internal/entry"
	"github.com/kenfdev/cc-tail/internal/render"
	"github.com/kenfdev/cc-tail/internal/replay"
	"github.com/kenfdev/cc-tail/internal/ringbuffer"
	"github.com/kenfdev/cc-tail/internal/stats"
	"github.com/kenfdev/cc-tail/internal/watcher"
)

// ErrFileNotFound is returned by Run when Config.Path does not exist.
var ErrFileNotFound = errors.New("file not found")

// Config is the runtime configuration for one stream-mode invocation.
type Config struct {
	// Path to the JSONL file to tail.
	Path string
	// ReplayCount is the number of visible messages to print before live
	// tailing begins.
	ReplayCount int
	// Verbose enables read-error and malformed-line diagnostics on stderr.
	Verbose bool
	// Theme selects the ANSI color palette used when IsTTY is true.
	Theme config.Theme
	// IsTTY controls emoji-vs-ASCII role indicators and whether any ANSI
	// color escapes are emitted at all.
	IsTTY bool

	Out    io.Writer
	Logger *log.Logger
}

// ansiColors are the escape codes used to color one stream-mode line.
// Every field is the empty string when piping, so no escape sequence ever
// reaches a non-terminal consumer.
type ansiColors struct {
	timestamp     string
	roleUser      string
	roleAssistant string
	roleSystem    string
	toolUse       string
	text          string
	reset         string
}

func colorsForTTY(theme config.Theme) ansiColors {
	if theme == config.ThemeLight {
		return ansiColors{
			timestamp:     "\x1b[90m",
			roleUser:      "\x1b[34m",
			roleAssistant: "\x1b[32m",
			roleSystem:    "\x1b[35m",
			toolUse:       "\x1b[35m",
			text:          "\x1b[0m",
			reset:         "\x1b[0m",
		}
	}
	return ansiColors{
		timestamp:     "\x1b[90m",
		roleUser:      "\x1b[34m",
		roleAssistant: "\x1b[32m",
		roleSystem:    "\x1b[33m",
		toolUse:       "\x1b[33m",
		text:          "\x1b[0m",
		reset:         "\x1b[0m",
	}
}

func colorsForPipe() ansiColors {
	return ansiColors{}
}

// Run replays the recent visible history of cfg.Path, then live-tails new
// entries until ctx is cancelled, the watched file's directory watcher
// closes, or a write fails with a broken pipe. A broken pipe and a
// cancelled context are both treated as clean shutdown (nil error);
// cfg.Path not existing returns ErrFileNotFound, which the caller should
// treat as an exit-1 condition.
func Run(ctx context.Context, cfg Config) error {
	if _, err := os.Stat(cfg.Path); err != nil {
		return fmt.Errorf("%w: %s", ErrFileNotFound, cfg.Path)
	}

	colors := colorsForPipe()
	if cfg.IsTTY {
		colors = colorsForTTY(cfg.Theme)
	}

	eofOffset, err := replayPhase(cfg, colors)
	if err != nil {
		if errors.Is(err, errBrokenPipe) {
			return nil
		}
		return err
	}

	return liveTailPhase(ctx, cfg, colors, eofOffset)
}

// errBrokenPipe is a sentinel distinguishing an orderly broken-pipe exit
// from a genuine I/O error during either phase.
var errBrokenPipe = errors.New("broken pipe")

// replayPhase reads the whole file, keeps only visible entries, prints the
// last cfg.ReplayCount of them, and returns the file's length at read
// time so live tailing resumes exactly there.
func replayPhase(cfg Config, colors ansiColors) (int64, error) {
	file, err := os.Open(cfg.Path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return 0, err
	}
	fileLen := info.Size()

	var visible []entry.Entry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		e, err := entry.ParseLine(line)
		if err != nil {
			if cfg.Verbose {
				fmt.Fprintf(os.Stderr, "cc-tail: skipping malformed line: %v\n", err)
			}
			continue
		}
		if !replay.IsVisibleType(e) {
			continue
		}
		visible = append(visible, e)
	}
	if err := scanner.Err(); err != nil && cfg.Verbose {
		fmt.Fprintf(os.Stderr, "cc-tail: read error: %v\n", err)
	}

	start := len(visible) - cfg.ReplayCount
	if start < 0 {
		start = 0
	}
	replayed := visible[start:]

	buf := ringbuffer.WithDefaultBudget()
	for _, e := range replayed {
		if err := printEntry(cfg.Out, e, colors, cfg.IsTTY); err != nil {
			return 0, errBrokenPipe
		}
		buf.Push(e)
	}

	if len(replayed) > 0 {
		if err := printReplaySummary(cfg.Out, stats.Compute(buf), colors); err != nil {
			return 0, errBrokenPipe
		}
	}

	return fileLen, nil
}

// printReplaySummary writes the end-of-replay summary line: a count of
// replayed messages, the tool-call total, subagent count, and elapsed
// duration, styled the same dim tone as printEntry's timestamp column.
func printReplaySummary(out io.Writer, s stats.Stats, colors ansiColors) error {
	parts := []string{fmt.Sprintf("%d messages", s.EntriesLoaded)}
	if s.ToolCallCount > 0 {
		parts = append(parts, fmt.Sprintf("%d tool calls", s.ToolCallCount))
	}
	if s.SubagentCount > 0 {
		parts = append(parts, fmt.Sprintf("%d subagents", s.SubagentCount))
	}
	if s.DurationDisplay != "" {
		parts = append(parts, "over "+s.DurationDisplay)
	}
	_, err := fmt.Fprintf(out, "%s-- replayed %s --%s\n", colors.timestamp, strings.Join(parts, ", "), colors.reset)
	return err
}

// liveTailPhase watches cfg.Path's directory and prints each new visible
// entry as it's appended, until ctx is cancelled or the watcher closes.
func liveTailPhase(ctx context.Context, cfg Config, colors ansiColors, startOffset int64) error {
	target, err := filepath.EvalSymlinks(cfg.Path)
	if err != nil {
		target = cfg.Path
	}

	dir := filepath.Dir(cfg.Path)
	w, err := watcher.Start(dir, map[string]int64{target: startOffset}, 256, cfg.Verbose)
	if err != nil {
		return err
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			switch ev.Kind {
			case watcher.EventNewEntry:
				if ev.Path != target {
					continue
				}
				if !replay.IsVisibleType(ev.Entry) {
					continue
				}
				if err := printEntry(cfg.Out, ev.Entry, colors, cfg.IsTTY); err != nil {
					return nil
				}
			case watcher.EventError:
				if cfg.Verbose && cfg.Logger != nil {
					cfg.Logger.Warn("stream: watcher error", "err", ev.Err)
				}
			}
		}
	}
}

// printEntry writes one entry's header line and rendered content lines.
// Any write error (typically a broken pipe from a downstream consumer
// closing early) is returned so the caller can exit cleanly.
func printEntry(out io.Writer, e entry.Entry, colors ansiColors, isTTY bool) error {
	ts := e.TimestampOrEmpty()
	if ts == "" {
		ts = "--:--:--"
	} else {
		ts = formatTimestamp(ts)
	}

	label, color := roleIndicator(e, colors, isTTY)
	if _, err := fmt.Fprintf(out, "%s%s%s %s%s%s\n",
		colors.timestamp, ts, colors.reset,
		color, label, colors.reset); err != nil {
		return err
	}

	if e.Message != nil {
		for _, line := range render.RenderContentBlocks(e.Message.Content) {
			var err error
			switch line.Kind {
			case render.LineToolUse:
				_, err = fmt.Fprintf(out, "  %s%s%s\n", colors.toolUse, line.Text, colors.reset)
			case render.LineUnknown:
				_, err = fmt.Fprintf(out, "  %s\n", line.Text)
			default:
				_, err = fmt.Fprintf(out, "  %s%s%s\n", colors.text, line.Text, colors.reset)
			}
			if err != nil {
				return err
			}
		}
	}

	if f, ok := out.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// roleIndicator returns the role label (emoji on a TTY, an ASCII tag when
// piped) and its color for e's entry type.
func roleIndicator(e entry.Entry, colors ansiColors, isTTY bool) (string, string) {
	switch e.Type {
	case entry.TypeUser:
		if isTTY {
			return "\U0001f9d1", colors.roleUser
		}
		return "[H]", colors.roleUser
	case entry.TypeAssistant:
		if isTTY {
			return "\U0001f916", colors.roleAssistant
		}
		return "[A]", colors.roleAssistant
	case entry.TypeSystem:
		if isTTY {
			return "⚙️", colors.roleSystem
		}
		return "[S]", colors.roleSystem
	case entry.TypeProgress:
		if isTTY {
			return "⏳", colors.timestamp
		}
		return "[P]", colors.timestamp
	default:
		return "[" + e.Role() + "]", colors.text
	}
}

// formatTimestamp extracts HH:MM:SS from an RFC3339-ish timestamp
// ("2025-01-15T14:30:12Z" or with a fractional second / offset). Returns
// "--:--:--" if no recognizable time component is found.
func formatTimestamp(ts string) string {
	idx := strings.IndexByte(ts, 'T')
	if idx < 0 {
		return "--:--:--"
	}
	timePart := ts[idx+1:]
	if len(timePart) >= 8 && timePart[2] == ':' && timePart[5] == ':' {
		return timePart[:8]
	}
	return "--:--:--"
}
