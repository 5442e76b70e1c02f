package tui

import (
	"fmt"
	"strings"

	"github.com/kenfdev/cc-tail/internal/entry"
	"github.com/kenfdev/cc-tail/internal/render"
	"github.com/kenfdev/cc-tail/internal/search"
)

// buildLogLines renders every entry currently in the buffer, subject to
// a.filt, into one display string per output line, role-colored and
// timestamp-prefixed.
func (a *App) buildLogLines() []string {
	var lines []string
	for _, e := range a.buf.Iter() {
		if !a.filt.Matches(e) {
			continue
		}
		lines = append(lines, a.renderEntry(e)...)
	}
	return lines
}

func (a *App) renderEntry(e entry.Entry) []string {
	if e.Message == nil {
		return nil
	}

	blocks := render.RenderContentBlocks(e.Message.Content)
	if len(blocks) == 0 {
		return nil
	}

	agentStyle := a.styles.agentStyle(e.AgentIDOrEmpty())
	ts := e.TimestampOrEmpty()
	prefix := ""
	if ts != "" {
		prefix = a.styles.LogTimestamp.Render(ts) + " "
	}

	var roleStyle = a.styles.RoleUnknown
	switch e.Role() {
	case "user":
		roleStyle = a.styles.RoleUser
	case "assistant":
		roleStyle = a.styles.RoleAssistant
	}
	agentLabel := "main"
	if e.AgentIDOrEmpty() != "" {
		agentLabel = e.AgentIDOrEmpty()
		if e.Slug != nil && *e.Slug != "" {
			agentLabel = *e.Slug
		}
	}
	header := fmt.Sprintf("%s%s %s:", prefix, agentStyle.Render(agentLabel), roleStyle.Render(e.Role()))

	lines := make([]string, 0, len(blocks)+1)
	lines = append(lines, header)
	for _, b := range blocks {
		switch b.Kind {
		case render.LineToolUse:
			if !a.filt.IsToolLineVisible() {
				continue
			}
			lines = append(lines, "  "+a.styles.ToolUse.Render(b.Text))
		case render.LineUnknown:
			lines = append(lines, "  "+a.styles.LogProgress.Render(b.Text))
		default:
			lines = append(lines, "  "+a.styles.LogText.Render(b.Text))
		}
	}
	return lines
}

// renderLogPane produces the final log-stream pane content: either the
// frozen scroll-mode snapshot window, or the live tail.
func (a *App) renderLogPane(width, height int) string {
	if len(a.buf.Iter()) == 0 && a.activeSessionID == "" {
		return a.styles.LogPlaceholder.Render(a.placeholderText())
	}

	if a.scrollActive {
		lines := a.buildLogLines()
		a.captureSnapshotIfNeeded(lines, height)
		snap := a.snapshot
		if snap == nil {
			return strings.Join(tail(lines, height), "\n")
		}
		start := snap.totalLines - snap.visibleHeight - snap.offset
		if start < 0 {
			start = 0
		}
		end := start + snap.visibleHeight
		if end > len(snap.lines) {
			end = len(snap.lines)
		}
		if start > end {
			start = end
		}
		return strings.Join(snap.lines[start:end], "\n")
	}

	lines := a.buildLogLines()
	return strings.Join(tail(lines, height), "\n")
}

func (a *App) placeholderText() string {
	if a.statusNote != "" {
		return a.statusNote
	}
	return "no entries yet"
}

func tail(lines []string, n int) []string {
	if n <= 0 || len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}

// recomputeSearchMatches runs search.FindMatches over each currently
// visible log line (live tail, not a scroll snapshot) separately, recording
// every match with its line index, and moves the current match to the
// first one when any are found.
func (a *App) recomputeSearchMatches() {
	lines := a.buildLogLines()
	var matches []search.Match
	for i, line := range lines {
		for _, m := range search.FindMatches(line, a.search.Query) {
			matches = append(matches, search.Match{LineIndex: i, ByteStart: m.ByteStart, ByteLen: m.ByteLen})
		}
	}
	a.search.Matches = matches
	if len(matches) > 0 {
		a.search.CurrentMatchIndex = 0
	}
}
