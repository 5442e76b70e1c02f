package tui

import (
	"fmt"
	"strings"

	"github.com/kenfdev/cc-tail/internal/stats"
)

// renderStatusBar shows the active session, session count, loaded-entry
// stats, the active filter (if any), and the search match counter (if
// search is active).
func (a *App) renderStatusBar() string {
	var parts []string

	if a.activeSessionID != "" {
		parts = append(parts, fmt.Sprintf("session %s", truncate(a.activeSessionID, 16)))
	}
	parts = append(parts, fmt.Sprintf("%d sessions", len(a.sessions)))

	s := stats.Compute(a.buf)
	parts = append(parts, fmt.Sprintf("%d entries · %s loaded", s.EntriesLoaded, s.LoadedBytesDisplay))
	if s.DurationDisplay != "" {
		parts = append(parts, s.DurationDisplay)
	}
	if s.SubagentCount > 0 {
		parts = append(parts, fmt.Sprintf("%d subagents", s.SubagentCount))
	}

	if display := a.filt.Display(); display != "" {
		parts = append(parts, a.styles.StatusFilter.Render(display))
	}

	if a.search.IsInput() {
		parts = append(parts, a.styles.SearchPrompt.Render("/"+a.search.InputBuffer))
	} else if a.search.IsActive() {
		parts = append(parts, a.styles.SearchPrompt.Render(a.search.Query+" "+a.search.MatchCounterDisplay()))
	}

	if a.statusNote != "" {
		parts = append(parts, a.statusNote)
	}

	style := a.styles.StatusBar
	return style.Width(a.width).Render(strings.Join(parts, a.styles.StatusSep.Render(" │ ")))
}
