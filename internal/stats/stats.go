// Package stats computes summary statistics over a session's loaded log
// entries, shown in the TUI status bar and stream mode's end-of-replay
// summary line.
package stats

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kenfdev/cc-tail/internal/entry"
	"github.com/kenfdev/cc-tail/internal/ringbuffer"
)

// ToolCount pairs a tool name with how many times it was invoked.
type ToolCount struct {
	Name  string
	Count int
}

// Stats summarizes the entries currently loaded into a ring buffer. All
// fields reflect that snapshot, not necessarily the full session history on
// disk.
type Stats struct {
	EntriesLoaded         int
	UserMessageCount      int
	AssistantMessageCount int
	ToolCallCount         int
	ToolCallBreakdown     []ToolCount
	SubagentCount         int
	EarliestTimestamp     string
	LatestTimestamp       string
	DurationDisplay       string
	LoadedBytesDisplay    string
}

// Compute derives Stats from every entry currently in buf, in a single pass.
func Compute(buf *ringbuffer.RingBuffer) Stats {
	var s Stats

	toolCounts := make(map[string]int)
	subagentIDs := make(map[string]bool)
	var earliest, latest string

	for _, e := range buf.Iter() {
		s.EntriesLoaded++

		if ts := e.TimestampOrEmpty(); ts != "" {
			if earliest == "" || ts < earliest {
				earliest = ts
			}
			if latest == "" || ts > latest {
				latest = ts
			}
		}

		switch e.Type {
		case entry.TypeUser:
			s.UserMessageCount++
		case entry.TypeAssistant:
			s.AssistantMessageCount++
		}

		if e.Sidechain() {
			if id := e.AgentIDOrEmpty(); id != "" {
				subagentIDs[id] = true
			}
		}

		countToolUses(e, toolCounts)
	}

	s.SubagentCount = len(subagentIDs)
	for _, n := range toolCounts {
		s.ToolCallCount += n
	}
	s.ToolCallBreakdown = sortedBreakdown(toolCounts)

	s.EarliestTimestamp = earliest
	s.LatestTimestamp = latest
	s.DurationDisplay = computeDurationDisplay(earliest, latest)
	s.LoadedBytesDisplay = humanize.Bytes(uint64(buf.ByteSize()))

	return s
}

// countToolUses counts tool_use content blocks in e's message, keyed by
// tool name. tool_result blocks are explicitly excluded.
func countToolUses(e entry.Entry, toolCounts map[string]int) {
	if e.Message == nil || len(e.Message.Content) == 0 {
		return
	}

	var blocks []map[string]any
	if err := json.Unmarshal(e.Message.Content, &blocks); err != nil {
		return
	}

	for _, block := range blocks {
		if block["type"] != "tool_use" {
			continue
		}
		name, ok := block["name"].(string)
		if !ok || name == "" {
			name = "unknown"
		}
		toolCounts[name]++
	}
}

// sortedBreakdown sorts tool call counts descending by count, then
// ascending by name for ties.
func sortedBreakdown(toolCounts map[string]int) []ToolCount {
	breakdown := make([]ToolCount, 0, len(toolCounts))
	for name, count := range toolCounts {
		breakdown = append(breakdown, ToolCount{Name: name, Count: count})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Count != breakdown[j].Count {
			return breakdown[i].Count > breakdown[j].Count
		}
		return breakdown[i].Name < breakdown[j].Name
	})
	return breakdown
}

// computeDurationDisplay returns a human-readable elapsed-time string
// between two ISO 8601 timestamps, or "" if either is missing, unparseable,
// or end precedes start.
func computeDurationDisplay(earliest, latest string) string {
	if earliest == "" || latest == "" {
		return ""
	}

	start, err := time.Parse(time.RFC3339, earliest)
	if err != nil {
		start, err = time.Parse(time.RFC3339Nano, earliest)
		if err != nil {
			return ""
		}
	}
	end, err := time.Parse(time.RFC3339, latest)
	if err != nil {
		end, err = time.Parse(time.RFC3339Nano, latest)
		if err != nil {
			return ""
		}
	}

	if end.Before(start) {
		return ""
	}

	return formatDurationSecs(int64(end.Sub(start).Seconds()))
}

// formatDurationSecs renders an elapsed duration the way the status bar
// needs it: "0s", "45s", "2m 30s", "1h 5m", "2h 0m", "25h 30m". This exact
// compact shape isn't what go-humanize's relative-time formatter produces
// ("2 hours", "45 seconds"), so it's hand-rolled rather than delegated.
func formatDurationSecs(secs int64) string {
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}

	hours := secs / 3600
	minutes := (secs % 3600) / 60
	remainingSecs := secs % 60

	if hours == 0 {
		if remainingSecs > 0 {
			return fmt.Sprintf("%dm %ds", minutes, remainingSecs)
		}
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
