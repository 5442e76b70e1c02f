// Package filter implements the two-level entry/line filter state machine:
// entry-level predicates (role, agent, pattern) gate which entries are
// considered at all; the independent line-level hide_tool_calls flag gates
// rendered tool-use lines.
package filter

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/kenfdev/cc-tail/internal/entry"
)

// State is the filter configuration shared between the app and the filter
// overlay. The zero value is the "no filter" state: every dimension is
// empty/false and matches() accepts everything.
type State struct {
	// Pattern is the raw text pattern as typed by the user; compiled into
	// a case-insensitive substring-matching regex when nonempty.
	Pattern string
	// PatternValid is false when Pattern failed to compile; in that case
	// the previously-valid compiled regex (if any) keeps being used for
	// matching, per the Design Note on regex invalidity as soft state.
	PatternValid bool

	// Roles, if nonempty, restricts matches to entries whose message role
	// is in the set. Empty set means "all roles".
	Roles map[string]bool
	// EnabledAgents, if nonempty, further restricts sidechain entries to
	// the given agent ids. Empty set means "all agents".
	EnabledAgents map[string]bool
	// ExcludeMain, when true, hides all non-sidechain (main agent)
	// entries regardless of the other dimensions. The zero value (false)
	// means the main agent is included, matching spec's "include_main"
	// flag defaulting to true.
	ExcludeMain bool
	// SelectedAgent, when non-nil, restricts the view to exactly one
	// subagent: non-sidechain entries are hidden outright, and sidechain
	// entries must carry this exact agent id. This mirrors filter.rs's
	// single-agent "focus" selection, layered under the fuller
	// Roles/EnabledAgents/ExcludeMain model.
	SelectedAgent *string

	// HideToolCalls is line-level only: it never affects matches(), only
	// is_tool_line_visible().
	HideToolCalls bool

	compiled *regexp.Regexp
}

// New returns the zero/inactive filter state.
func New() State {
	return State{}
}

// SetPattern compiles pattern as a case-insensitive substring-matching
// regex. On compile failure, PatternValid is set false and the previously
// compiled regex (if any) is retained so matching keeps using the last
// valid pattern — typing an invalid regex never silently disables
// filtering.
func (s *State) SetPattern(pattern string) {
	s.Pattern = pattern
	if pattern == "" {
		s.PatternValid = true
		s.compiled = nil
		return
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		s.PatternValid = false
		return
	}
	s.PatternValid = true
	s.compiled = re
}

// IsActive reports whether any filter dimension is active.
func (s State) IsActive() bool {
	return s.HideToolCalls ||
		s.SelectedAgent != nil ||
		len(s.Roles) > 0 ||
		len(s.EnabledAgents) > 0 ||
		s.ExcludeMain ||
		(s.Pattern != "" && s.compiled != nil)
}

// Matches tests whether e passes the entry-level filter.
func (s State) Matches(e entry.Entry) bool {
	// Single-agent focus selection (filter.rs semantics): main agent
	// entries are hidden outright, sidechain entries must match exactly.
	if s.SelectedAgent != nil {
		if !e.Sidechain() {
			return false
		}
		if e.AgentIDOrEmpty() != *s.SelectedAgent {
			return false
		}
	}

	if s.ExcludeMain && !e.Sidechain() {
		return false
	}

	if len(s.Roles) > 0 {
		if !s.Roles[e.Role()] {
			return false
		}
	}

	if len(s.EnabledAgents) > 0 && e.Sidechain() {
		if !s.EnabledAgents[e.AgentIDOrEmpty()] {
			return false
		}
	}

	if s.Pattern != "" && s.compiled != nil {
		// An entry with no textual content has nothing for the pattern to
		// reject or accept; it passes on role/agent dimensions alone rather
		// than being dropped for failing to match against "".
		if text := contentText(e); text != "" && !s.compiled.MatchString(text) {
			return false
		}
	}

	return true
}

// IsToolLineVisible reports whether rendered tool-use lines should be
// displayed. This is independent of entry-level matching.
func (s State) IsToolLineVisible() bool {
	return !s.HideToolCalls
}

// Display formats the active filter dimensions for the status bar, or ""
// when no dimension is active.
func (s State) Display() string {
	if !s.IsActive() {
		return ""
	}
	var parts []string
	if s.HideToolCalls {
		parts = append(parts, "no tools")
	}
	if s.SelectedAgent != nil {
		parts = append(parts, fmt.Sprintf("agent %s", *s.SelectedAgent))
	}
	if len(s.Roles) > 0 {
		roles := make([]string, 0, len(s.Roles))
		for r := range s.Roles {
			roles = append(roles, r)
		}
		sort.Strings(roles)
		parts = append(parts, fmt.Sprintf("roles %s", strings.Join(roles, ",")))
	}
	if len(s.EnabledAgents) > 0 {
		agents := make([]string, 0, len(s.EnabledAgents))
		for a := range s.EnabledAgents {
			agents = append(agents, a)
		}
		sort.Strings(agents)
		parts = append(parts, fmt.Sprintf("agents %s", strings.Join(agents, ",")))
	}
	if s.ExcludeMain {
		parts = append(parts, "no main")
	}
	if s.Pattern != "" {
		if s.PatternValid {
			parts = append(parts, fmt.Sprintf("pattern %q", s.Pattern))
		} else {
			parts = append(parts, fmt.Sprintf("pattern %q (invalid)", s.Pattern))
		}
	}
	return fmt.Sprintf("[filter: %s]", strings.Join(parts, ", "))
}

// contentText concatenates the textual content of an entry's message for
// pattern matching. Non-string, non-array content yields "". Entries with
// no message yield "".
func contentText(e entry.Entry) string {
	if e.Message == nil || len(e.Message.Content) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(e.Message.Content, &asString); err == nil {
		return asString
	}
	var blocks []map[string]any
	if err := json.Unmarshal(e.Message.Content, &blocks); err == nil {
		var b strings.Builder
		for _, block := range blocks {
			if text, ok := block["text"].(string); ok {
				b.WriteString(text)
				b.WriteByte('\n')
			}
		}
		return b.String()
	}
	return ""
}
