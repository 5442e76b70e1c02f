package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kenfdev/cc-tail/internal/filter"
	"github.com/kenfdev/cc-tail/internal/ringbuffer"
	"github.com/kenfdev/cc-tail/internal/session"
)

// overlayResult is the outcome of delegating a key to the filter overlay.
type overlayResult int

const (
	overlayConsumed overlayResult = iota
	overlayCancel
	overlayApply
)

// overlayFocus is which section of the overlay currently receives keys.
type overlayFocus int

const (
	focusPattern overlayFocus = iota
	focusRoles
	focusAgents
)

// roleToggle is one entry in the overlay's role toggle list.
type roleToggle struct {
	name    string
	enabled bool
}

// agentToggle is one entry in the overlay's agent toggle list.
type agentToggle struct {
	agentID     string
	displayName string
	enabled     bool
}

// filterOverlay edits a filter.State in place before it's installed into
// the app on Apply. It owns its own draft pattern/role/agent toggles so a
// Cancel leaves the app's active filter untouched.
type filterOverlay struct {
	input        textinput.Model
	pattern      string
	patternValid bool
	excludeMain  bool
	roles        map[string]bool
	agents       map[string]bool

	focus        overlayFocus
	roleOptions  []roleToggle
	roleSelected int

	agentOptions  []agentToggle
	agentSelected int
}

func newFilterOverlay() *filterOverlay {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Focus()
	return &filterOverlay{
		input:        ti,
		patternValid: true,
		roles:        make(map[string]bool),
		agents:       make(map[string]bool),
	}
}

// knownRoles returns the sorted, deduplicated set of message roles observed
// among buf's currently held entries, for populating the overlay's role
// toggle list.
func knownRoles(buf *ringbuffer.RingBuffer) []string {
	seen := make(map[string]bool)
	for _, e := range buf.Iter() {
		seen[e.Role()] = true
	}
	roles := make([]string, 0, len(seen))
	for r := range seen {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	return roles
}

// ResetFrom seeds the overlay's draft from the app's currently active
// filter, so reopening the overlay shows the filter as it stands.
func (o *filterOverlay) ResetFrom(f filter.State) {
	o.pattern = f.Pattern
	o.input.SetValue(f.Pattern)
	o.input.CursorEnd()
	o.patternValid = f.PatternValid
	o.excludeMain = f.ExcludeMain
	o.roles = make(map[string]bool, len(f.Roles))
	for k, v := range f.Roles {
		o.roles[k] = v
	}
	o.agents = make(map[string]bool, len(f.EnabledAgents))
	for k, v := range f.EnabledAgents {
		o.agents[k] = v
	}
	o.focus = focusPattern
}

// SetKnownOptions rebuilds the overlay's role and agent toggle lists from
// the roles observed in the currently loaded entries and the agents
// belonging to the active session, preserving which ones are already
// enabled in the draft filter. Called once per open, after ResetFrom.
func (o *filterOverlay) SetKnownOptions(roleNames []string, knownAgents []session.Agent) {
	o.roleOptions = make([]roleToggle, 0, len(roleNames))
	for _, name := range roleNames {
		o.roleOptions = append(o.roleOptions, roleToggle{name: name, enabled: o.roles[name]})
	}
	if o.roleSelected >= len(o.roleOptions) {
		o.roleSelected = 0
	}

	o.agentOptions = make([]agentToggle, 0, len(knownAgents))
	for _, ag := range knownAgents {
		if ag.IsMain {
			continue
		}
		display := ag.Slug
		if display == "" {
			display = ag.AgentID
		}
		o.agentOptions = append(o.agentOptions, agentToggle{
			agentID:     ag.AgentID,
			displayName: display,
			enabled:     o.agents[ag.AgentID],
		})
	}
	if o.agentSelected >= len(o.agentOptions) {
		o.agentSelected = 0
	}
}

// HandleKey processes one key event while the overlay is visible. Esc
// cancels; Enter applies; ctrl+r toggles "exclude main agent"; Tab/Shift+Tab
// cycle focus between the pattern field and the role/agent toggle lists;
// everything else is handled by whichever section has focus.
func (o *filterOverlay) HandleKey(msg tea.KeyMsg) overlayResult {
	switch msg.String() {
	case "esc":
		return overlayCancel
	case "enter":
		return overlayApply
	case "ctrl+r":
		o.excludeMain = !o.excludeMain
		return overlayConsumed
	case "tab":
		o.cycleFocusForward()
		return overlayConsumed
	case "shift+tab":
		o.cycleFocusBackward()
		return overlayConsumed
	}

	switch o.focus {
	case focusRoles:
		o.handleRoleKey(msg)
	case focusAgents:
		o.handleAgentKey(msg)
	default:
		o.input, _ = o.input.Update(msg)
		o.pattern = o.input.Value()
		o.recompile()
	}
	return overlayConsumed
}

func (o *filterOverlay) cycleFocusForward() {
	switch o.focus {
	case focusPattern:
		switch {
		case len(o.roleOptions) > 0:
			o.focus = focusRoles
		case len(o.agentOptions) > 0:
			o.focus = focusAgents
		}
	case focusRoles:
		if len(o.agentOptions) > 0 {
			o.focus = focusAgents
		} else {
			o.focus = focusPattern
		}
	case focusAgents:
		o.focus = focusPattern
	}
}

func (o *filterOverlay) cycleFocusBackward() {
	switch o.focus {
	case focusPattern:
		switch {
		case len(o.agentOptions) > 0:
			o.focus = focusAgents
		case len(o.roleOptions) > 0:
			o.focus = focusRoles
		}
	case focusRoles:
		o.focus = focusPattern
	case focusAgents:
		if len(o.roleOptions) > 0 {
			o.focus = focusRoles
		} else {
			o.focus = focusPattern
		}
	}
}

// handleRoleKey navigates and toggles the role list while it has focus:
// up/k and down/j move the selection, space toggles the highlighted role.
func (o *filterOverlay) handleRoleKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		if o.roleSelected > 0 {
			o.roleSelected--
		}
	case "down", "j":
		if len(o.roleOptions) > 0 && o.roleSelected < len(o.roleOptions)-1 {
			o.roleSelected++
		}
	case " ":
		if o.roleSelected < len(o.roleOptions) {
			o.roleOptions[o.roleSelected].enabled = !o.roleOptions[o.roleSelected].enabled
			o.roles[o.roleOptions[o.roleSelected].name] = o.roleOptions[o.roleSelected].enabled
		}
	}
}

// handleAgentKey navigates and toggles the agent list while it has focus,
// the same up/down/space scheme as handleRoleKey.
func (o *filterOverlay) handleAgentKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		if o.agentSelected > 0 {
			o.agentSelected--
		}
	case "down", "j":
		if len(o.agentOptions) > 0 && o.agentSelected < len(o.agentOptions)-1 {
			o.agentSelected++
		}
	case " ":
		if o.agentSelected < len(o.agentOptions) {
			o.agentOptions[o.agentSelected].enabled = !o.agentOptions[o.agentSelected].enabled
			o.agents[o.agentOptions[o.agentSelected].agentID] = o.agentOptions[o.agentSelected].enabled
		}
	}
}

func (o *filterOverlay) recompile() {
	var s filter.State
	s.SetPattern(o.pattern)
	o.patternValid = s.PatternValid
}

// BuildState materializes the overlay's draft into an installable
// filter.State. Only roles/agents actually toggled on are carried into the
// built state; a role or agent that was enabled and then disabled again
// must not leave a stale "false" entry that would make the dimension
// falsely restrictive.
func (o *filterOverlay) BuildState() filter.State {
	var s filter.State
	s.SetPattern(o.pattern)
	s.ExcludeMain = o.excludeMain

	roles := make(map[string]bool)
	for name, enabled := range o.roles {
		if enabled {
			roles[name] = true
		}
	}
	if len(roles) > 0 {
		s.Roles = roles
	}

	agents := make(map[string]bool)
	for id, enabled := range o.agents {
		if enabled {
			agents[id] = true
		}
	}
	if len(agents) > 0 {
		s.EnabledAgents = agents
	}
	return s
}

func (a *App) renderFilterOverlay() string {
	borderStyle := a.styles.FilterValidBorder
	if !a.filterOverlay.patternValid {
		borderStyle = a.styles.FilterInvalid
	}

	var b strings.Builder
	b.WriteString(a.styles.FilterFocusedLabel.Render("Filter"))
	b.WriteString("\n\n")
	b.WriteString("pattern: " + a.filterOverlay.pattern)
	if !a.filterOverlay.patternValid {
		b.WriteString(a.styles.FilterInvalid.Render(" (invalid regex)"))
	}
	b.WriteString("\n")

	mainLabel := "include main agent"
	mainStyle := a.styles.FilterMainFocused
	if a.filterOverlay.excludeMain {
		mainLabel = "exclude main agent"
		mainStyle = a.styles.FilterMainUnfocused
	}
	b.WriteString(mainStyle.Render(fmt.Sprintf("ctrl+r: %s", mainLabel)))
	b.WriteString("\n")

	a.renderToggleList(&b, "roles", a.filterOverlay.roleLines(), a.filterOverlay.focus == focusRoles)
	a.renderToggleList(&b, "agents", a.filterOverlay.agentLines(), a.filterOverlay.focus == focusAgents)

	b.WriteString("\n")
	b.WriteString(a.styles.FilterShortcutKey.Render("tab: next field   space: toggle   enter: apply   esc: cancel"))

	return a.styles.FilterOverlay.Width(48).Render(b.String())
}

// renderToggleList appends a labeled role/agent toggle list to b, or
// nothing if there are no options to show. The highlighted row (only when
// sectionFocused) uses FilterSelected; all others use FilterUnselected.
func (a *App) renderToggleList(b *strings.Builder, label string, lines []toggleLine, sectionFocused bool) {
	if len(lines) == 0 {
		return
	}
	b.WriteString("\n" + label + ":\n")
	for i, line := range lines {
		box := "[ ]"
		if line.enabled {
			box = "[x]"
		}
		row := fmt.Sprintf("%s %s", box, line.text)
		if sectionFocused && i == line.selected {
			b.WriteString(a.styles.FilterSelected.Render(row) + "\n")
		} else {
			b.WriteString(a.styles.FilterUnselected.Render(row) + "\n")
		}
	}
}

// toggleLine is one renderable row of a role/agent toggle list.
type toggleLine struct {
	text     string
	enabled  bool
	selected int // the list's current selection index, repeated on every row
}

func (o *filterOverlay) roleLines() []toggleLine {
	lines := make([]toggleLine, len(o.roleOptions))
	for i, r := range o.roleOptions {
		lines[i] = toggleLine{text: r.name, enabled: r.enabled, selected: o.roleSelected}
	}
	return lines
}

func (o *filterOverlay) agentLines() []toggleLine {
	lines := make([]toggleLine, len(o.agentOptions))
	for i, a := range o.agentOptions {
		lines[i] = toggleLine{text: a.displayName, enabled: a.enabled, selected: o.agentSelected}
	}
	return lines
}
