package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/kenfdev/cc-tail/internal/filter"
	"github.com/kenfdev/cc-tail/internal/session"
)

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func namedKey(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func TestFilterOverlayTypingBuildsPattern(t *testing.T) {
	o := newFilterOverlay()
	o.HandleKey(key('f'))
	o.HandleKey(key('o'))
	o.HandleKey(key('o'))
	assert.Equal(t, "foo", o.pattern)
	assert.True(t, o.patternValid)
}

func TestFilterOverlayBackspace(t *testing.T) {
	o := newFilterOverlay()
	o.HandleKey(key('a'))
	o.HandleKey(key('b'))
	o.HandleKey(namedKey(tea.KeyBackspace))
	assert.Equal(t, "a", o.pattern)
}

func TestFilterOverlayInvalidRegexMarksInvalid(t *testing.T) {
	o := newFilterOverlay()
	o.HandleKey(key('('))
	assert.False(t, o.patternValid)
}

func TestFilterOverlayEscReturnsCancel(t *testing.T) {
	o := newFilterOverlay()
	result := o.HandleKey(namedKey(tea.KeyEsc))
	assert.Equal(t, overlayCancel, result)
}

func TestFilterOverlayEnterReturnsApply(t *testing.T) {
	o := newFilterOverlay()
	result := o.HandleKey(namedKey(tea.KeyEnter))
	assert.Equal(t, overlayApply, result)
}

func TestFilterOverlayCtrlRTogglesExcludeMain(t *testing.T) {
	o := newFilterOverlay()
	assert.False(t, o.excludeMain)
	o.HandleKey(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.True(t, o.excludeMain)
}

func TestFilterOverlayBuildStateReflectsDraft(t *testing.T) {
	o := newFilterOverlay()
	o.HandleKey(key('x'))
	o.HandleKey(tea.KeyMsg{Type: tea.KeyCtrlR})

	s := o.BuildState()
	assert.Equal(t, "x", s.Pattern)
	assert.True(t, s.ExcludeMain)
}

func TestFilterOverlayResetFromSeedsDraft(t *testing.T) {
	o := newFilterOverlay()
	f := filter.New()
	f.SetPattern("hello")
	f.ExcludeMain = true
	f.Roles = map[string]bool{"user": true}

	o.ResetFrom(f)

	assert.Equal(t, "hello", o.pattern)
	assert.True(t, o.excludeMain)
	assert.True(t, o.roles["user"])
}

func TestFilterOverlaySetKnownOptionsPreservesEnabledFromDraft(t *testing.T) {
	o := newFilterOverlay()
	f := filter.New()
	f.Roles = map[string]bool{"user": true}
	f.EnabledAgents = map[string]bool{"abc": true}
	o.ResetFrom(f)

	o.SetKnownOptions(
		[]string{"assistant", "user"},
		[]session.Agent{
			{AgentID: "", IsMain: true},
			{AgentID: "abc", Slug: "agent-abc"},
			{AgentID: "xyz", Slug: "agent-xyz"},
		},
	)

	assert.Equal(t, []roleToggle{{name: "assistant", enabled: false}, {name: "user", enabled: true}}, o.roleOptions)
	assert.Equal(t, []agentToggle{
		{agentID: "abc", displayName: "agent-abc", enabled: true},
		{agentID: "xyz", displayName: "agent-xyz", enabled: false},
	}, o.agentOptions)
}

func TestFilterOverlayTabCyclesFocusThroughRolesAndAgents(t *testing.T) {
	o := newFilterOverlay()
	o.SetKnownOptions([]string{"user"}, []session.Agent{{AgentID: "abc", Slug: "abc"}})

	assert.Equal(t, focusPattern, o.focus)
	o.HandleKey(namedKey(tea.KeyTab))
	assert.Equal(t, focusRoles, o.focus)
	o.HandleKey(namedKey(tea.KeyTab))
	assert.Equal(t, focusAgents, o.focus)
	o.HandleKey(namedKey(tea.KeyTab))
	assert.Equal(t, focusPattern, o.focus)
}

func TestFilterOverlayTabNoOptionsStaysOnPattern(t *testing.T) {
	o := newFilterOverlay()
	o.HandleKey(namedKey(tea.KeyTab))
	assert.Equal(t, focusPattern, o.focus)
}

func TestFilterOverlayShiftTabCyclesBackward(t *testing.T) {
	o := newFilterOverlay()
	o.SetKnownOptions([]string{"user"}, []session.Agent{{AgentID: "abc", Slug: "abc"}})

	o.HandleKey(namedKey(tea.KeyShiftTab))
	assert.Equal(t, focusAgents, o.focus)
	o.HandleKey(namedKey(tea.KeyShiftTab))
	assert.Equal(t, focusRoles, o.focus)
	o.HandleKey(namedKey(tea.KeyShiftTab))
	assert.Equal(t, focusPattern, o.focus)
}

func TestFilterOverlayRoleToggleSpaceAndNavigation(t *testing.T) {
	o := newFilterOverlay()
	o.SetKnownOptions([]string{"assistant", "user"}, nil)
	o.focus = focusRoles

	o.HandleKey(key(' '))
	assert.True(t, o.roleOptions[0].enabled)
	assert.True(t, o.roles["assistant"])

	o.HandleKey(namedKey(tea.KeyDown))
	assert.Equal(t, 1, o.roleSelected)
	o.HandleKey(namedKey(tea.KeyDown)) // at end, stays
	assert.Equal(t, 1, o.roleSelected)

	o.HandleKey(key(' '))
	assert.True(t, o.roleOptions[1].enabled)

	o.HandleKey(namedKey(tea.KeyUp))
	assert.Equal(t, 0, o.roleSelected)
}

func TestFilterOverlayAgentToggleSpace(t *testing.T) {
	o := newFilterOverlay()
	o.SetKnownOptions(nil, []session.Agent{{AgentID: "abc", Slug: "agent-abc"}})
	o.focus = focusAgents

	o.HandleKey(key(' '))
	assert.True(t, o.agentOptions[0].enabled)
	assert.True(t, o.agents["abc"])
}

func TestFilterOverlayBuildStateOmitsToggledOffRole(t *testing.T) {
	o := newFilterOverlay()
	o.SetKnownOptions([]string{"user"}, nil)
	o.focus = focusRoles

	o.HandleKey(key(' ')) // enable
	o.HandleKey(key(' ')) // disable again

	s := o.BuildState()
	assert.Empty(t, s.Roles)
	assert.False(t, s.IsActive())
}
