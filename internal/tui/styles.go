package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/kenfdev/cc-tail/internal/config"
)

// Styles bundles every lipgloss style the TUI renders with, built once from
// a config.Colors palette so switching --theme never requires touching
// render call sites, only the palette fed in here.
type Styles struct {
	BorderFocused   lipgloss.Style
	BorderUnfocused lipgloss.Style

	SidebarPlaceholder    lipgloss.Style
	SidebarActiveMarker   lipgloss.Style
	SidebarInactiveMarker lipgloss.Style
	SidebarSelected       lipgloss.Style
	SidebarSelectedChild  lipgloss.Style
	SidebarUnselectedChild lipgloss.Style
	SidebarNewSession     lipgloss.Style
	SidebarDefault        lipgloss.Style
	SidebarActive         lipgloss.Style
	SidebarChildPrefix    lipgloss.Style

	LogPlaceholder lipgloss.Style
	LogTimestamp   lipgloss.Style
	LogProgress    lipgloss.Style
	RoleUser       lipgloss.Style
	RoleAssistant  lipgloss.Style
	RoleUnknown    lipgloss.Style
	ToolUse        lipgloss.Style
	LogText        lipgloss.Style
	AgentMain      lipgloss.Style
	AgentPalette   [8]lipgloss.Style

	StatusBar      lipgloss.Style
	StatusInactive lipgloss.Style
	StatusFilter   lipgloss.Style
	StatusSep      lipgloss.Style
	StatusShortcut lipgloss.Style

	FilterInvalid       lipgloss.Style
	FilterValidBorder   lipgloss.Style
	FilterFocusedLabel  lipgloss.Style
	FilterUnfocusedLbl  lipgloss.Style
	FilterSelected      lipgloss.Style
	FilterUnselected    lipgloss.Style
	FilterOverlay       lipgloss.Style
	FilterShortcutKey   lipgloss.Style
	FilterMainFocused   lipgloss.Style
	FilterMainUnfocused lipgloss.Style

	SearchMatch   lipgloss.Style
	SearchCurrent lipgloss.Style
	SearchInput   lipgloss.Style
	SearchPrompt  lipgloss.Style

	Help lipgloss.Style
}

// NewStyles builds the full style set from a theme's color palette.
func NewStyles(c config.Colors) Styles {
	agentPalette := [8]lipgloss.Style{}
	for i, col := range c.AgentPalette {
		agentPalette[i] = lipgloss.NewStyle().Foreground(col).Bold(true)
	}

	return Styles{
		BorderFocused:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(c.BorderFocused),
		BorderUnfocused: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(c.BorderUnfocused),

		SidebarPlaceholder:     lipgloss.NewStyle().Foreground(c.SidebarPlaceholder),
		SidebarActiveMarker:    lipgloss.NewStyle().Foreground(c.SidebarActiveMarker),
		SidebarInactiveMarker:  lipgloss.NewStyle().Foreground(c.SidebarInactiveMarker),
		SidebarSelected:        lipgloss.NewStyle().Foreground(c.SidebarSelectedFg).Background(c.SidebarSelectedBg).Bold(true),
		SidebarSelectedChild:   lipgloss.NewStyle().Foreground(c.SidebarSelectedChildFg).Background(c.SidebarSelectedChildBg),
		SidebarUnselectedChild: lipgloss.NewStyle().Foreground(c.SidebarUnselectedChild),
		SidebarNewSession:      lipgloss.NewStyle().Foreground(c.SidebarNewSession).Bold(true),
		SidebarDefault:         lipgloss.NewStyle().Foreground(c.SidebarDefaultSession),
		SidebarActive:          lipgloss.NewStyle().Foreground(c.SidebarActiveTarget).Bold(true),
		SidebarChildPrefix:     lipgloss.NewStyle().Foreground(c.SidebarChildPrefix),

		LogPlaceholder: lipgloss.NewStyle().Foreground(c.LogStreamPlaceholder),
		LogTimestamp:   lipgloss.NewStyle().Foreground(c.LogStreamTimestamp),
		LogProgress:    lipgloss.NewStyle().Foreground(c.LogStreamProgress),
		RoleUser:       lipgloss.NewStyle().Foreground(c.RoleUser).Bold(true),
		RoleAssistant:  lipgloss.NewStyle().Foreground(c.RoleAssistant).Bold(true),
		RoleUnknown:    lipgloss.NewStyle().Foreground(c.RoleUnknown),
		ToolUse:        lipgloss.NewStyle().Foreground(c.RoleToolUse),
		LogText:        lipgloss.NewStyle().Foreground(c.LogStreamText),
		AgentMain:      lipgloss.NewStyle().Foreground(c.AgentMain).Bold(true),
		AgentPalette:   agentPalette,

		StatusBar:      lipgloss.NewStyle().Background(c.StatusBarBg).Foreground(c.StatusBarFg).Padding(0, 1),
		StatusInactive: lipgloss.NewStyle().Background(c.StatusInactiveBg).Foreground(c.StatusInactiveFg).Padding(0, 1),
		StatusFilter:   lipgloss.NewStyle().Foreground(c.StatusFilter),
		StatusSep:      lipgloss.NewStyle().Foreground(c.StatusSeparator),
		StatusShortcut: lipgloss.NewStyle().Foreground(c.StatusShortcut),

		FilterInvalid:       lipgloss.NewStyle().Foreground(c.FilterInvalid),
		FilterValidBorder:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(c.FilterValidBorder),
		FilterFocusedLabel:  lipgloss.NewStyle().Foreground(c.FilterFocusedLabel).Bold(true),
		FilterUnfocusedLbl:  lipgloss.NewStyle().Foreground(c.FilterUnfocusedLbl),
		FilterSelected:      lipgloss.NewStyle().Foreground(c.FilterSelectedFg).Background(c.FilterSelectedBg),
		FilterUnselected:    lipgloss.NewStyle().Foreground(c.FilterUnselected),
		FilterOverlay:       lipgloss.NewStyle().Foreground(c.FilterOverlayFg).Background(c.FilterOverlayBg).Padding(1, 2),
		FilterShortcutKey:   lipgloss.NewStyle().Foreground(c.FilterShortcutKey).Bold(true),
		FilterMainFocused:   lipgloss.NewStyle().Foreground(c.FilterMainFocused).Bold(true),
		FilterMainUnfocused: lipgloss.NewStyle().Foreground(c.FilterMainUnfocused),

		SearchMatch:   lipgloss.NewStyle().Foreground(c.SearchMatchFg).Background(c.SearchMatchBg),
		SearchCurrent: lipgloss.NewStyle().Foreground(c.SearchCurrentFg).Background(c.SearchCurrentBg),
		SearchInput:   lipgloss.NewStyle().Foreground(c.SearchInputFg),
		SearchPrompt:  lipgloss.NewStyle().Foreground(c.SearchPrompt).Bold(true),

		Help: lipgloss.NewStyle().Foreground(c.LogStreamPlaceholder),
	}
}

// agentStyle picks the palette slot for a subagent id, hashing the id into
// one of the 8 palette slots so the same agent keeps the same color for the
// lifetime of the process. The main agent always gets AgentMain.
func (s Styles) agentStyle(agentID string) lipgloss.Style {
	if agentID == "" {
		return s.AgentMain
	}
	var h uint32
	for i := 0; i < len(agentID); i++ {
		h = h*31 + uint32(agentID[i])
	}
	return s.AgentPalette[h%uint32(len(s.AgentPalette))]
}

// truncate shortens s to at most max bytes, appending "..." when it
// doesn't fit unmodified.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
