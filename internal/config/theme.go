package config

import "github.com/charmbracelet/lipgloss"

// Theme selects one of the two built-in color palettes.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

func (t Theme) String() string {
	return string(t)
}

// ParseTheme parses a case-insensitive theme name. ok is false for anything
// other than "dark" or "light", in which case the caller should fall back
// to the default and warn.
func ParseTheme(s string) (Theme, bool) {
	switch lower(s) {
	case "dark":
		return ThemeDark, true
	case "light":
		return ThemeLight, true
	default:
		return "", false
	}
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// Colors holds every color used across the TUI, grouped by component. The
// dark palette is tuned for dark terminal backgrounds; the light palette
// is adjusted for readability on light terminal
// backgrounds. Both use the 16-color basic ANSI palette for maximum
// terminal compatibility rather than truecolor hex values, so the theme
// looks consistent across terminal emulators and over SSH.
type Colors struct {
	// Borders
	BorderFocused   lipgloss.Color
	BorderUnfocused lipgloss.Color

	// Sidebar
	SidebarPlaceholder     lipgloss.Color
	SidebarActiveMarker    lipgloss.Color
	SidebarInactiveMarker  lipgloss.Color
	SidebarSelectedFg      lipgloss.Color
	SidebarSelectedBg      lipgloss.Color
	SidebarNewSession      lipgloss.Color
	SidebarActiveTarget    lipgloss.Color
	SidebarDefaultSession  lipgloss.Color
	SidebarSelectedChildFg lipgloss.Color
	SidebarSelectedChildBg lipgloss.Color
	SidebarUnselectedChild lipgloss.Color
	SidebarChildPrefix     lipgloss.Color

	// Log stream
	LogStreamPlaceholder lipgloss.Color
	LogStreamTimestamp   lipgloss.Color
	LogStreamProgress    lipgloss.Color
	RoleUser             lipgloss.Color
	RoleAssistant        lipgloss.Color
	RoleUnknown          lipgloss.Color
	RoleToolUse          lipgloss.Color
	LogStreamText        lipgloss.Color
	AgentMain            lipgloss.Color
	AgentPalette         [8]lipgloss.Color

	// Status bar
	StatusBarBg      lipgloss.Color
	StatusBarFg      lipgloss.Color
	StatusInactiveFg lipgloss.Color
	StatusInactiveBg lipgloss.Color
	StatusFilter     lipgloss.Color
	StatusSeparator  lipgloss.Color
	StatusShortcut   lipgloss.Color

	// Filter overlay
	FilterInvalid       lipgloss.Color
	FilterValidBorder   lipgloss.Color
	FilterFocusedLabel  lipgloss.Color
	FilterUnfocusedLbl  lipgloss.Color
	FilterValidText     lipgloss.Color
	FilterSelectedFg    lipgloss.Color
	FilterSelectedBg    lipgloss.Color
	FilterUnselected    lipgloss.Color
	FilterOverlayBg     lipgloss.Color
	FilterOverlayFg     lipgloss.Color
	FilterShortcutKey   lipgloss.Color
	FilterMainFocused   lipgloss.Color
	FilterMainUnfocused lipgloss.Color

	// Search
	SearchMatchBg   lipgloss.Color
	SearchMatchFg   lipgloss.Color
	SearchCurrentBg lipgloss.Color
	SearchCurrentFg lipgloss.Color
	SearchInputFg   lipgloss.Color
	SearchPrompt    lipgloss.Color
}

// ColorsFor returns the palette for theme, defaulting to the dark palette
// for any unrecognized value rather than panicking.
func ColorsFor(theme Theme) Colors {
	if theme == ThemeLight {
		return lightColors()
	}
	return darkColors()
}

func darkColors() Colors {
	return Colors{
		BorderFocused:   "6", // cyan
		BorderUnfocused: "8", // dark gray

		SidebarPlaceholder:     "8",
		SidebarActiveMarker:    "2",
		SidebarInactiveMarker:  "8",
		SidebarSelectedFg:      "15",
		SidebarSelectedBg:      "8",
		SidebarNewSession:      "3",
		SidebarActiveTarget:    "6",
		SidebarDefaultSession:  "7",
		SidebarSelectedChildFg: "15",
		SidebarSelectedChildBg: "8",
		SidebarUnselectedChild: "8",
		SidebarChildPrefix:     "8",

		LogStreamPlaceholder: "8",
		LogStreamTimestamp:   "8",
		LogStreamProgress:    "8",
		RoleUser:             "4",
		RoleAssistant:        "2",
		RoleUnknown:          "7",
		RoleToolUse:          "3",
		LogStreamText:        "15",
		AgentMain:            "15",
		AgentPalette: [8]lipgloss.Color{
			"1", "2", "3", "4", "5", "6", "9", "10",
		},

		StatusBarBg:      "8",
		StatusBarFg:      "15",
		StatusInactiveFg: "15",
		StatusInactiveBg: "1",
		StatusFilter:     "5",
		StatusSeparator:  "8",
		StatusShortcut:   "3",

		FilterInvalid:       "1",
		FilterValidBorder:   "6",
		FilterFocusedLabel:  "6",
		FilterUnfocusedLbl:  "15",
		FilterValidText:     "15",
		FilterSelectedFg:    "15",
		FilterSelectedBg:    "8",
		FilterUnselected:    "7",
		FilterOverlayBg:     "0",
		FilterOverlayFg:     "15",
		FilterShortcutKey:   "3",
		FilterMainFocused:   "7",
		FilterMainUnfocused: "8",

		SearchMatchBg:   "3",
		SearchMatchFg:   "0",
		SearchCurrentBg: "5",
		SearchCurrentFg: "15",
		SearchInputFg:   "15",
		SearchPrompt:    "3",
	}
}

func lightColors() Colors {
	return Colors{
		BorderFocused:   "4", // blue
		BorderUnfocused: "7", // gray

		SidebarPlaceholder:     "7",
		SidebarActiveMarker:    "2",
		SidebarInactiveMarker:  "7",
		SidebarSelectedFg:      "15",
		SidebarSelectedBg:      "4",
		SidebarNewSession:      "5",
		SidebarActiveTarget:    "4",
		SidebarDefaultSession:  "8",
		SidebarSelectedChildFg: "15",
		SidebarSelectedChildBg: "4",
		SidebarUnselectedChild: "7",
		SidebarChildPrefix:     "7",

		LogStreamPlaceholder: "7",
		LogStreamTimestamp:   "7",
		LogStreamProgress:    "7",
		RoleUser:             "4",
		RoleAssistant:        "2",
		RoleUnknown:          "8",
		RoleToolUse:          "5",
		LogStreamText:        "0",
		AgentMain:            "0",
		AgentPalette: [8]lipgloss.Color{
			"1", "2", "5", "4", "6", "8", "9", "12",
		},

		StatusBarBg:      "7",
		StatusBarFg:      "0",
		StatusInactiveFg: "15",
		StatusInactiveBg: "1",
		StatusFilter:     "5",
		StatusSeparator:  "8",
		StatusShortcut:   "4",

		FilterInvalid:       "1",
		FilterValidBorder:   "4",
		FilterFocusedLabel:  "4",
		FilterUnfocusedLbl:  "0",
		FilterValidText:     "0",
		FilterSelectedFg:    "15",
		FilterSelectedBg:    "4",
		FilterUnselected:    "8",
		FilterOverlayBg:     "15",
		FilterOverlayFg:     "0",
		FilterShortcutKey:   "4",
		FilterMainFocused:   "8",
		FilterMainUnfocused: "7",

		SearchMatchBg:   "3",
		SearchMatchFg:   "0",
		SearchCurrentBg: "4",
		SearchCurrentFg: "15",
		SearchInputFg:   "0",
		SearchPrompt:    "4",
	}
}
