package tui

import "strings"

var helpLines = []string{
	"q / ctrl+c    quit",
	"?             toggle this help",
	"/             open filter overlay",
	"tab           switch focus (sidebar / log stream)",
	"b             toggle sidebar",
	"enter         confirm selected session (sidebar focus)",
	"j/k, ↑/↓      move selection or scroll one line",
	"pageup/down   scroll 20 lines",
	"u/d           scroll half a page",
	"g/home        scroll to top",
	"G/end/esc     exit scroll mode (resume live tail)",
	"ctrl+f        start a search",
	"n / N         next / previous search match",
	"mouse wheel   scroll the log stream",
}

func (a *App) renderHelp() string {
	body := strings.Join(helpLines, "\n")
	return a.styles.FilterOverlay.Width(48).Render("Keybindings\n\n" + body + "\n\npress any key to close")
}
