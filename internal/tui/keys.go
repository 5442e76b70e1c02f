package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kenfdev/cc-tail/internal/session"
)

// handleKey dispatches a key event in spec priority order:
//  1. help overlay visible -> any key dismisses it
//  2. ctrl+c -> cancel an open overlay, else quit
//  3. filter overlay visible -> delegate
//  4. global keys
//  5. focus-dependent keys
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	if msg.String() == "ctrl+c" {
		if a.showFilterOverlay {
			a.showFilterOverlay = false
			return a, nil
		}
		a.quitting = true
		a.shutdown()
		return a, tea.Quit
	}

	if a.showFilterOverlay {
		result := a.filterOverlay.HandleKey(msg)
		switch result {
		case overlayCancel:
			a.showFilterOverlay = false
		case overlayApply:
			a.filt = a.filterOverlay.BuildState()
			a.showFilterOverlay = false
			a.exitScrollMode()
		case overlayConsumed:
		}
		return a, nil
	}

	if a.search.IsInput() {
		return a, a.handleSearchInputKey(msg)
	}

	switch msg.String() {
	case "q":
		a.quitting = true
		a.shutdown()
		return a, tea.Quit
	case "?":
		a.showHelp = true
		return a, nil
	case "/":
		a.filterOverlay.ResetFrom(a.filt)
		var agents []session.Agent
		if sess := a.currentSession(); sess != nil {
			agents = sess.Agents
		}
		a.filterOverlay.SetKnownOptions(knownRoles(a.buf), agents)
		a.showFilterOverlay = true
		return a, nil
	case "ctrl+f":
		a.search.StartInput()
		return a, nil
	case "n":
		if a.search.IsActive() {
			a.search.NextMatch()
			return a, nil
		}
	case "N":
		if a.search.IsActive() {
			a.search.PrevMatch()
			return a, nil
		}
	case "tab":
		if a.focus == FocusSidebar {
			a.focus = FocusLogStream
		} else {
			a.focus = FocusSidebar
		}
		return a, nil
	case "b":
		a.showSidebar = !a.showSidebar
		if !a.showSidebar {
			a.focus = FocusLogStream
		}
		return a, nil
	case "enter":
		if a.focus == FocusSidebar {
			if sess := a.currentSession(); sess != nil {
				a.confirmSession(*sess)
			}
			return a, nil
		}
	}

	if a.focus == FocusSidebar {
		a.handleSidebarKey(msg)
	} else {
		a.handleLogStreamKey(msg)
	}
	return a, nil
}

func (a *App) handleSidebarKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "j", "down":
		if a.selectedSessionIndex < len(a.sessions)-1 {
			a.selectedSessionIndex++
		}
	case "k", "up":
		if a.selectedSessionIndex > 0 {
			a.selectedSessionIndex--
		}
	}
}

func (a *App) handleLogStreamKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		a.requestScroll(scrollUp1)
	case "down", "j":
		if a.scrollActive {
			a.requestScroll(scrollDown1)
		}
	case "pageup":
		a.requestScroll(scrollPageUp)
	case "pagedown":
		if a.scrollActive {
			a.requestScroll(scrollPageDown)
		}
	case "u":
		a.requestScroll(scrollHalfUp)
	case "d":
		if a.scrollActive {
			a.requestScroll(scrollHalfDown)
		}
	case "g", "home":
		a.requestScroll(scrollTop)
	case "G", "end", "esc":
		a.exitScrollMode()
	}
}

func (a *App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.showFilterOverlay || a.showHelp {
		return a, nil
	}
	if a.focus != FocusLogStream {
		return a, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.requestScroll(scrollUp1)
	case tea.MouseButtonWheelDown:
		if a.scrollActive {
			a.requestScroll(scrollDown1)
		}
	}
	return a, nil
}

func (a *App) handleSearchInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		a.search.Cancel()
		return nil
	case "enter":
		a.search.Confirm()
		if a.search.IsActive() {
			a.recomputeSearchMatches()
		}
		return nil
	default:
		return a.search.HandleKey(msg)
	}
}

func (a *App) shutdown() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.tmuxManager != nil {
		a.tmuxManager.Cleanup()
	}
}
