package tui

import (
	"fmt"
	"strings"

	"github.com/kenfdev/cc-tail/internal/session"
)

// renderSidebar renders the session list, each with its agents nested
// beneath it, highlighting the current selection and marking sessions
// discovered since the app started.
func (a *App) renderSidebar(width int) string {
	if len(a.sessions) == 0 {
		return a.styles.SidebarPlaceholder.Render("no sessions")
	}

	var b strings.Builder
	for i, sess := range a.sessions {
		marker := a.styles.SidebarInactiveMarker.Render("○")
		if sess.Status() == session.Active {
			marker = a.styles.SidebarActiveMarker.Render("●")
		}

		label := truncate(sess.ID, width-4)
		if a.newSessionIDs[sess.ID] {
			label = a.styles.SidebarNewSession.Render(label + " new")
		} else if sess.ID == a.activeSessionID {
			label = a.styles.SidebarActive.Render(label)
		} else {
			label = a.styles.SidebarDefault.Render(label)
		}

		line := fmt.Sprintf("%s %s", marker, label)
		if i == a.selectedSessionIndex {
			line = a.styles.SidebarSelected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")

		for _, ag := range sess.Agents {
			if ag.IsMain {
				continue
			}
			childLabel := ag.Slug
			if childLabel == "" {
				childLabel = ag.AgentID
			}
			prefix := a.styles.SidebarChildPrefix.Render("  └ ")
			child := prefix + truncate(childLabel, width-6)
			if i == a.selectedSessionIndex {
				child = prefix + a.styles.SidebarSelectedChild.Render(truncate(childLabel, width-6))
			} else {
				child = prefix + a.styles.SidebarUnselectedChild.Render(truncate(childLabel, width-6))
			}
			b.WriteString(child)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
