// Package tui implements the interactive terminal monitor: a sidebar of
// discovered sessions, a scrollable role-aware log stream, a filter
// overlay, a help overlay, and scroll-freeze semantics over a snapshot of
// the currently visible lines.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/kenfdev/cc-tail/internal/config"
	"github.com/kenfdev/cc-tail/internal/filter"
	"github.com/kenfdev/cc-tail/internal/replay"
	"github.com/kenfdev/cc-tail/internal/ringbuffer"
	"github.com/kenfdev/cc-tail/internal/search"
	"github.com/kenfdev/cc-tail/internal/session"
	"github.com/kenfdev/cc-tail/internal/tmux"
	"github.com/kenfdev/cc-tail/internal/watcher"
)

// Focus indicates which pane receives focus-dependent key events.
type Focus int

const (
	FocusSidebar Focus = iota
	FocusLogStream
)

// maxDrainPerTick bounds how many watcher events a single Cmd invocation
// consumes before yielding back to the Bubble Tea loop, so a burst of
// writes never starves UI responsiveness.
const maxDrainPerTick = 200

// App is the top-level Bubble Tea model.
type App struct {
	projectDir string
	cfg        config.AppConfig
	styles     Styles
	logger     *log.Logger

	sessions             []session.Session
	selectedSessionIndex int
	activeSessionID      string
	newSessionIDs        map[string]bool
	activeAgentPaths     map[string]bool

	focus       Focus
	showSidebar bool

	buf    *ringbuffer.RingBuffer
	filt   filter.State
	search search.State

	filterOverlay     *filterOverlay
	showFilterOverlay bool
	showHelp          bool

	scrollActive  bool
	pendingScroll *scrollKind
	snapshot      *scrollSnapshot

	watcher    *watcher.Watcher
	eofOffsets map[string]int64

	tmuxManager *tmux.Manager
	wantTmux    bool

	width, height int
	quitting      bool
	err           error
	statusNote    string
}

// New constructs an App for the given project directory. Session discovery
// runs synchronously; the watcher and any tmux panes are started lazily
// from Init so failures surface as Bubble Tea messages instead of
// constructor errors.
func New(projectDir string, cfg config.AppConfig, wantTmux bool, logger *log.Logger) (*App, error) {
	sessions, err := session.DiscoverSessions(projectDir, 200, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		projectDir:       projectDir,
		cfg:              cfg,
		styles:           NewStyles(config.ColorsFor(cfg.Theme)),
		logger:           logger,
		sessions:         sessions,
		newSessionIDs:    make(map[string]bool),
		activeAgentPaths: make(map[string]bool),
		showSidebar:      true,
		focus:            FocusLogStream,
		buf:              ringbuffer.WithDefaultBudget(),
		filt:             filter.New(),
		search:           search.New(),
		filterOverlay:    newFilterOverlay(),
		eofOffsets:       make(map[string]int64),
		tmuxManager:      tmux.NewManager(cfg.Tmux.Layout),
		wantTmux:         wantTmux,
	}

	if cfg.Session != "" {
		sess, err := session.ResolveSession(sessions, cfg.Session)
		if err != nil {
			return nil, err
		}
		for i := range sessions {
			if sessions[i].ID == sess.ID {
				a.selectedSessionIndex = i
				break
			}
		}
	}

	if len(sessions) == 0 {
		a.statusNote = "no sessions found in this project"
	} else {
		a.confirmSession(sessions[a.selectedSessionIndex])
	}

	return a, nil
}

// Messages delivered to Update. All are plain data; no Cmd closure mutates
// App state directly, since Cmd functions run on their own goroutine.
type (
	watcherStartedMsg struct {
		w   *watcher.Watcher
		err error
	}
	watcherEventsMsg []watcher.Event
	watcherClosedMsg struct{}
	tmuxSpawnedMsg   struct{ err error }
)

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.startWatcherCmd())
}

func (a *App) startWatcherCmd() tea.Cmd {
	projectDir := a.projectDir
	offsets := a.eofOffsets
	verbose := a.cfg.Verbose
	return func() tea.Msg {
		w, err := watcher.Start(projectDir, offsets, 256, verbose)
		return watcherStartedMsg{w: w, err: err}
	}
}

func waitForWatcherEvents(ch <-chan watcher.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return watcherClosedMsg{}
		}
		events := []watcher.Event{ev}
		for len(events) < maxDrainPerTick {
			select {
			case e, ok := <-ch:
				if !ok {
					return watcherEventsMsg(events)
				}
				events = append(events, e)
			default:
				return watcherEventsMsg(events)
			}
		}
		return watcherEventsMsg(events)
	}
}

func (a *App) spawnTmuxPanesCmd() tea.Cmd {
	if !a.wantTmux || a.tmuxManager == nil {
		return nil
	}
	sess := a.currentSession()
	if sess == nil {
		return nil
	}
	panes := make([]tmux.AgentPane, 0, len(sess.Agents))
	for _, ag := range sess.Agents {
		if ag.IsMain {
			continue
		}
		panes = append(panes, tmux.AgentPane{Label: ag.Slug, LogPath: ag.LogPath})
	}
	if len(panes) == 0 {
		return nil
	}
	mgr := a.tmuxManager
	return func() tea.Msg {
		_, err := mgr.SpawnPanes(panes)
		return tmuxSpawnedMsg{err: err}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case watcherStartedMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.watcher = msg.w
		return a, tea.Batch(waitForWatcherEvents(a.watcher.Events()), a.spawnTmuxPanesCmd())

	case watcherEventsMsg:
		a.applyWatcherEvents([]watcher.Event(msg))
		if a.watcher != nil {
			return a, waitForWatcherEvents(a.watcher.Events())
		}
		return a, nil

	case watcherClosedMsg:
		return a, nil

	case tmuxSpawnedMsg:
		if msg.err != nil && a.logger != nil {
			a.logger.Debug("tmux: pane spawn failed", "err", msg.err)
		}
		return a, nil
	}

	return a, nil
}

func (a *App) applyWatcherEvents(events []watcher.Event) {
	for _, ev := range events {
		switch ev.Kind {
		case watcher.EventNewEntry:
			if a.activeAgentPaths[ev.Path] {
				a.buf.Push(ev.Entry)
			}
		case watcher.EventNewFileDetected:
			a.handleNewFile(ev.Path)
		case watcher.EventError:
			if a.logger != nil && a.cfg.Verbose {
				a.logger.Warn("watcher error", "err", ev.Err)
			}
		}
	}
}

// handleNewFile classifies a newly observed path and updates session
// bookkeeping per the new-file handling rules: a fresh top-level session is
// inserted at index 0, keeping the current selection stable; a subagent
// file is attached to its parent session if not already present. Unknown
// paths and duplicate session ids are ignored.
func (a *App) handleNewFile(path string) {
	cl := session.ClassifyNewFile(path, a.projectDir)
	switch cl.Kind {
	case session.KindTopLevelSession:
		for _, s := range a.sessions {
			if s.ID == cl.SessionID {
				return
			}
		}
		newSession := session.Session{
			ID:           cl.SessionID,
			Agents:       []session.Agent{{LogPath: path, IsMain: true}},
			LastModified: time.Now(),
		}
		hadSessions := len(a.sessions) > 0
		a.sessions = append([]session.Session{newSession}, a.sessions...)
		if hadSessions {
			a.selectedSessionIndex++
		} else {
			a.statusNote = ""
			a.confirmSession(newSession)
		}
		// Marked after the auto-confirm above, which clears the mark; only
		// Enter on the session removes it.
		a.newSessionIDs[cl.SessionID] = true

	case session.KindSubagent:
		for i := range a.sessions {
			if a.sessions[i].ID != cl.SessionID {
				continue
			}
			for _, ag := range a.sessions[i].Agents {
				if ag.AgentID == cl.AgentID {
					return
				}
			}
			a.sessions[i].Agents = append(a.sessions[i].Agents, session.Agent{
				AgentID: cl.AgentID,
				LogPath: path,
			})
			a.sessions[i].LastModified = time.Now()
			if a.sessions[i].ID == a.activeSessionID {
				a.activeAgentPaths[path] = true
			}
			return
		}
	}
}

func (a *App) currentSession() *session.Session {
	if a.selectedSessionIndex < 0 || a.selectedSessionIndex >= len(a.sessions) {
		return nil
	}
	return &a.sessions[a.selectedSessionIndex]
}

// confirmSession makes sess the active session: resets the ring buffer,
// replays its recent visible history, rebuilds the active-agent path set,
// exits scroll mode, and clears the session from the new-session highlight
// set. Focus is left unchanged, per spec.
func (a *App) confirmSession(sess session.Session) {
	a.activeSessionID = sess.ID
	delete(a.newSessionIDs, sess.ID)
	a.exitScrollMode()

	a.buf.Clear()
	a.activeAgentPaths = make(map[string]bool)
	for _, ag := range sess.Agents {
		a.activeAgentPaths[ag.LogPath] = true
	}

	entries, eofOffsets := replay.Session(sess, a.filt, replay.DefaultReplayCount, a.logger)
	for _, e := range entries {
		a.buf.Push(e)
	}
	for path, off := range eofOffsets {
		a.eofOffsets[path] = off
	}
}

func (a *App) View() string {
	if a.quitting {
		return "bye\n"
	}
	if a.err != nil {
		return fmt.Sprintf("error: %v\n\npress q to quit\n", a.err)
	}
	if a.width == 0 {
		return "loading..."
	}

	contentHeight := a.height - 2
	if contentHeight < 1 {
		contentHeight = 1
	}

	var body string
	if a.showSidebar {
		sidebarWidth := 28
		logWidth := a.width - sidebarWidth - 1
		if logWidth < 10 {
			logWidth = 10
		}
		sidebarStyle := a.styles.BorderUnfocused
		logStyle := a.styles.BorderUnfocused
		if a.focus == FocusSidebar {
			sidebarStyle = a.styles.BorderFocused
		} else {
			logStyle = a.styles.BorderFocused
		}
		sidebarPane := sidebarStyle.Width(sidebarWidth).Height(contentHeight).Render(a.renderSidebar(sidebarWidth))
		logPane := logStyle.Width(logWidth).Height(contentHeight).Render(a.renderLogPane(logWidth, contentHeight))
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebarPane, logPane)
	} else {
		logStyle := a.styles.BorderFocused
		body = logStyle.Width(a.width - 2).Height(contentHeight).Render(a.renderLogPane(a.width-2, contentHeight))
	}

	out := body + "\n" + a.renderStatusBar()

	if a.showFilterOverlay {
		overlay := a.renderFilterOverlay()
		out = lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, overlay)
	}
	if a.showHelp {
		out = lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.renderHelp())
	}

	return out
}
