package tui

// scrollKind is a single scroll-freeze action. offset is measured as
// "lines scrolled back from the live bottom": 0 means viewing the most
// recent line (live), and it increases as the view moves toward older
// lines. This direction isn't pinned by name in the spec's key-dispatch
// table, only its clamp bounds and entry/exit triggers are, so it's
// recorded here as a resolved Open Question (see DESIGN.md).
type scrollKind int

const (
	scrollUp1 scrollKind = iota
	scrollDown1
	scrollPageUp
	scrollPageDown
	scrollHalfUp
	scrollHalfDown
	scrollTop
)

// scrollSnapshot freezes the log stream's content at the moment scroll mode
// is entered, so live tailing doesn't shift the view out from under the
// user while they scroll.
type scrollSnapshot struct {
	lines         []string
	offset        int
	totalLines    int
	visibleHeight int
}

// requestScroll records the first scroll keystroke as a PendingScroll (to
// be applied once the next render captures a snapshot), or mutates an
// already-captured snapshot's offset directly.
func (a *App) requestScroll(kind scrollKind) {
	if !a.scrollActive {
		a.scrollActive = true
		k := kind
		a.pendingScroll = &k
		return
	}
	if a.snapshot == nil {
		k := kind
		a.pendingScroll = &k
		return
	}
	a.applyScroll(kind)
}

// captureSnapshotIfNeeded builds the frozen line snapshot on the first
// render after scroll mode was entered, using lines/visibleHeight as
// observed at render time, then applies any pending scroll action.
func (a *App) captureSnapshotIfNeeded(lines []string, visibleHeight int) {
	if !a.scrollActive || a.snapshot != nil {
		return
	}
	a.snapshot = &scrollSnapshot{
		lines:         lines,
		offset:        0,
		totalLines:    len(lines),
		visibleHeight: visibleHeight,
	}
	if a.pendingScroll != nil {
		a.applyScroll(*a.pendingScroll)
		a.pendingScroll = nil
	}
}

func (a *App) applyScroll(kind scrollKind) {
	snap := a.snapshot
	if snap == nil {
		return
	}
	maxOffset := snap.totalLines - snap.visibleHeight
	if maxOffset < 0 {
		maxOffset = 0
	}

	switch kind {
	case scrollUp1:
		snap.offset = clampInt(snap.offset+1, 0, maxOffset)
	case scrollDown1:
		if snap.offset == 0 {
			a.exitScrollMode()
			return
		}
		snap.offset = clampInt(snap.offset-1, 0, maxOffset)
	case scrollPageUp:
		snap.offset = clampInt(snap.offset+20, 0, maxOffset)
	case scrollPageDown:
		if snap.offset == 0 {
			a.exitScrollMode()
			return
		}
		snap.offset = clampInt(snap.offset-20, 0, maxOffset)
	case scrollHalfUp:
		snap.offset = clampInt(snap.offset+snap.visibleHeight/2, 0, maxOffset)
	case scrollHalfDown:
		if snap.offset == 0 {
			a.exitScrollMode()
			return
		}
		snap.offset = clampInt(snap.offset-snap.visibleHeight/2, 0, maxOffset)
	case scrollTop:
		snap.offset = maxOffset
	}
}

// exitScrollMode clears the snapshot and any pending action, resuming live
// tailing. Idempotent.
func (a *App) exitScrollMode() {
	a.scrollActive = false
	a.snapshot = nil
	a.pendingScroll = nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
