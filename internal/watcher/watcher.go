// Package watcher provides filesystem-based monitoring of .jsonl session
// log files using fsnotify. It incrementally reads new lines from watched
// files, parses them into entries, and delivers them through a Go channel
// for the TUI to consume.
//
// Session and subagent discovery live in internal/session and
// internal/projectpath; this package is solely responsible for noticing
// byte-level changes to files already known to exist, plus new .jsonl
// files appearing under the watched directory.
package watcher

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/kenfdev/cc-tail/internal/entry"
)

// Security constants bounding how much a single incremental read can
// consume, to protect against OOM when a file grows very large between
// events or a single JSONL line never terminates.
const (
	// MaxReadBytes caps how many bytes a single incremental read call
	// will consume from a file.
	MaxReadBytes = 64 * 1024 * 1024
	// MaxIncompleteLineBuf caps the carried-over partial-line buffer; an
	// oversized partial line is discarded rather than held indefinitely.
	MaxIncompleteLineBuf = 10 * 1024 * 1024
)

// EventKind distinguishes the three event shapes downstream consumers see.
type EventKind int

const (
	EventNewEntry EventKind = iota
	EventNewFileDetected
	EventError
)

// Event is a single item delivered to the watcher's output channel.
type Event struct {
	Kind  EventKind
	Path  string
	Entry entry.Entry
	Err   error
}

// ErrProjectDirNotFound is returned by Start when the project directory
// does not exist or is not accessible.
var ErrProjectDirNotFound = errors.New("project directory not found")

// fileState tracks incremental-read progress for a single watched file.
type fileState struct {
	byteOffset        int64
	incompleteLineBuf string
}

// Watcher bridges an fsnotify watch on a project directory to a buffered
// Go channel of parsed Events, handling incremental reads, truncation,
// and symlink confinement.
type Watcher struct {
	events     chan Event
	fsWatcher  *fsnotify.Watcher
	shutdown   atomic.Bool
	done       chan struct{}
	verbose    bool
	canonical  string
	mu         sync.Mutex
	fileStates map[string]*fileState
}

// Start begins watching projectDir (recursively) for .jsonl file changes.
// initialOffsets seeds per-file byte offsets — typically the EOF offsets
// returned by replay.Session, so the watcher resumes tailing exactly
// where replay left off instead of re-emitting already-shown lines.
func Start(projectDir string, initialOffsets map[string]int64, channelCapacity int, verbose bool) (*Watcher, error) {
	info, err := os.Stat(projectDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrProjectDirNotFound, projectDir)
	}

	canonical, err := filepath.EvalSymlinks(projectDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProjectDirNotFound, projectDir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("filesystem watcher error: %w", err)
	}
	if err := addRecursive(fsw, projectDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("filesystem watcher error: %w", err)
	}

	states := make(map[string]*fileState, len(initialOffsets))
	for path, offset := range initialOffsets {
		states[path] = &fileState{byteOffset: offset}
	}

	w := &Watcher{
		events:     make(chan Event, channelCapacity),
		fsWatcher:  fsw,
		done:       make(chan struct{}),
		verbose:    verbose,
		canonical:  canonical,
		fileStates: states,
	}

	go w.run()
	return w, nil
}

// Events returns the channel of parsed watcher events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop signals the watcher goroutine to exit and closes the fsnotify
// watcher. Safe to call once.
func (w *Watcher) Stop() {
	w.shutdown.Store(true)
	w.fsWatcher.Close()
	<-w.done
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.events)

	for {
		select {
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.shutdown.Load() {
				continue
			}
			w.send(Event{Kind: EventError, Err: fmt.Errorf("filesystem watcher error: %w", err)})
		}
	}
}

func (w *Watcher) send(ev Event) {
	select {
	case w.events <- ev:
	default:
		// Channel full: drop rather than block the watcher goroutine
		// indefinitely. The TUI is expected to drain promptly; a full
		// channel means the consumer has fallen badly behind.
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !IsWatchedJSONL(ev.Name) {
		if ev.Op.Has(fsnotify.Create) {
			// A newly created subdirectory (e.g. <session>/subagents/) needs
			// its own fsnotify watch to see files created inside it.
			if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
				_ = w.fsWatcher.Add(ev.Name)
			}
		}
		return
	}

	switch {
	case ev.Op.Has(fsnotify.Create):
		path, ok := w.validatePath(ev.Name)
		if !ok {
			return
		}
		w.send(Event{Kind: EventNewFileDetected, Path: path})
		w.readAndEmit(path)

	case ev.Op.Has(fsnotify.Write):
		path, ok := w.validatePath(ev.Name)
		if !ok {
			return
		}
		w.readAndEmit(path)

	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		key, err := filepath.EvalSymlinks(ev.Name)
		if err != nil {
			key = ev.Name
		}
		w.mu.Lock()
		delete(w.fileStates, key)
		delete(w.fileStates, ev.Name)
		w.mu.Unlock()
	}
}

// validatePath resolves symlinks and confirms the result is still within
// the canonical watched directory, preventing a symlink from redirecting
// reads outside the project's log tree.
func (w *Watcher) validatePath(path string) (string, bool) {
	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		// The file may have been removed between the event firing and
		// this check; that's expected and not worth a warning.
		return "", false
	}
	rel, err := filepath.Rel(w.canonical, canonical)
	if err != nil || strings.HasPrefix(rel, "..") {
		if w.verbose {
			fmt.Fprintf(os.Stderr, "cc-tail: warning: path %s resolves to %s which is outside watched directory %s\n", path, canonical, w.canonical)
		}
		return "", false
	}
	return canonical, true
}

func (w *Watcher) readAndEmit(path string) {
	w.mu.Lock()
	state, ok := w.fileStates[path]
	if !ok {
		state = &fileState{}
		w.fileStates[path] = state
	}
	w.mu.Unlock()

	entries := ReadNewEntries(path, state, w.verbose)
	for _, e := range entries {
		w.send(Event{Kind: EventNewEntry, Path: path, Entry: e})
	}
}

// addRecursive adds root and every subdirectory beneath it to fsw. Used at
// startup since fsnotify is not itself recursive.
func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}

// IsWatchedJSONL reports whether path has a .jsonl extension.
func IsWatchedJSONL(path string) bool {
	return filepath.Ext(path) == ".jsonl"
}

// ReadNewEntries reads and parses any bytes appended to path since
// state.byteOffset. Detects truncation (resets to offset 0), buffers a
// trailing incomplete line across calls, and skips malformed lines (with a
// warning on stderr when verbose). Reads are capped at MaxReadBytes per
// call.
func ReadNewEntries(path string, state *fileState, verbose bool) []entry.Entry {
	var entries []entry.Entry

	f, err := os.Open(path)
	if err != nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "cc-tail: warning: could not open %s: %v\n", path, err)
		}
		return entries
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "cc-tail: warning: could not stat %s: %v\n", path, err)
		}
		return entries
	}
	fileLen := info.Size()

	if fileLen < state.byteOffset {
		if verbose {
			fmt.Fprintf(os.Stderr, "cc-tail: file truncated, resetting offset: %s\n", path)
		}
		state.byteOffset = 0
		state.incompleteLineBuf = ""
	}

	if fileLen == state.byteOffset {
		return entries
	}

	if _, err := f.Seek(state.byteOffset, 0); err != nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "cc-tail: warning: could not seek in %s: %v\n", path, err)
		}
		return entries
	}

	bytesAvailable := fileLen - state.byteOffset
	readLimit := bytesAvailable
	if readLimit > MaxReadBytes {
		readLimit = MaxReadBytes
	}

	buf := make([]byte, readLimit)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		if verbose {
			fmt.Fprintf(os.Stderr, "cc-tail: warning: could not read %s: %v\n", path, err)
		}
		return entries
	}
	buf = buf[:n]
	state.byteOffset += int64(n)

	fullText := buf
	if state.incompleteLineBuf != "" {
		fullText = append([]byte(state.incompleteLineBuf), buf...)
	}

	endsWithNewline := len(fullText) > 0 && fullText[len(fullText)-1] == '\n'
	lines := strings.Split(string(fullText), "\n")

	if !endsWithNewline && len(lines) > 0 {
		last := lines[len(lines)-1]
		lines = lines[:len(lines)-1]
		if last != "" {
			if len(last) > MaxIncompleteLineBuf {
				if verbose {
					fmt.Fprintf(os.Stderr, "cc-tail: warning: discarding oversized incomplete line (%d bytes) in %s\n", len(last), path)
				}
				state.incompleteLineBuf = ""
			} else {
				state.incompleteLineBuf = last
				if len(state.incompleteLineBuf) > MaxIncompleteLineBuf {
					if verbose {
						fmt.Fprintf(os.Stderr, "cc-tail: warning: incomplete line buffer exceeded %d bytes, resetting for %s\n", MaxIncompleteLineBuf, path)
					}
					state.incompleteLineBuf = ""
				}
			}
		}
	} else {
		state.incompleteLineBuf = ""
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		e, err := entry.ParseLine(trimmed)
		if err != nil {
			if verbose {
				fmt.Fprintf(os.Stderr, "cc-tail: warning: skipping malformed line in %s: %v\n", path, err)
			}
			continue
		}
		entries = append(entries, e)
	}

	return entries
}
