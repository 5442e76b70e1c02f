// Package search implements the search state machine (Inactive/Input/
// Active) and the UTF-8-safe case-insensitive substring matching engine
// used to highlight and navigate matches in the rendered log stream.
package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Mode is the current state of the search feature.
type Mode int

const (
	Inactive Mode = iota
	Input
	Active
)

// Match is a single match occurrence within the rendered output. LineIndex
// indexes the flat list of rendered lines; ByteStart/ByteLen describe the
// match position within that line's concatenated text, in the original
// (not lowercased) byte space.
type Match struct {
	LineIndex int
	ByteStart int
	ByteLen   int
}

// State is the complete search state, owned by the app.
type State struct {
	Mode  Mode
	input textinput.Model
	// InputBuffer mirrors input.Value() for callers (and tests) that read
	// or seed the draft buffer directly rather than through HandleKey.
	InputBuffer       string
	Query             string
	Matches           []Match
	CurrentMatchIndex int // -1 means "no current match"
}

// New returns the zero (Inactive) search state.
func New() State {
	ti := textinput.New()
	ti.Prompt = ""
	return State{CurrentMatchIndex: -1, input: ti}
}

// StartInput transitions Inactive -> Input. The input buffer is cleared but
// any previously confirmed query is preserved, so an immediate Enter
// re-searches the last query.
func (s *State) StartInput() {
	s.Mode = Input
	s.input.SetValue("")
	s.input.Focus()
	s.InputBuffer = ""
}

// HandleKey forwards a key event to the underlying text input widget while
// in Input mode (character insertion, backspace, cursor movement), syncing
// InputBuffer from the widget's value afterward. No-op outside Input mode.
func (s *State) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if s.Mode != Input {
		return nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.InputBuffer = s.input.Value()
	return cmd
}

// OnChar appends a character to the input buffer. No-op outside Input mode.
func (s *State) OnChar(ch rune) {
	s.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{ch}})
}

// OnBackspace removes the last rune from the input buffer. No-op outside
// Input mode.
func (s *State) OnBackspace() {
	s.HandleKey(tea.KeyMsg{Type: tea.KeyBackspace})
}

// Confirm handles Enter in Input mode: if the buffer is nonempty it becomes
// the new query; if the resulting query is empty, returns to Inactive,
// otherwise transitions to Active and clears prior matches.
func (s *State) Confirm() {
	if s.Mode != Input {
		return
	}
	if s.InputBuffer != "" {
		s.Query = s.InputBuffer
	}
	if s.Query == "" {
		s.Mode = Inactive
	} else {
		s.Mode = Active
		s.Matches = nil
		s.CurrentMatchIndex = -1
	}
	s.InputBuffer = ""
}

// Cancel handles Escape. From Input, returns to Inactive and discards the
// buffer. From Active, fully resets (query, matches, index) to Inactive.
func (s *State) Cancel() {
	switch s.Mode {
	case Input:
		s.Mode = Inactive
		s.InputBuffer = ""
	case Active:
		s.Mode = Inactive
		s.InputBuffer = ""
		s.Query = ""
		s.Matches = nil
		s.CurrentMatchIndex = -1
	case Inactive:
	}
}

// NextMatch advances to the next match, wrapping from last to first.
func (s *State) NextMatch() {
	if len(s.Matches) == 0 {
		return
	}
	if s.CurrentMatchIndex < 0 {
		s.CurrentMatchIndex = 0
		return
	}
	s.CurrentMatchIndex = (s.CurrentMatchIndex + 1) % len(s.Matches)
}

// PrevMatch retreats to the previous match, wrapping from first to last.
func (s *State) PrevMatch() {
	if len(s.Matches) == 0 {
		return
	}
	if s.CurrentMatchIndex < 0 {
		s.CurrentMatchIndex = len(s.Matches) - 1
		return
	}
	if s.CurrentMatchIndex == 0 {
		s.CurrentMatchIndex = len(s.Matches) - 1
	} else {
		s.CurrentMatchIndex--
	}
}

// MatchCounterDisplay returns "[i/N]" when Active, or "" when not Active.
func (s State) MatchCounterDisplay() string {
	if s.Mode != Active {
		return ""
	}
	if len(s.Matches) == 0 {
		return "[0/0]"
	}
	if s.CurrentMatchIndex < 0 {
		return fmt.Sprintf("[0/%d]", len(s.Matches))
	}
	return fmt.Sprintf("[%d/%d]", s.CurrentMatchIndex+1, len(s.Matches))
}

// IsActive reports whether search is in Active mode.
func (s State) IsActive() bool { return s.Mode == Active }

// IsInput reports whether search is in Input mode.
func (s State) IsInput() bool { return s.Mode == Input }

// CurrentMatchLine returns the line index of the current match, and
// whether one exists.
func (s State) CurrentMatchLine() (int, bool) {
	if s.CurrentMatchIndex < 0 || s.CurrentMatchIndex >= len(s.Matches) {
		return 0, false
	}
	return s.Matches[s.CurrentMatchIndex].LineIndex, true
}

// lowerOrigPair is one entry in the lowercased-to-original byte-offset
// mapping built by buildLowerToOrigMap.
type lowerOrigPair struct {
	lower int
	orig  int
}

// FindMatches performs case-insensitive, non-overlapping substring search
// and returns positions (byteStart, byteLen) in the ORIGINAL text's byte
// space. This correctly handles characters whose lowercase form changes
// byte length (Turkish dotted İ, German ß) by lowercasing into an auxiliary
// buffer, matching there, then mapping offsets back via a precomputed
// per-character offset table.
func FindMatches(text, query string) []Match {
	if query == "" {
		return nil
	}

	textLower := strings.ToLower(text)
	queryLower := strings.ToLower(query)
	queryLen := len(queryLower)

	lowerToOrig := buildLowerToOrigMap(text)

	var results []Match
	start := 0
	for start+queryLen <= len(textLower) {
		pos := strings.Index(textLower[start:], queryLower)
		if pos < 0 {
			break
		}
		lowerStart := start + pos
		lowerEnd := lowerStart + queryLen

		origStart := mapLowerToOrig(lowerToOrig, lowerStart, len(text))
		origEnd := mapLowerToOrig(lowerToOrig, lowerEnd, len(text))

		results = append(results, Match{ByteStart: origStart, ByteLen: origEnd - origStart})
		start = lowerEnd
	}
	return results
}

func buildLowerToOrigMap(text string) []lowerOrigPair {
	mapping := make([]lowerOrigPair, 0, len(text)+1)
	lowerOffset := 0
	origOffset := 0
	for _, r := range text {
		mapping = append(mapping, lowerOrigPair{lower: lowerOffset, orig: origOffset})
		lowerOffset += len(strings.ToLower(string(r)))
		origOffset += len(string(r))
	}
	mapping = append(mapping, lowerOrigPair{lower: lowerOffset, orig: origOffset})
	return mapping
}

func mapLowerToOrig(mapping []lowerOrigPair, lowerPos, origLen int) int {
	idx := sort.Search(len(mapping), func(i int) bool { return mapping[i].lower >= lowerPos })
	if idx < len(mapping) && mapping[idx].lower == lowerPos {
		return mapping[idx].orig
	}
	if idx == 0 {
		return 0
	}
	if idx >= len(mapping) {
		return origLen
	}
	return mapping[idx-1].orig
}
