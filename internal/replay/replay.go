// Package replay reconstructs the last N visible messages of a session on
// startup or session switch, and hands back per-file EOF offsets so the
// watcher can resume tailing without reprocessing replayed lines.
package replay

import (
	"bufio"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/kenfdev/cc-tail/internal/entry"
	"github.com/kenfdev/cc-tail/internal/filter"
	"github.com/kenfdev/cc-tail/internal/session"
)

// DefaultReplayCount is the default number of visible messages replayed on
// session init or session switch.
const DefaultReplayCount = 20

// Session replays the most recent visible messages from a session's JSONL
// files. It scans every agent log file, parses each line, applies the
// visibility rule (entry type must be User, Assistant, or System) and the
// current filter, sorts the survivors by timestamp, and returns at most
// maxVisible entries (oldest first) plus a map from log file path to its
// byte length at read time.
func Session(sess session.Session, f filter.State, maxVisible int, logger *log.Logger) ([]entry.Entry, map[string]int64) {
	var allVisible []entry.Entry
	eofOffsets := make(map[string]int64)

	for _, agent := range sess.Agents {
		path := agent.LogPath

		file, err := os.Open(path)
		if err != nil {
			if logger != nil {
				logger.Debug("replay: skipping unreadable file", "path", path, "err", err)
			}
			continue
		}

		info, err := file.Stat()
		if err != nil {
			if logger != nil {
				logger.Debug("replay: could not stat file", "path", path, "err", err)
			}
			file.Close()
			continue
		}
		eofOffsets[path] = info.Size()

		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			e, err := entry.ParseLine(line)
			if err != nil {
				if logger != nil {
					logger.Debug("replay: skipping malformed line", "path", path, "err", err)
				}
				continue
			}

			if !IsVisibleType(e) {
				continue
			}
			if !f.Matches(e) {
				continue
			}

			allVisible = append(allVisible, e)
		}
		if err := scanner.Err(); err != nil && logger != nil {
			logger.Debug("replay: read error", "path", path, "err", err)
		}
		file.Close()
	}

	sort.SliceStable(allVisible, func(i, j int) bool {
		return allVisible[i].TimestampOrEmpty() < allVisible[j].TimestampOrEmpty()
	})

	start := len(allVisible) - maxVisible
	if start < 0 {
		start = 0
	}
	return allVisible[start:], eofOffsets
}

// IsVisibleType reports whether e's type should be shown during replay:
// User, Assistant, or System. Progress, FileHistorySnapshot, and
// QueueOperation entries are always hidden.
func IsVisibleType(e entry.Entry) bool {
	switch e.Type {
	case entry.TypeUser, entry.TypeAssistant, entry.TypeSystem:
		return true
	default:
		return false
	}
}
