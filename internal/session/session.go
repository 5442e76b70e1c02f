// Package session discovers Claude Code sessions from a project's JSONL
// directory, tracks subagent relationships, determines active/inactive
// status, and resolves a --session prefix against the discovered set.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultActiveThreshold is the default window within which a session is
// considered active (10 minutes).
const DefaultActiveThreshold = 10 * time.Minute

// Agent is a single participant within a session: the main agent (AgentID
// == "") or a subagent identified by AgentID and an optional human Slug.
type Agent struct {
	AgentID string // "" for the main agent
	Slug    string // populated later during JSONL parsing; empty during discovery
	LogPath string
	IsMain  bool
}

// Session is a discovered Claude Code session.
type Session struct {
	ID           string
	Agents       []Agent
	LastModified time.Time
}

// Status reports whether the session is active using DefaultActiveThreshold.
func (s Session) Status() Status {
	return s.StatusWithThreshold(DefaultActiveThreshold)
}

// StatusWithThreshold reports Active iff now - LastModified <= threshold.
func (s Session) StatusWithThreshold(threshold time.Duration) Status {
	elapsed := time.Since(s.LastModified)
	if elapsed <= threshold {
		return Active
	}
	return Inactive
}

// Status is whether a session is active or inactive.
type Status int

const (
	Active Status = iota
	Inactive
)

// NewFileKind classifies a newly observed path relative to a project
// directory, with no filesystem access.
type NewFileKind int

const (
	KindUnknown NewFileKind = iota
	KindTopLevelSession
	KindSubagent
)

// Classification is the result of ClassifyNewFile.
type Classification struct {
	Kind      NewFileKind
	SessionID string
	AgentID   string
}

// DiscoveryError is the error type for discovery/resolution failures.
type DiscoveryError struct {
	Kind    DiscoveryErrorKind
	Prefix  string
	Matches []string
	Err     error
}

type DiscoveryErrorKind int

const (
	ErrNoSessions DiscoveryErrorKind = iota
	ErrPrefixNotFound
	ErrAmbiguousPrefix
	ErrIO
)

func (e *DiscoveryError) Error() string {
	switch e.Kind {
	case ErrNoSessions:
		return "no sessions found in the project directory"
	case ErrPrefixNotFound:
		return fmt.Sprintf("no session found matching prefix %q", e.Prefix)
	case ErrAmbiguousPrefix:
		return fmt.Sprintf("ambiguous session prefix %q: matches %v", e.Prefix, e.Matches)
	case ErrIO:
		return fmt.Sprintf("I/O error during session discovery: %v", e.Err)
	default:
		return "unknown session discovery error"
	}
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// DiscoverSessions scans the direct children of projectDir for *.jsonl
// files (each becomes a session with a main agent) and, per session,
// {projectDir}/{id}/subagents/agent-*.jsonl files (each becomes a
// subagent). Results are sorted by LastModified descending and truncated
// to max. An entry whose metadata can't be read is skipped with a warning
// logged to logger (nil is a valid no-op logger); directory-open failure
// still propagates as an ErrIO DiscoveryError.
func DiscoverSessions(projectDir string, max int, logger *log.Logger) ([]Session, error) {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil, &DiscoveryError{Kind: ErrIO, Err: err}
	}

	var sessions []Session
	for _, de := range entries {
		info, err := de.Info()
		if err != nil {
			if logger != nil {
				logger.Warn("session: skipping entry with unreadable metadata", "name", de.Name(), "err", err)
			}
			continue
		}
		if info.IsDir() {
			continue
		}
		path := filepath.Join(projectDir, de.Name())
		if filepath.Ext(path) != ".jsonl" {
			continue
		}
		sessionID := strings.TrimSuffix(de.Name(), ".jsonl")

		mainMtime := fileModifiedTime(path)
		agents := []Agent{{AgentID: "", LogPath: path, IsMain: true}}
		maxMtime := mainMtime

		subagentsDir := filepath.Join(projectDir, sessionID, "subagents")
		if subInfo, err := os.Stat(subagentsDir); err == nil && subInfo.IsDir() {
			subEntries, err := os.ReadDir(subagentsDir)
			if err == nil {
				for _, sde := range subEntries {
					sInfo, err := sde.Info()
					if err != nil {
						if logger != nil {
							logger.Warn("session: skipping subagent entry with unreadable metadata", "name", sde.Name(), "err", err)
						}
						continue
					}
					if sInfo.IsDir() {
						continue
					}
					subPath := filepath.Join(subagentsDir, sde.Name())
					if filepath.Ext(subPath) != ".jsonl" {
						continue
					}
					stem := strings.TrimSuffix(sde.Name(), ".jsonl")
					if !strings.HasPrefix(stem, "agent-") {
						continue
					}
					agentID := strings.TrimPrefix(stem, "agent-")
					subMtime := fileModifiedTime(subPath)
					if subMtime.After(maxMtime) {
						maxMtime = subMtime
					}
					agents = append(agents, Agent{AgentID: agentID, LogPath: subPath, IsMain: false})
				}
			}
		}

		sessions = append(sessions, Session{ID: sessionID, Agents: agents, LastModified: maxMtime})
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastModified.After(sessions[j].LastModified)
	})
	if max >= 0 && len(sessions) > max {
		sessions = sessions[:max]
	}
	return sessions, nil
}

// ResolveSession resolves a session from the discovered list. If prefix ==
// "", returns the most recently modified session (sessions must already be
// sorted descending by LastModified, as DiscoverSessions returns them).
// Otherwise an exact id match wins; failing that, exactly one
// prefix-matching session is required.
func ResolveSession(sessions []Session, prefix string) (*Session, error) {
	if len(sessions) == 0 {
		return nil, &DiscoveryError{Kind: ErrNoSessions}
	}
	if prefix == "" {
		return &sessions[0], nil
	}
	for i := range sessions {
		if sessions[i].ID == prefix {
			return &sessions[i], nil
		}
	}
	var matches []*Session
	var ids []string
	for i := range sessions {
		if strings.HasPrefix(sessions[i].ID, prefix) {
			matches = append(matches, &sessions[i])
			ids = append(ids, sessions[i].ID)
		}
	}
	switch len(matches) {
	case 0:
		return nil, &DiscoveryError{Kind: ErrPrefixNotFound, Prefix: prefix}
	case 1:
		return matches[0], nil
	default:
		return nil, &DiscoveryError{Kind: ErrAmbiguousPrefix, Prefix: prefix, Matches: ids}
	}
}

// ClassifyNewFile classifies path relative to projectDir using only path
// structure: it must have a .jsonl extension, and must be either a direct
// child of projectDir (TopLevelSession) or match
// {id}/subagents/agent-{agentID}.jsonl (Subagent). Anything else is
// Unknown.
func ClassifyNewFile(path, projectDir string) Classification {
	if filepath.Ext(path) != ".jsonl" {
		return Classification{Kind: KindUnknown}
	}

	rel, err := filepath.Rel(projectDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return Classification{Kind: KindUnknown}
	}

	components := strings.Split(filepath.ToSlash(rel), "/")
	switch len(components) {
	case 1:
		stem := strings.TrimSuffix(components[0], ".jsonl")
		return Classification{Kind: KindTopLevelSession, SessionID: stem}
	case 3:
		sessionID := components[0]
		middle := components[1]
		filenameStem := strings.TrimSuffix(components[2], ".jsonl")
		if middle != "subagents" {
			return Classification{Kind: KindUnknown}
		}
		if !strings.HasPrefix(filenameStem, "agent-") {
			return Classification{Kind: KindUnknown}
		}
		return Classification{
			Kind:      KindSubagent,
			SessionID: sessionID,
			AgentID:   strings.TrimPrefix(filenameStem, "agent-"),
		}
	default:
		return Classification{Kind: KindUnknown}
	}
}

func fileModifiedTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return info.ModTime()
}
