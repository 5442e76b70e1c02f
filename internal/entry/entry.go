// Package entry defines the parsed representation of one JSONL log line
// produced by Claude Code, and the byte-size estimate used for ring-buffer
// accounting.
package entry

import (
	"encoding/json"
	"errors"
	"strings"
)

// Type is the `type` discriminator of a log entry. Unknown values decode to
// TypeUnknown rather than failing, so the parser stays forward-compatible
// with entry types not yet modelled here.
type Type string

const (
	TypeUser                Type = "user"
	TypeAssistant           Type = "assistant"
	TypeProgress            Type = "progress"
	TypeFileHistorySnapshot Type = "file-history-snapshot"
	TypeSystem              Type = "system"
	TypeQueueOperation      Type = "queue-operation"
	TypeUnknown             Type = "unknown"
)

var knownTypes = map[Type]bool{
	TypeUser:                true,
	TypeAssistant:           true,
	TypeProgress:            true,
	TypeFileHistorySnapshot: true,
	TypeSystem:              true,
	TypeQueueOperation:      true,
}

// Message is the `message` object embedded inside a log entry. Content is
// kept as a raw JSON value so that new content-block shapes never need a
// struct change here; all dispatch on content happens by string-matching a
// "type" key at render time (see internal/render).
type Message struct {
	Role    *string         `json:"role,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
	Model   *string         `json:"model,omitempty"`
}

// Entry is a single parsed JSONL log line. Field naming in the source JSON
// mixes camelCase and bare lowercase; each field is tagged with the exact
// JSON key it binds to. Missing fields simply leave the corresponding
// pointer/zero value nil/empty — decoding never fails because of an absent
// optional field.
type Entry struct {
	Type        Type            `json:"type"`
	SessionID   *string         `json:"sessionId,omitempty"`
	Timestamp   *string         `json:"timestamp,omitempty"`
	UUID        *string         `json:"uuid,omitempty"`
	ParentUUID  *string         `json:"parentUuid,omitempty"`
	IsSidechain *bool           `json:"isSidechain,omitempty"`
	AgentID     *string         `json:"agentId,omitempty"`
	Slug        *string         `json:"slug,omitempty"`
	Message     *Message        `json:"message,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// rawEntry mirrors Entry but keeps Type as a bare string so ParseLine can
// classify unrecognized values into TypeUnknown instead of rejecting them.
type rawEntry struct {
	Type        string          `json:"type"`
	SessionID   *string         `json:"sessionId,omitempty"`
	Timestamp   *string         `json:"timestamp,omitempty"`
	UUID        *string         `json:"uuid,omitempty"`
	ParentUUID  *string         `json:"parentUuid,omitempty"`
	IsSidechain *bool           `json:"isSidechain,omitempty"`
	AgentID     *string         `json:"agentId,omitempty"`
	Slug        *string         `json:"slug,omitempty"`
	Message     *Message        `json:"message,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// ErrEmptyLine is returned by ParseLine for whitespace-only input.
var ErrEmptyLine = errors.New("entry: empty line")

// ParseLine parses one JSONL line into an Entry. Whitespace-only input is
// rejected with ErrEmptyLine; malformed JSON is rejected with the decoder's
// error. Unknown "type" values never fail — they map to TypeUnknown.
func ParseLine(line string) (Entry, error) {
	if strings.TrimSpace(line) == "" {
		return Entry{}, ErrEmptyLine
	}

	var raw rawEntry
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, err
	}

	t := Type(raw.Type)
	if !knownTypes[t] {
		t = TypeUnknown
	}

	return Entry{
		Type:        t,
		SessionID:   raw.SessionID,
		Timestamp:   raw.Timestamp,
		UUID:        raw.UUID,
		ParentUUID:  raw.ParentUUID,
		IsSidechain: raw.IsSidechain,
		AgentID:     raw.AgentID,
		Slug:        raw.Slug,
		Message:     raw.Message,
		Data:        raw.Data,
	}, nil
}

// EstimatedByteSize re-serializes the entry to compact JSON and returns the
// byte length. The exact bytes may differ from the original line (key
// ordering, omitted-vs-null fields) but the result is stable across calls
// and is only ever used for ring-buffer budget accounting, never for
// byte-exact persistence.
func (e Entry) EstimatedByteSize() int {
	b, err := json.Marshal(e)
	if err != nil {
		return 0
	}
	return len(b)
}

// TimestampOrEmpty returns the timestamp string, or "" if absent. An absent
// timestamp sorts first in the replay engine's ascending stable sort, which
// relies on empty-string comparison.
func (e Entry) TimestampOrEmpty() string {
	if e.Timestamp == nil {
		return ""
	}
	return *e.Timestamp
}

// Role returns the message role, or "" if there is no message.
func (e Entry) Role() string {
	if e.Message == nil || e.Message.Role == nil {
		return ""
	}
	return *e.Message.Role
}

// AgentIDOrEmpty returns the agent id, or "" if this entry belongs to the
// main agent.
func (e Entry) AgentIDOrEmpty() string {
	if e.AgentID == nil {
		return ""
	}
	return *e.AgentID
}

// Sidechain reports whether this entry was produced by a subagent.
func (e Entry) Sidechain() bool {
	return e.IsSidechain != nil && *e.IsSidechain
}
