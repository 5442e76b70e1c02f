package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// LineKind distinguishes the three shapes a RenderedLine can take.
type LineKind int

const (
	LineText LineKind = iota
	LineToolUse
	LineUnknown
)

// RenderedLine is a single display-ready line derived from one content
// block (or one line of a plain-string content value).
type RenderedLine struct {
	Kind LineKind
	Text string
}

// RenderContentBlocks renders a message.content JSON value into display
// lines. content may be a JSON array of blocks, a plain string, or
// null/other (which yields no lines).
func RenderContentBlocks(content json.RawMessage) []RenderedLine {
	if len(content) == 0 {
		return nil
	}
	// JSON null would otherwise decode without error into an empty string.
	if string(bytes.TrimSpace(content)) == "null" {
		return nil
	}

	var asString string
	if err := json.Unmarshal(content, &asString); err == nil {
		return splitTextLines(asString)
	}

	var blocks []json.RawMessage
	if err := json.Unmarshal(content, &blocks); err == nil {
		return renderArray(blocks)
	}

	return nil
}

func renderArray(blocks []json.RawMessage) []RenderedLine {
	var lines []RenderedLine
	for _, raw := range blocks {
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			// Non-object array elements (including null, which decodes
			// into a nil map) are silently skipped.
			continue
		}

		blockType, _ := obj["type"].(string)
		if blockType == "" {
			if _, hasType := obj["type"]; !hasType {
				blockType = "unknown"
			}
		}

		switch blockType {
		case "text":
			if textField, ok := obj["text"]; ok {
				if s, ok := textField.(string); ok {
					lines = append(lines, splitTextLines(s)...)
				}
				// "text" present but not a string: skip.
			}
			// "text" key missing entirely: skip.
		case "tool_use":
			name, _ := obj["name"].(string)
			input, _ := obj["input"].(map[string]any)
			summary := SummarizeToolUse(name, input)
			lines = append(lines, RenderedLine{Kind: LineToolUse, Text: summary})
		case "tool_result":
			// Explicitly skipped.
		default:
			sizeBytes := len(raw)
			label := fmt.Sprintf("[%s] (%s)", blockType, formatSize(sizeBytes))
			lines = append(lines, RenderedLine{Kind: LineUnknown, Text: label})
		}
	}
	return lines
}

func splitTextLines(s string) []RenderedLine {
	parts := strings.Split(s, "\n")
	lines := make([]RenderedLine, len(parts))
	for i, p := range parts {
		lines[i] = RenderedLine{Kind: LineText, Text: p}
	}
	return lines
}

const (
	kb = 1024
	mb = 1024 * 1024
)

// formatSize formats a byte count as a human-readable size string:
// "NB" under 1KB, "N.NKB" under 1MB, "N.NMB" otherwise.
func formatSize(bytes int) string {
	switch {
	case bytes < kb:
		return fmt.Sprintf("%dB", bytes)
	case bytes < mb:
		return fmt.Sprintf("%.1fKB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%.1fMB", float64(bytes)/mb)
	}
}
