// Package render turns a parsed message's content blocks into display-ready
// lines, including a security-conscious one-line summary for tool_use
// blocks: ANSI/control-character stripping and common secret redaction so
// that tailed logs never leak a bearer token or API key to the terminal.
package render

import (
	"regexp"
	"strings"
)

// bashCmdMaxChars bounds Bash command summaries before truncation.
const bashCmdMaxChars = 80

var ansiRE = regexp.MustCompile("\x1b\\[[0-9;]*[A-Za-z]|\x1b\\][^\x07\x1b]*(?:\x07|\x1b\\\\)|\x1b[A-Za-z]")

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(Bearer\s+)\S+`),
	regexp.MustCompile(`(sk-)[A-Za-z0-9_\-]{8,}`),
	regexp.MustCompile(`(ghp_)[A-Za-z0-9_\-]{8,}`),
	regexp.MustCompile(`(gho_)[A-Za-z0-9_\-]{8,}`),
	regexp.MustCompile(`(ghu_)[A-Za-z0-9_\-]{8,}`),
	regexp.MustCompile(`(ghs_)[A-Za-z0-9_\-]{8,}`),
	regexp.MustCompile(`(ghr_)[A-Za-z0-9_\-]{8,}`),
	regexp.MustCompile(`(?i)(token=)[^\s&]+`),
	regexp.MustCompile(`(?i)((?:API_KEY|SECRET|PASSWORD|ACCESS_TOKEN|AUTH_TOKEN|SECRET_KEY|PRIVATE_KEY|DB_PASSWORD|DATABASE_URL|AWS_SECRET_ACCESS_KEY)=)\S+`),
}

// SummarizeToolUse produces a one-line, input-only summary for a tool_use
// content block. Never panics, always returns a non-empty string, and is
// unicode-safe: truncation never splits a multi-byte character.
func SummarizeToolUse(name string, input map[string]any) string {
	sanitizedName := sanitizeControlChars(name)
	var raw string
	switch sanitizedName {
	case "Read", "Edit", "Write":
		raw = summarizeSingleKey(sanitizedName, input, "file_path")
	case "Bash":
		raw = summarizeBash(input)
	case "Glob":
		raw = summarizeSingleKey(sanitizedName, input, "pattern")
	case "Grep":
		raw = summarizeGrep(input)
	case "Task":
		raw = summarizeSingleKey(sanitizedName, input, "description")
	case "WebSearch":
		raw = summarizeSingleKey(sanitizedName, input, "query")
	case "WebFetch":
		raw = summarizeSingleKey(sanitizedName, input, "url")
	case "Skill":
		raw = summarizeSingleKey(sanitizedName, input, "skill")
	default:
		raw = "[" + sanitizedName + "]"
	}
	return redactSecrets(raw)
}

// sanitizeControlChars strips ANSI escape sequences, then any remaining
// control character (0x00-0x1F, 0x7F) except \n and \t.
func sanitizeControlChars(s string) string {
	withoutANSI := ansiRE.ReplaceAllString(s, "")
	var b strings.Builder
	b.Grow(len(withoutANSI))
	for _, r := range withoutANSI {
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// redactSecrets replaces the sensitive portion of recognized secret
// patterns with [REDACTED], preserving the prefix.
func redactSecrets(s string) string {
	result := s
	for _, pattern := range secretPatterns {
		result = pattern.ReplaceAllString(result, "${1}[REDACTED]")
	}
	return result
}

func asString(input map[string]any, key string) (string, bool) {
	if input == nil {
		return "", false
	}
	v, ok := input[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func summarizeSingleKey(tool string, input map[string]any, key string) string {
	v, ok := asString(input, key)
	if !ok || v == "" {
		return "[" + tool + "]"
	}
	sanitized := sanitizeControlChars(v)
	if sanitized == "" {
		return "[" + tool + "]"
	}
	return "[" + tool + "] " + sanitized
}

func summarizeBash(input map[string]any) string {
	cmd, ok := asString(input, "command")
	if !ok || cmd == "" {
		return "[Bash]"
	}
	sanitized := sanitizeControlChars(cmd)
	if sanitized == "" {
		return "[Bash]"
	}
	return "[Bash] " + truncateChars(sanitized, bashCmdMaxChars)
}

func summarizeGrep(input map[string]any) string {
	pattern, hasPattern := asString(input, "pattern")
	if hasPattern {
		pattern = sanitizeControlChars(pattern)
	}
	path, hasPath := asString(input, "path")
	if hasPath {
		path = sanitizeControlChars(path)
	}

	if hasPattern && pattern != "" && hasPath && path != "" {
		return `[Grep] "` + pattern + `" in ` + path
	}
	if hasPattern && pattern != "" {
		return `[Grep] "` + pattern + `"`
	}
	return "[Grep]"
}

// truncateChars truncates s to at most max runes, appending an ellipsis
// when truncated. Rune-based so a multi-byte codepoint is never split.
func truncateChars(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
