package streammode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenfdev/cc-tail/internal/config"
	"github.com/kenfdev/cc-tail/internal/entry"
)

func TestFormatTimestampISO8601(t *testing.T) {
	assert.Equal(t, "14:30:12", formatTimestamp("2025-01-15T14:30:12Z"))
}

func TestFormatTimestampWithMillis(t *testing.T) {
	assert.Equal(t, "14:30:12", formatTimestamp("2025-01-15T14:30:12.123Z"))
}

func TestFormatTimestampWithOffset(t *testing.T) {
	assert.Equal(t, "14:30:12", formatTimestamp("2025-01-15T14:30:12+09:00"))
}

func TestFormatTimestampNoTSeparator(t *testing.T) {
	assert.Equal(t, "--:--:--", formatTimestamp("not a timestamp"))
}

func TestFormatTimestampShortTime(t *testing.T) {
	assert.Equal(t, "--:--:--", formatTimestamp("2025-01-15T14"))
}

func TestFormatTimestampEmpty(t *testing.T) {
	assert.Equal(t, "--:--:--", formatTimestamp(""))
}

func TestColorsForPipeAllEmpty(t *testing.T) {
	c := colorsForPipe()
	assert.Empty(t, c.timestamp)
	assert.Empty(t, c.roleUser)
	assert.Empty(t, c.roleAssistant)
	assert.Empty(t, c.roleSystem)
	assert.Empty(t, c.toolUse)
	assert.Empty(t, c.text)
	assert.Empty(t, c.reset)
}

func TestColorsForTTYDarkHasEscapes(t *testing.T) {
	c := colorsForTTY(config.ThemeDark)
	assert.Contains(t, c.timestamp, "\x1b[")
	assert.Contains(t, c.roleUser, "\x1b[")
	assert.Contains(t, c.roleAssistant, "\x1b[")
	assert.Contains(t, c.reset, "\x1b[")
}

func TestColorsForTTYLightHasEscapes(t *testing.T) {
	c := colorsForTTY(config.ThemeLight)
	assert.Contains(t, c.timestamp, "\x1b[")
	assert.Contains(t, c.roleUser, "\x1b[")
	assert.Contains(t, c.roleAssistant, "\x1b[")
	assert.Contains(t, c.reset, "\x1b[")
}

func TestRoleIndicatorUserTTY(t *testing.T) {
	label, _ := roleIndicator(entry.Entry{Type: entry.TypeUser}, colorsForTTY(config.ThemeDark), true)
	assert.Equal(t, "\U0001f9d1", label)
}

func TestRoleIndicatorUserPipe(t *testing.T) {
	label, _ := roleIndicator(entry.Entry{Type: entry.TypeUser}, colorsForPipe(), false)
	assert.Equal(t, "[H]", label)
}

func TestRoleIndicatorAssistantPipe(t *testing.T) {
	label, _ := roleIndicator(entry.Entry{Type: entry.TypeAssistant}, colorsForPipe(), false)
	assert.Equal(t, "[A]", label)
}

func TestRoleIndicatorSystemPipe(t *testing.T) {
	label, _ := roleIndicator(entry.Entry{Type: entry.TypeSystem}, colorsForPipe(), false)
	assert.Equal(t, "[S]", label)
}

func TestRoleIndicatorProgressPipe(t *testing.T) {
	label, _ := roleIndicator(entry.Entry{Type: entry.TypeProgress}, colorsForPipe(), false)
	assert.Equal(t, "[P]", label)
}

func jsonlEntry(ts, role, text string) string {
	return fmt.Sprintf(`{"type": %q, "timestamp": %q, "message": {"role": %q, "content": [{"type": "text", "text": %q}]}}`, role, ts, role, text)
}

func TestPrintEntryUserPipe(t *testing.T) {
	role := "user"
	text := "fix the bug"
	e := entry.Entry{
		Type:      entry.TypeUser,
		Timestamp: strPtr("2025-01-15T10:30:00Z"),
		Message:   &entry.Message{Role: &role, Content: []byte(`[{"type":"text","text":"fix the bug"}]`)},
	}
	var buf bytes.Buffer
	err := printEntry(&buf, e, colorsForPipe(), false)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "10:30:00")
	assert.Contains(t, out, "[H]")
	assert.Contains(t, out, text)
}

func TestPrintEntryNoMessageStillPrintsHeader(t *testing.T) {
	e := entry.Entry{Type: entry.TypeSystem, Timestamp: strPtr("2025-01-15T10:00:00Z")}
	var buf bytes.Buffer
	err := printEntry(&buf, e, colorsForPipe(), false)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "10:00:00")
	assert.Contains(t, out, "[S]")
}

func TestPrintEntryToolUsePipe(t *testing.T) {
	role := "assistant"
	e := entry.Entry{
		Type: entry.TypeAssistant,
		Message: &entry.Message{
			Role:    &role,
			Content: []byte(`[{"type":"tool_use","id":"t1","name":"Read","input":{"file_path":"src/auth/mod.go"}}]`),
		},
	}
	var buf bytes.Buffer
	err := printEntry(&buf, e, colorsForPipe(), false)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "[Read]")
	assert.Contains(t, out, "src/auth/mod.go")
}

func TestPrintEntryTTYHasANSIAndEmoji(t *testing.T) {
	role := "user"
	e := entry.Entry{
		Type:    entry.TypeUser,
		Message: &entry.Message{Role: &role, Content: []byte(`[{"type":"text","text":"hello"}]`)},
	}
	var buf bytes.Buffer
	err := printEntry(&buf, e, colorsForTTY(config.ThemeDark), true)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "\U0001f9d1")
}

// failingWriter errors on the Nth write call, simulating a broken pipe.
type failingWriter struct {
	failAfter int
	calls     int
}

func (f *failingWriter) Write(p []byte) (int, error) {
	f.calls++
	if f.calls > f.failAfter {
		return 0, errors.New("broken pipe")
	}
	return len(p), nil
}

func TestPrintEntryWriteErrorPropagates(t *testing.T) {
	e := entry.Entry{Type: entry.TypeUser}
	w := &failingWriter{failAfter: 0}
	err := printEntry(w, e, colorsForPipe(), false)
	assert.Error(t, err)
}

func strPtr(s string) *string { return &s }

func writeTempJSONL(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReplayPhaseEmptyFile(t *testing.T) {
	path := writeTempJSONL(t)
	cfg := Config{Path: path, ReplayCount: 20, Out: &bytes.Buffer{}}
	offset, err := replayPhase(cfg, colorsForPipe())
	require.NoError(t, err)
	assert.Equal(t, int64(0), offset)
}

func TestReplayPhaseReturnsEOFOffset(t *testing.T) {
	lines := []string{
		jsonlEntry("2025-01-15T10:00:00Z", "user", "hello"),
		jsonlEntry("2025-01-15T10:01:00Z", "assistant", "hi"),
	}
	path := writeTempJSONL(t, lines...)
	info, err := os.Stat(path)
	require.NoError(t, err)

	var buf bytes.Buffer
	cfg := Config{Path: path, ReplayCount: 20, Out: &buf}
	offset, err := replayPhase(cfg, colorsForPipe())
	require.NoError(t, err)
	assert.Equal(t, info.Size(), offset)
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "hi")
}

func TestReplayPhaseLimitsToReplayCount(t *testing.T) {
	var lines []string
	for i := 0; i < 5; i++ {
		lines = append(lines, jsonlEntry(fmt.Sprintf("2025-01-15T10:0%d:00Z", i), "user", fmt.Sprintf("msg-%d", i)))
	}
	path := writeTempJSONL(t, lines...)

	var buf bytes.Buffer
	cfg := Config{Path: path, ReplayCount: 2, Out: &buf}
	_, err := replayPhase(cfg, colorsForPipe())
	require.NoError(t, err)
	out := buf.String()
	assert.NotContains(t, out, "msg-0")
	assert.NotContains(t, out, "msg-1")
	assert.NotContains(t, out, "msg-2")
	assert.Contains(t, out, "msg-3")
	assert.Contains(t, out, "msg-4")
}

func TestReplayPhasePrintsEndOfReplaySummary(t *testing.T) {
	lines := []string{
		jsonlEntry("2025-01-15T10:00:00Z", "user", "hello"),
		jsonlEntry("2025-01-15T10:01:00Z", "assistant", "hi"),
	}
	path := writeTempJSONL(t, lines...)

	var buf bytes.Buffer
	cfg := Config{Path: path, ReplayCount: 20, Out: &buf}
	_, err := replayPhase(cfg, colorsForPipe())
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "-- replayed 2 messages")
	assert.Contains(t, out, "over")
}

func TestReplayPhaseEmptyFileSkipsSummary(t *testing.T) {
	path := writeTempJSONL(t)
	var buf bytes.Buffer
	cfg := Config{Path: path, ReplayCount: 20, Out: &buf}
	_, err := replayPhase(cfg, colorsForPipe())
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "replayed")
}

func TestRunReturnsFileNotFound(t *testing.T) {
	cfg := Config{Path: "/tmp/definitely-does-not-exist-cc-tail.jsonl", Out: &bytes.Buffer{}}
	err := Run(context.Background(), cfg)
	assert.True(t, errors.Is(err, ErrFileNotFound))
}

func TestRunReplaysThenExitsOnContextCancel(t *testing.T) {
	lines := []string{jsonlEntry("2025-01-15T10:00:00Z", "user", "hello")}
	path := writeTempJSONL(t, lines...)

	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	cfg := Config{Path: path, ReplayCount: 20, Out: &buf}

	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after context cancellation")
	}
	assert.Contains(t, buf.String(), "hello")
}
