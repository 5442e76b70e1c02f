package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lines(kind LineKind, texts ...string) []RenderedLine {
	out := make([]RenderedLine, len(texts))
	for i, t := range texts {
		out[i] = RenderedLine{Kind: kind, Text: t}
	}
	return out
}

func TestTextBlockSingleLine(t *testing.T) {
	got := RenderContentBlocks([]byte(`[{"type":"text","text":"Hello, world!"}]`))
	assert.Equal(t, lines(LineText, "Hello, world!"), got)
}

func TestTextBlockMultiLine(t *testing.T) {
	got := RenderContentBlocks([]byte(`[{"type":"text","text":"line1\nline2\nline3"}]`))
	assert.Equal(t, lines(LineText, "line1", "line2", "line3"), got)
}

func TestTextBlockMissingTextField(t *testing.T) {
	got := RenderContentBlocks([]byte(`[{"type":"text"}]`))
	assert.Empty(t, got)
}

func TestTextBlockTextFieldNotString(t *testing.T) {
	got := RenderContentBlocks([]byte(`[{"type":"text","text":42}]`))
	assert.Empty(t, got)
}

func TestToolUseHappyPath(t *testing.T) {
	got := RenderContentBlocks([]byte(`[{"type":"tool_use","id":"t1","name":"Read","input":{"file_path":"src/main.rs"}}]`))
	assert.Len(t, got, 1)
	assert.Equal(t, LineToolUse, got[0].Kind)
	assert.Contains(t, got[0].Text, "Read")
	assert.Contains(t, got[0].Text, "src/main.rs")
}

func TestToolResultIsSkipped(t *testing.T) {
	got := RenderContentBlocks([]byte(`[{"type":"tool_result","tool_use_id":"t1","content":"file contents"}]`))
	assert.Empty(t, got)
}

func TestToolResultAmongOtherBlocks(t *testing.T) {
	got := RenderContentBlocks([]byte(`[{"type":"text","text":"before"},{"type":"tool_result","content":"x"},{"type":"text","text":"after"}]`))
	assert.Equal(t, lines(LineText, "before", "after"), got)
}

func TestUnknownBlockThinking(t *testing.T) {
	got := RenderContentBlocks([]byte(`[{"type":"thinking","thinking":"Let me consider this..."}]`))
	assert.Len(t, got, 1)
	assert.Equal(t, LineUnknown, got[0].Kind)
	assert.Contains(t, got[0].Text, "[thinking]")
}

func TestUnknownBlockMissingTypeField(t *testing.T) {
	got := RenderContentBlocks([]byte(`[{"data":"some data"}]`))
	assert.Len(t, got, 1)
	assert.Contains(t, got[0].Text, "[unknown]")
}

func TestMixedContentPreservesOrder(t *testing.T) {
	got := RenderContentBlocks([]byte(`[
		{"type":"text","text":"Hello"},
		{"type":"tool_use","name":"Bash","input":{"command":"ls"}},
		{"type":"thinking","thinking":"hmm"},
		{"type":"text","text":"Goodbye"}
	]`))
	assert.Len(t, got, 4)
	assert.Equal(t, LineText, got[0].Kind)
	assert.Equal(t, LineToolUse, got[1].Kind)
	assert.Equal(t, LineUnknown, got[2].Kind)
	assert.Equal(t, "Goodbye", got[3].Text)
}

func TestContentIsString(t *testing.T) {
	got := RenderContentBlocks([]byte(`"System prompt text"`))
	assert.Equal(t, lines(LineText, "System prompt text"), got)
}

func TestContentIsStringMultiline(t *testing.T) {
	got := RenderContentBlocks([]byte(`"line1\nline2"`))
	assert.Equal(t, lines(LineText, "line1", "line2"), got)
}

func TestContentIsNull(t *testing.T) {
	assert.Empty(t, RenderContentBlocks([]byte(`null`)))
}

func TestContentIsNumber(t *testing.T) {
	assert.Empty(t, RenderContentBlocks([]byte(`42`)))
}

func TestContentIsObject(t *testing.T) {
	assert.Empty(t, RenderContentBlocks([]byte(`{"unexpected":"shape"}`)))
}

func TestEmptyArray(t *testing.T) {
	assert.Empty(t, RenderContentBlocks([]byte(`[]`)))
}

func TestNonObjectArrayElementsSkipped(t *testing.T) {
	assert.Empty(t, RenderContentBlocks([]byte(`[42, "string", true, null, [1,2]]`)))
}

func TestAllBlocksSkipped(t *testing.T) {
	got := RenderContentBlocks([]byte(`[{"type":"tool_result","content":"a"},{"type":"tool_result","content":"b"}]`))
	assert.Empty(t, got)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0B", formatSize(0))
	assert.Equal(t, "42B", formatSize(42))
	assert.Equal(t, "1023B", formatSize(1023))
	assert.Equal(t, "1.0KB", formatSize(1024))
	assert.Equal(t, "12.3KB", formatSize(12595))
	assert.Equal(t, "1024.0KB", formatSize(1024*1024-1))
	assert.Equal(t, "1.0MB", formatSize(1024*1024))
	assert.Equal(t, "1.5MB", formatSize(1572864))
}

func TestTextBlockWithTrailingNewline(t *testing.T) {
	got := RenderContentBlocks([]byte(`[{"type":"text","text":"hello\n"}]`))
	assert.Equal(t, lines(LineText, "hello", ""), got)
}

func TestContentEmptyString(t *testing.T) {
	got := RenderContentBlocks([]byte(`""`))
	assert.Equal(t, lines(LineText, ""), got)
}
