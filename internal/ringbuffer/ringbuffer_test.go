package ringbuffer

import (
	"testing"

	"github.com/kenfdev/cc-tail/internal/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEntry(t *testing.T, sessionID string) entry.Entry {
	t.Helper()
	e, err := entry.ParseLine(`{"type":"user","sessionId":"` + sessionID + `"}`)
	require.NoError(t, err)
	return e
}

func TestBasicPushIter(t *testing.T) {
	rb := New(1 << 20)
	rb.Push(mustEntry(t, "a"))
	rb.Push(mustEntry(t, "b"))
	items := rb.Iter()
	require.Len(t, items, 2)
	assert.Equal(t, "a", *items[0].SessionID)
	assert.Equal(t, "b", *items[1].SessionID)
}

func TestByteSizeTrackingMatchesSum(t *testing.T) {
	rb := New(1 << 20)
	e1 := mustEntry(t, "a")
	e2 := mustEntry(t, "bb")
	rb.Push(e1)
	rb.Push(e2)
	assert.Equal(t, e1.EstimatedByteSize()+e2.EstimatedByteSize(), rb.ByteSize())
}

func TestEvictionRemovesOldestExactBudget(t *testing.T) {
	e := mustEntry(t, "x")
	size := e.EstimatedByteSize()
	rb := New(size * 2)
	rb.Push(mustEntry(t, "x")) // size
	rb.Push(mustEntry(t, "x")) // size, total = 2*size, fits exactly
	require.Equal(t, 2, rb.Len())
	rb.Push(mustEntry(t, "x")) // would be 3*size > budget, evict front
	assert.Equal(t, 2, rb.Len())
	assert.LessOrEqual(t, rb.ByteSize(), rb.ByteBudget())
}

func TestMultipleEvictionsPerPush(t *testing.T) {
	size := mustEntry(t, "x").EstimatedByteSize()
	rb := New(size) // budget fits exactly one
	for i := 0; i < 5; i++ {
		rb.Push(mustEntry(t, "x"))
	}
	assert.Equal(t, 1, rb.Len())
	assert.LessOrEqual(t, rb.ByteSize(), rb.ByteBudget())
}

func TestSingleOversizedEntryAccepted(t *testing.T) {
	e := mustEntry(t, "this-is-a-longer-session-id-to-make-the-entry-bigger")
	size := e.EstimatedByteSize()
	rb := New(size / 2)
	rb.Push(e)
	assert.Equal(t, 1, rb.Len())
	assert.Equal(t, size, rb.ByteSize())
	assert.Greater(t, rb.ByteSize(), rb.ByteBudget())
}

func TestIterFiltered(t *testing.T) {
	rb := New(1 << 20)
	rb.Push(mustEntry(t, "a"))
	rb.Push(mustEntry(t, "b"))
	rb.Push(mustEntry(t, "a"))
	got := rb.IterFiltered(func(e entry.Entry) bool { return *e.SessionID == "a" })
	assert.Len(t, got, 2)
}

func TestClear(t *testing.T) {
	rb := New(1 << 20)
	rb.Push(mustEntry(t, "a"))
	rb.Clear()
	assert.Equal(t, 0, rb.Len())
	assert.Equal(t, 0, rb.ByteSize())
	assert.True(t, rb.IsEmpty())
}

func TestEmptyBuffer(t *testing.T) {
	rb := New(1 << 20)
	assert.True(t, rb.IsEmpty())
	assert.Equal(t, 0, rb.Len())
	assert.Empty(t, rb.Iter())
}

func TestLenAndIsEmpty(t *testing.T) {
	rb := New(1 << 20)
	assert.True(t, rb.IsEmpty())
	rb.Push(mustEntry(t, "a"))
	assert.False(t, rb.IsEmpty())
	assert.Equal(t, 1, rb.Len())
}

func TestDefaultBudget(t *testing.T) {
	rb := WithDefaultBudget()
	assert.Equal(t, DefaultByteBudget, rb.ByteBudget())
}

func TestMixedEntrySizes(t *testing.T) {
	rb := New(500)
	rb.Push(mustEntry(t, "a"))
	rb.Push(mustEntry(t, "a-much-longer-session-identifier-here"))
	rb.Push(mustEntry(t, "b"))
	assert.LessOrEqual(t, rb.ByteSize(), rb.ByteBudget()+rb.ByteBudget()) // sanity: no runaway growth
}

func TestStress10kEntriesTightBudget(t *testing.T) {
	size := mustEntry(t, "x").EstimatedByteSize()
	rb := New(size * 10)
	for i := 0; i < 10000; i++ {
		rb.Push(mustEntry(t, "x"))
	}
	assert.LessOrEqual(t, rb.Len(), 10)
	assert.LessOrEqual(t, rb.ByteSize(), rb.ByteBudget())
}

func TestBudgetBoundaryExactFit(t *testing.T) {
	size := mustEntry(t, "x").EstimatedByteSize()
	rb := New(size * 3)
	rb.Push(mustEntry(t, "x"))
	rb.Push(mustEntry(t, "x"))
	rb.Push(mustEntry(t, "x"))
	assert.Equal(t, 3, rb.Len())
	assert.Equal(t, size*3, rb.ByteSize())
}
