// Package ringbuffer implements a byte-budgeted FIFO buffer of parsed log
// entries with O(1) eviction accounting.
package ringbuffer

import (
	"container/list"

	"github.com/kenfdev/cc-tail/internal/entry"
)

// DefaultByteBudget is the default ring-buffer byte budget (50 MiB).
const DefaultByteBudget = 50 * 1024 * 1024

type sizedEntry struct {
	entry    entry.Entry
	byteSize int
}

// RingBuffer is a FIFO of entries bounded by a byte budget rather than a
// count. Each entry's size is computed exactly once at insertion time and
// cached, so eviction accounting is O(1) per evicted entry.
type RingBuffer struct {
	entries    *list.List
	totalBytes int
	byteBudget int
}

// New creates a RingBuffer with the given byte budget.
func New(byteBudget int) *RingBuffer {
	return &RingBuffer{
		entries:    list.New(),
		byteBudget: byteBudget,
	}
}

// WithDefaultBudget creates a RingBuffer using DefaultByteBudget.
func WithDefaultBudget() *RingBuffer {
	return New(DefaultByteBudget)
}

// Push admits a new entry, evicting from the front as needed to stay within
// budget. If a single entry's size alone exceeds the budget, it is admitted
// anyway after the buffer has been fully drained.
func (r *RingBuffer) Push(e entry.Entry) {
	size := e.EstimatedByteSize()
	for r.totalBytes+size > r.byteBudget && r.entries.Len() > 0 {
		front := r.entries.Front()
		evicted := r.entries.Remove(front).(sizedEntry)
		r.totalBytes -= evicted.byteSize
	}
	r.entries.PushBack(sizedEntry{entry: e, byteSize: size})
	r.totalBytes += size
}

// Iter returns all held entries in insertion order.
func (r *RingBuffer) Iter() []entry.Entry {
	out := make([]entry.Entry, 0, r.entries.Len())
	for el := r.entries.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(sizedEntry).entry)
	}
	return out
}

// IterFiltered returns held entries, in insertion order, for which
// predicate returns true.
func (r *RingBuffer) IterFiltered(predicate func(entry.Entry) bool) []entry.Entry {
	out := make([]entry.Entry, 0)
	for el := r.entries.Front(); el != nil; el = el.Next() {
		e := el.Value.(sizedEntry).entry
		if predicate(e) {
			out = append(out, e)
		}
	}
	return out
}

// ByteSize returns the total cached byte size of all currently held entries.
func (r *RingBuffer) ByteSize() int {
	return r.totalBytes
}

// Len returns the number of currently held entries.
func (r *RingBuffer) Len() int {
	return r.entries.Len()
}

// IsEmpty reports whether the buffer holds no entries.
func (r *RingBuffer) IsEmpty() bool {
	return r.entries.Len() == 0
}

// Clear removes all entries and resets the byte total to zero.
func (r *RingBuffer) Clear() {
	r.entries.Init()
	r.totalBytes = 0
}

// ByteBudget returns the configured budget.
func (r *RingBuffer) ByteBudget() int {
	return r.byteBudget
}
