// Package syncbuf implements SyncBuffer (§4.J): the wait-free handoff
// primitive that lets N upstream writers converge on one value before
// a single downstream job is released to run. Grounded on the
// original_source cubedaw-worker SyncBuffer (Mutex+Condvar) and
// adapted to the teacher's own habit of pairing a Mutex with
// explicit state fields rather than reaching for a channel-based
// rendezvous (the teacher guards its shared model with a plain
// sync.Mutex throughout internal/model).
package syncbuf

import "sync"

// bufState is SyncBuffer's lifecycle per §4.J: unprimed (initial),
// primed with k writers remaining, drained (writers == 0 and extra
// consumed).
type bufState int

const (
	stateUnprimed bufState = iota
	statePrimed
	stateDrained
)

// Buffer is a SyncBuffer[T, E]: T is the accumulated value, E is the
// "extra" payload (typically a downstream job) released to whichever
// caller completes the last write.
type Buffer[T any, E any] struct {
	mu   sync.Mutex
	cond *sync.Cond

	value T

	state         bufState
	expectedWriters int // incremented by each GetWriteHandle before Prime
	remaining       int // set by Prime, decremented by each Lock

	extra    E
	hasExtra bool
}

// New constructs an unprimed buffer holding initial — typically a
// freshly zeroed accumulation target a writer's Lock callback will mix
// into, allocated up front by the frame arena rather than by the first
// writer.
func New[T any, E any](initial T) *Buffer[T, E] {
	b := &Buffer[T, E]{value: initial}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// WriteHandle lets one upstream writer contribute to the buffer.
type WriteHandle[T any, E any] struct {
	buf *Buffer[T, E]
}

// ReadHandle lets one downstream reader observe the buffer once every
// writer has completed.
type ReadHandle[T any, E any] struct {
	buf *Buffer[T, E]
}

// GetWriteHandle registers one expected writer and returns a handle
// for it. Must be called before Prime.
func (b *Buffer[T, E]) GetWriteHandle() WriteHandle[T, E] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != stateUnprimed {
		panic("syncbuf: GetWriteHandle called after Prime")
	}
	b.expectedWriters++
	return WriteHandle[T, E]{buf: b}
}

// GetReadHandle returns a handle for the buffer's single consumer.
// Must be called before Prime.
func (b *Buffer[T, E]) GetReadHandle() ReadHandle[T, E] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != stateUnprimed {
		panic("syncbuf: GetReadHandle called after Prime")
	}
	return ReadHandle[T, E]{buf: b}
}

// Prime snapshots the expected-writer count and returns (extra, true)
// iff there were zero writers registered (the buffer is immediately
// ready; the caller should enqueue extra as a ready job itself).
// Otherwise it stashes extra for whichever write releases the last
// pending writer, and returns the zero value with false.
func (b *Buffer[T, E]) Prime(extra E) (E, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != stateUnprimed {
		panic("syncbuf: Prime called more than once")
	}
	b.remaining = b.expectedWriters
	if b.remaining == 0 {
		b.state = stateDrained
		return extra, true
	}
	b.state = statePrimed
	b.extra = extra
	b.hasExtra = true
	var zero E
	return zero, false
}

// Lock takes the buffer's mutex, invokes f against the accumulated
// value, and counts this write as complete. If this was the last
// pending write, it returns the stashed extra (the now-runnable
// downstream job) and wakes any blocked reader.
func (h WriteHandle[T, E]) Lock(f func(*T)) (extra E, ready bool) {
	b := h.buf
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != statePrimed {
		panic("syncbuf: Lock called before Prime or after drain")
	}
	f(&b.value)
	b.remaining--
	if b.remaining < 0 {
		panic("syncbuf: more writes than registered writers")
	}
	if b.remaining == 0 {
		b.state = stateDrained
		b.cond.Broadcast()
		extra = b.extra
		b.hasExtra = false
		return extra, true
	}
	var zero E
	return zero, false
}

// Wait blocks until every writer has completed, then returns the
// accumulated value. Safe to call from only one reader per §4.J.
func (h ReadHandle[T, E]) Wait() *T {
	b := h.buf
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.state != stateDrained {
		b.cond.Wait()
	}
	return &b.value
}
