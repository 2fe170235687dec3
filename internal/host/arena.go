package host

import "github.com/cubedaw/engine/internal/buffer"

// arena is the frame arena of spec.md §4.H step 2 and §9: a bump
// allocator whose lifetime spans one Process call. Every sync buffer
// built while constructing a frame's job graph is handed out from
// here; reset() releases them all at once by rewinding the cursor. A
// fresh arena is built for every Process call, so its buffers are not
// carried over to the next frame.
type arena struct {
	pool []*buffer.Buffer
	used int
	size int // frame length in samples, fixed for this arena's lifetime
}

func newArena(frameSize int) *arena {
	return &arena{size: frameSize}
}

// alloc hands out one zeroed buffer slot.
func (a *arena) alloc() *buffer.Buffer {
	if a.used < len(a.pool) {
		b := a.pool[a.used]
		b.Zero()
		a.used++
		return b
	}
	b := buffer.Zeroed(a.size)
	a.pool = append(a.pool, b)
	a.used++
	return b
}

// reset rewinds the cursor, making every previously handed-out slot
// available again on the next alloc. Does not shrink the backing pool.
func (a *arena) reset() {
	a.used = 0
}
