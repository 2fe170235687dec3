// Package buffer implements the fixed-alignment sample blocks the rest
// of the engine passes between nodes, workers, and the audio device.
package buffer

import "fmt"

// BlockSize is the internal block size N in samples. Every Buffer's
// length must be a multiple of BlockSize.
const BlockSize = 16

// Buffer is a contiguous sequence of float32 samples whose length is a
// multiple of BlockSize. It is exposed both as a flat sample slice
// (Samples) and as a slice of fixed-size blocks (Blocks) so the
// executor can hand one block at a time to a plugin invocation without
// copying.
type Buffer struct {
	samples []float32
}

// Zeroed allocates a zero-initialised buffer of the given length, which
// must be a multiple of BlockSize.
func Zeroed(length int) *Buffer {
	if length%BlockSize != 0 {
		panic(fmt.Sprintf("buffer: length %d is not a multiple of BlockSize %d", length, BlockSize))
	}
	return &Buffer{samples: make([]float32, length)}
}

// Len returns the number of samples.
func (b *Buffer) Len() int { return len(b.samples) }

// Samples returns the raw sample slice. Mutations are visible through
// the Buffer.
func (b *Buffer) Samples() []float32 { return b.samples }

// NumBlocks returns the number of BlockSize-sized blocks.
func (b *Buffer) NumBlocks() int { return len(b.samples) / BlockSize }

// Block returns the i-th block as a slice view (no copy) of length
// BlockSize.
func (b *Buffer) Block(i int) []float32 {
	start := i * BlockSize
	return b.samples[start : start+BlockSize]
}

// Zero resets every sample to zero without reallocating.
func (b *Buffer) Zero() {
	for i := range b.samples {
		b.samples[i] = 0
	}
}

// CopyFrom overwrites b's contents with src's. Panics if lengths differ.
func (b *Buffer) CopyFrom(src *Buffer) {
	if len(b.samples) != len(src.samples) {
		panic(fmt.Sprintf("buffer: CopyFrom length mismatch: dst=%d src=%d", len(b.samples), len(src.samples)))
	}
	copy(b.samples, src.samples)
}

// Accumulate adds src's samples into dst element-wise (dst += src).
// Requires equal length.
func Accumulate(dst, src *Buffer) {
	if len(dst.samples) != len(src.samples) {
		panic(fmt.Sprintf("buffer: Accumulate length mismatch: dst=%d src=%d", len(dst.samples), len(src.samples)))
	}
	for i, s := range src.samples {
		dst.samples[i] += s
	}
}

// AccumulateScaled adds src*gain into dst element-wise.
func AccumulateScaled(dst, src *Buffer, gain float32) {
	if len(dst.samples) != len(src.samples) {
		panic(fmt.Sprintf("buffer: AccumulateScaled length mismatch: dst=%d src=%d", len(dst.samples), len(src.samples)))
	}
	for i, s := range src.samples {
		dst.samples[i] += s * gain
	}
}
