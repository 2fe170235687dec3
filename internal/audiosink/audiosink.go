// Package audiosink implements the device-I/O collaborator of §6: a
// blocking per-frame sample sink that cmd/cubedawd drains host.Process
// output into. The engine itself never imports a realtime audio
// backend (none appears anywhere in the example corpus), so the only
// concrete sink is a WAV file writer; Null discards frames for
// benchmarking without an output file.
//
// Grounded on the teacher's internal/getbpm, the corpus's only user of
// github.com/go-audio/wav, which decodes WAV files to analyze BPM;
// audiosink repurposes the same library's encoder side to write the
// engine's own float32 output instead.
package audiosink

import (
	"fmt"
	"io"
	"os"

	"github.com/cubedaw/engine/internal/buffer"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Sink accepts one frame's worth of interleaved samples at a time.
// Implementations must tolerate being called once per audio frame from
// a single goroutine (the caller that drives host.Process).
type Sink interface {
	WriteFrame(buf *buffer.Buffer) error
	Close() error
}

// Null discards every frame. Used by `cubedawd bench` (§4.F.v-adjacent
// tooling) to measure scheduler throughput without file I/O.
type Null struct{}

func (Null) WriteFrame(*buffer.Buffer) error { return nil }
func (Null) Close() error                    { return nil }

// WAVFile writes mono float32 frames to a WAV file as they arrive.
// Samples are clamped to [-1, 1] and converted to 16-bit PCM.
type WAVFile struct {
	f   io.WriteCloser
	enc *wav.Encoder
}

// NewWAVFile creates (or truncates) path and prepares it to receive
// mono PCM frames at sampleRate.
func NewWAVFile(path string, sampleRate int) (*WAVFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("audiosink: create %s: %w", path, err)
	}
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	return &WAVFile{f: f, enc: enc}, nil
}

// WriteFrame encodes one frame of samples as 16-bit PCM and appends it
// to the file.
func (w *WAVFile) WriteFrame(buf *buffer.Buffer) error {
	samples := buf.Samples()
	ints := make([]int, len(samples))
	for i, s := range samples {
		ints[i] = floatToPCM16(s)
	}
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: w.enc.SampleRate},
		Data:           ints,
		SourceBitDepth: 16,
	}
	if err := w.enc.Write(ib); err != nil {
		return fmt.Errorf("audiosink: write frame: %w", err)
	}
	return nil
}

// Close flushes the WAV header and closes the underlying file.
func (w *WAVFile) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("audiosink: close encoder: %w", err)
	}
	return w.f.Close()
}

func floatToPCM16(s float32) int {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return int(s * 32767)
}
