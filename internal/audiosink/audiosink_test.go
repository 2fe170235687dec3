package audiosink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cubedaw/engine/internal/buffer"
	"github.com/stretchr/testify/assert"
)

func TestNullDiscardsFrames(t *testing.T) {
	var n Null
	buf := buffer.Zeroed(buffer.BlockSize)
	assert.NoError(t, n.WriteFrame(buf))
	assert.NoError(t, n.Close())
}

func TestWAVFileWritesFramesAndProducesNonEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	sink, err := NewWAVFile(path, 48000)
	if err != nil {
		t.Fatalf("NewWAVFile: %v", err)
	}

	buf := buffer.Zeroed(buffer.BlockSize)
	samples := buf.Samples()
	for i := range samples {
		samples[i] = 0.5
	}

	for i := 0; i < 4; i++ {
		if err := sink.WriteFrame(buf); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected a non-empty WAV file")
	}
}

func TestFloatToPCM16Clamps(t *testing.T) {
	assert.Equal(t, 32767, floatToPCM16(2.0))
	assert.Equal(t, -32767, floatToPCM16(-2.0))
	assert.Equal(t, 0, floatToPCM16(0))
}
