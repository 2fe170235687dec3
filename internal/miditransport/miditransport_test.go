package miditransport

import (
	"math"
	"testing"

	"github.com/cubedaw/engine/internal/units"
	"github.com/stretchr/testify/assert"
)

func TestNewWithEmptyNameDisablesTransport(t *testing.T) {
	c, err := New("")
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestNilClockMethodsAreNoOps(t *testing.T) {
	var c *Clock
	// None of these may panic or block on a nil *Clock.
	c.Start()
	c.Continue()
	c.Tick(units.UnitsPerBeat, 120)
	c.Stop()
	assert.NoError(t, c.Close())
}

func TestTickAccumulatesFractionalClocksAcrossFrames(t *testing.T) {
	// 24 PPQN at 120 BPM: one quarter note's worth of song-time units
	// (UnitsPerBeat) must produce exactly clockPPQN clock pulses, no
	// matter how it's split across Tick calls, since pending carries the
	// fractional remainder forward.
	c := &Clock{started: true}

	total := 0
	steps := []units.SongTime{units.UnitsPerBeat / 3, units.UnitsPerBeat / 3, units.UnitsPerBeat - 2*(units.UnitsPerBeat/3)}
	ticksPerUnit := float64(clockPPQN) / float64(units.UnitsPerBeat)
	for _, step := range steps {
		before := c.pending
		c.Tick(step, 120)
		// Pulses emitted by this call: what was added to pending, less
		// the fractional remainder Tick carried forward.
		total += int(math.Round(before + float64(step)*ticksPerUnit - c.pending))
	}
	assert.Equal(t, clockPPQN, total)
}

func TestTickIsNoOpWhenNotStarted(t *testing.T) {
	c := &Clock{}
	c.Tick(units.UnitsPerBeat, 120)
	assert.Equal(t, float64(0), c.pending)
}

func TestTickIsNoOpForNonPositiveBPM(t *testing.T) {
	c := &Clock{started: true}
	c.Tick(units.UnitsPerBeat, 0)
	assert.Equal(t, float64(0), c.pending)
}

func TestStartResetsPendingAccumulator(t *testing.T) {
	c := &Clock{pending: 0.75}
	c.Start()
	assert.True(t, c.started)
	assert.Equal(t, float64(0), c.pending)
}

func TestStopClearsStarted(t *testing.T) {
	c := &Clock{started: true}
	c.Stop()
	assert.False(t, c.started)
}
