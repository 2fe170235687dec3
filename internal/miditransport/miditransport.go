// Package miditransport broadcasts MIDI System Realtime clock/transport
// messages (clock tick, start, continue, stop) to an external MIDI
// device driven by BPM, letting outboard hardware stay in sync with the
// engine's own playback position. Output-only: it never reads MIDI
// input, so it does not reintroduce the "MIDI input routing" non-goal.
//
// Grounded on the teacher's internal/midiconnector (device lookup by
// fuzzy name match, a package-level open-device table guarded by a
// mutex, raw three-byte Send calls logged rather than propagated) and
// internal/midiplayer (device open/close lifecycle), repurposed from
// note-on/note-off dispatch to clock/transport bytes.
package miditransport

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cubedaw/engine/internal/units"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// clockPPQN is the MIDI clock resolution: 24 clock messages per quarter
// note, fixed by the MIDI spec.
const clockPPQN = 24

// System Realtime status bytes (MIDI spec §4, no data bytes follow).
const (
	statusClock    byte = 0xF8
	statusStart    byte = 0xFA
	statusContinue byte = 0xFB
	statusStop     byte = 0xFC
)

// Devices lists every MIDI output port name visible to the system.
func Devices() []string {
	var out []string
	for _, p := range midi.GetOutPorts() {
		out = append(out, p.String())
	}
	return out
}

func findPort(name string) (drivers.Out, error) {
	names := Devices()
	lower := strings.ToLower(name)
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return midi.FindOutPort(n)
		}
	}
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), lower) {
			return midi.FindOutPort(n)
		}
	}
	return nil, fmt.Errorf("miditransport: no output port matching %q", name)
}

// Clock drives one external MIDI output with transport-sync messages.
// A Clock is safe for concurrent Tick/Start/Stop/Continue calls
// from a single host Process loop; it holds its own mutex since the
// underlying drivers.Out is not guaranteed goroutine-safe.
type Clock struct {
	mu      sync.Mutex
	out     drivers.Out
	name    string
	pending float64 // fractional clock ticks carried across frames
	started bool
}

// New opens the named MIDI output device. An empty name disables the
// transport entirely: (nil, nil) is returned, matching internal/config's
// "absence disables the feature" convention.
func New(name string) (*Clock, error) {
	if name == "" {
		return nil, nil
	}
	out, err := findPort(name)
	if err != nil {
		return nil, err
	}
	if err := out.Open(); err != nil {
		return nil, fmt.Errorf("miditransport: open %q: %w", name, err)
	}
	return &Clock{out: out, name: name}, nil
}

// Close releases the underlying device. Safe to call on a nil *Clock.
func (c *Clock) Close() error {
	if c == nil || c.out == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.Close()
}

func (c *Clock) send(status byte) {
	if c == nil || c.out == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.out.Send([]byte{status}); err != nil {
		log.Printf("miditransport: send error on %q: %v", c.name, err)
	}
}

// Start emits MIDI Start and resets the clock-tick accumulator. Call
// once when playback begins from song position zero.
func (c *Clock) Start() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.started = true
	c.pending = 0
	c.mu.Unlock()
	c.send(statusStart)
}

// Continue emits MIDI Continue, for playback resuming from a nonzero
// position (as opposed to Start's implicit position zero).
func (c *Clock) Continue() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
	c.send(statusContinue)
}

// Stop emits MIDI Stop and halts further Tick output until Start or
// Continue is called again.
func (c *Clock) Stop() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.started = false
	c.mu.Unlock()
	c.send(statusStop)
}

// Tick advances the clock by one audio frame's worth of song time at
// the given BPM, emitting as many MIDI Clock messages as that frame
// spans. Intended to be called once per host.Process call, after
// Start/Continue has been issued and before Stop; a no-op otherwise or
// on a nil *Clock.
func (c *Clock) Tick(frameUnits units.SongTime, bpm float64) {
	if c == nil || bpm <= 0 {
		return
	}
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	ticksPerUnit := float64(clockPPQN) / float64(units.UnitsPerBeat)
	c.pending += float64(frameUnits) * ticksPerUnit
	n := int(c.pending)
	c.pending -= float64(n)
	c.mu.Unlock()

	for i := 0; i < n; i++ {
		c.send(statusClock)
	}
}
