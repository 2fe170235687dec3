package host

import (
	"context"
	"math"
	"testing"

	"github.com/cubedaw/engine/internal/buffer"
	"github.com/cubedaw/engine/internal/patch"
	"github.com/cubedaw/engine/internal/plugin"
	"github.com/cubedaw/engine/internal/project"
	"github.com/cubedaw/engine/internal/registry"
	"github.com/cubedaw/engine/internal/units"
)

// sineOscPatch wires note_output -> sine_osc -> downmix -> output: the
// same shape as sectionPatch, but with a real plugin node computing
// signal between note_output and downmix rather than feeding
// note_output straight into downmix.
func sineOscPatch(t *testing.T) *patch.Patch {
	t.Helper()
	p := patch.New()
	noteOut := p.AddNode(registry.BuiltinNoteOutput, nil, 0, 3)
	osc := p.AddNode(plugin.FixtureSineOscResourceKey, nil, 1, 1)
	downmix := p.AddNode(patch.ResourceKeyDownmix, nil, 1, 1)
	output := p.AddNode(patch.ResourceKeyOutput, nil, 1, 0)
	if _, err := p.AddCable(noteOut, 0, osc, 0, 1); err != nil {
		t.Fatalf("AddCable note_output->sine_osc: %v", err)
	}
	if _, err := p.AddCable(osc, 0, downmix, 0, 1); err != nil {
		t.Fatalf("AddCable sine_osc->downmix: %v", err)
	}
	if _, err := p.AddCable(downmix, 0, output, 0, 1); err != nil {
		t.Fatalf("AddCable downmix->output: %v", err)
	}
	if err := p.RecalculateTags(); err != nil {
		t.Fatalf("RecalculateTags: %v", err)
	}
	return p
}

// newSineOscTestHost builds a host whose registry carries the real
// FixtureSineOscModule plugin (compiled through the same Prepare/
// RegisterPlugin path a third-party plugin file would go through),
// sized to scenario 2's §8 buffer_size=256.
func newSineOscTestHost(t *testing.T) *WorkerHostState {
	t.Helper()
	ctx := context.Background()

	reg := registry.New()
	p, err := plugin.Prepare(plugin.FixtureSineOscModule())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	factories := map[string]registry.NodeFactory{
		plugin.FixtureSineOscResourceKey: func([]byte) []byte { return make([]byte, 4) },
	}
	if err := reg.RegisterPlugin(ctx, p, factories, plugin.FixtureSineOscSampleRate); err != nil {
		t.Fatalf("RegisterPlugin: %v", err)
	}
	t.Cleanup(func() { reg.Close(ctx) })

	opts := &registry.WorkerOptions{
		Registry:    reg,
		WorkerCount: 2,
		SampleRate:  plugin.FixtureSineOscSampleRate,
		BufferSize:  256,
	}
	h := New(opts)
	runCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)
	h.Start(runCtx)
	t.Cleanup(h.Close)
	return h
}

// TestProcessSineOscReachesMasterAtMiddleC is §8 scenario 2: a
// sample_rate=48000, buffer_size=256, bpm=120 project with a single
// note routed through a plugin oscillator must produce exactly
// middle C (261.625565 Hz) in the master output for the whole frame,
// since the note starts at song-time zero and the fixture is
// silence-free from its very first sample.
func TestProcessSineOscReachesMasterAtMiddleC(t *testing.T) {
	state := project.New(120)
	root := state.ForceTrack(state.Root)

	section := project.NewSectionTrack()
	section.Patch = sineOscPatch(t)
	sid := mustAddTrack(state, project.TrackID{}, section)
	root.Children.Add(sid)

	clip := project.NewClip(project.NewRange(0, units.UnitsPerBeat*4))
	if _, err := clip.AddNote(0, project.Note{Length: units.UnitsPerBeat, Pitch: 0, Velocity: 1}); err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if _, err := section.AddClip(0, clip); err != nil {
		t.Fatalf("AddClip: %v", err)
	}

	h := newSineOscTestHost(t)

	out := buffer.Zeroed(256)
	_, err := h.Process(context.Background(), state, nil, units.SongTime(0), out)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	samples := out.Samples()
	for n, got := range samples {
		want := float32(math.Sin(2 * math.Pi * plugin.FixtureSineOscFrequency * float64(n) / plugin.FixtureSineOscSampleRate))
		if diff := got - want; diff > 1e-3 || diff < -1e-3 {
			t.Fatalf("sample %d: got %v, want %v (261.625565Hz tone)", n, got, want)
		}
	}
}
