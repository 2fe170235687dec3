package host

import (
	"context"
	"testing"

	"github.com/cubedaw/engine/internal/buffer"
	"github.com/cubedaw/engine/internal/id"
	"github.com/cubedaw/engine/internal/patch"
	"github.com/cubedaw/engine/internal/project"
	"github.com/cubedaw/engine/internal/registry"
	"github.com/cubedaw/engine/internal/units"
)

// sectionPatch wires a minimal note_output -> downmix -> output chain,
// the smallest patch that both schedules a NoteProcess job and feeds
// its track-level graph, and recalculates tags the way the command
// layer does after every cable edit.
func sectionPatch(t *testing.T) *patch.Patch {
	t.Helper()
	p := patch.New()
	noteOut := p.AddNode(registry.BuiltinNoteOutput, nil, 0, 3)
	downmix := p.AddNode(patch.ResourceKeyDownmix, nil, 1, 1)
	output := p.AddNode(patch.ResourceKeyOutput, nil, 1, 0)
	if _, err := p.AddCable(noteOut, 0, downmix, 0, 1); err != nil {
		t.Fatalf("AddCable note_output->downmix: %v", err)
	}
	if _, err := p.AddCable(downmix, 0, output, 0, 1); err != nil {
		t.Fatalf("AddCable downmix->output: %v", err)
	}
	if err := p.RecalculateTags(); err != nil {
		t.Fatalf("RecalculateTags: %v", err)
	}
	return p
}

// sectionPatchVelocityGated is sectionPatch's sibling, wired to forward
// note-output's velocity port (rather than pitch) into downmix: a note
// triggered with velocity 0 is silent from its very first frame, which
// TestTriggerLiveNoteReclaimedOnCompletion uses to force a live note's
// NoteProcess job to report completion deterministically, without
// needing a real plugin's envelope/attribute logic.
func sectionPatchVelocityGated(t *testing.T) *patch.Patch {
	t.Helper()
	p := patch.New()
	noteOut := p.AddNode(registry.BuiltinNoteOutput, nil, 0, 3)
	downmix := p.AddNode(patch.ResourceKeyDownmix, nil, 1, 1)
	output := p.AddNode(patch.ResourceKeyOutput, nil, 1, 0)
	if _, err := p.AddCable(noteOut, 1, downmix, 0, 1); err != nil {
		t.Fatalf("AddCable note_output.velocity->downmix: %v", err)
	}
	if _, err := p.AddCable(downmix, 0, output, 0, 1); err != nil {
		t.Fatalf("AddCable downmix->output: %v", err)
	}
	if err := p.RecalculateTags(); err != nil {
		t.Fatalf("RecalculateTags: %v", err)
	}
	return p
}

func newTestHost(t *testing.T, workers int) *WorkerHostState {
	t.Helper()
	opts := &registry.WorkerOptions{
		Registry:    registry.New(),
		WorkerCount: workers,
		SampleRate:  48000,
		BufferSize:  buffer.BlockSize,
	}
	h := New(opts)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h.Start(ctx)
	t.Cleanup(h.Close)
	return h
}

func TestProcessSingleNoteReachesMaster(t *testing.T) {
	state := project.New(120)
	root := state.ForceTrack(state.Root)

	section := project.NewSectionTrack()
	section.Patch = sectionPatch(t)
	sid := project.TrackID{}
	sid = mustAddTrack(state, sid, section)
	root.Children.Add(sid)

	clip := project.NewClip(project.NewRange(0, units.UnitsPerBeat*4))
	if _, err := clip.AddNote(0, project.Note{Length: units.UnitsPerBeat, Pitch: 69, Velocity: 1}); err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if _, err := section.AddClip(0, clip); err != nil {
		t.Fatalf("AddClip: %v", err)
	}

	h := newTestHost(t, 2)

	out := buffer.Zeroed(buffer.BlockSize)
	live := units.SongTime(0)
	next, err := h.Process(context.Background(), state, nil, live, out)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if next <= live {
		t.Errorf("expected Process to advance song time, got %v -> %v", live, next)
	}
	if out.Len() != buffer.BlockSize {
		t.Fatalf("expected output buffer of length %d, got %d", buffer.BlockSize, out.Len())
	}

	entry, ok := h.entries[sid]
	if !ok {
		t.Fatal("expected a cached track entry for the section track")
	}
	if _, ok := entry.notes[noteIDOf(t, section)]; !ok {
		t.Error("expected the playing note's state to still be tracked after one frame")
	}
}

func TestProcessPassthroughBusWithNoOutputNode(t *testing.T) {
	state := project.New(120)
	root := state.ForceTrack(state.Root)

	// A bus track whose patch carries no builtin:output node at all:
	// it gets no track-level graph, and the worker's passthrough path
	// accumulates its children's summed audio straight into the
	// parent's buffer.
	bus := project.NewGroupTrack()
	busID := mustAddTrack(state, project.TrackID{}, bus)
	root.Children.Add(busID)

	section := project.NewSectionTrack()
	section.Patch = sectionPatch(t)
	sid := mustAddTrack(state, project.TrackID{}, section)
	bus.Children.Add(sid)

	clip := project.NewClip(project.NewRange(0, units.UnitsPerBeat*4))
	if _, err := clip.AddNote(0, project.Note{Length: units.UnitsPerBeat, Pitch: 69, Velocity: 1}); err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if _, err := section.AddClip(0, clip); err != nil {
		t.Fatalf("AddClip: %v", err)
	}

	h := newTestHost(t, 2)

	out := buffer.Zeroed(buffer.BlockSize)
	if _, err := h.Process(context.Background(), state, nil, 0, out); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Len() != buffer.BlockSize {
		t.Fatalf("expected output buffer of length %d, got %d", buffer.BlockSize, out.Len())
	}
}

func TestProcessDropsPrunedNotes(t *testing.T) {
	state := project.New(120)
	root := state.ForceTrack(state.Root)

	section := project.NewSectionTrack()
	section.Patch = sectionPatch(t)
	sid := mustAddTrack(state, project.TrackID{}, section)
	root.Children.Add(sid)

	clip := project.NewClip(project.NewRange(0, units.UnitsPerBeat*4))
	nid, err := clip.AddNote(0, project.Note{Length: units.UnitsPerBeat, Pitch: 69, Velocity: 1})
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if _, err := section.AddClip(0, clip); err != nil {
		t.Fatalf("AddClip: %v", err)
	}

	h := newTestHost(t, 2)
	out := buffer.Zeroed(buffer.BlockSize)
	if _, err := h.Process(context.Background(), state, nil, 0, out); err != nil {
		t.Fatalf("Process 1: %v", err)
	}
	entry := h.entries[sid]
	if _, ok := entry.notes[nid]; !ok {
		t.Fatal("expected note state cached after first frame")
	}

	if _, _, ok := clip.RemoveNoteAt(0); !ok {
		t.Fatal("expected RemoveNoteAt to find the note")
	}

	if _, err := h.Process(context.Background(), state, nil, units.UnitsPerBeat*10, out); err != nil {
		t.Fatalf("Process 2: %v", err)
	}
	if _, ok := entry.notes[nid]; ok {
		t.Error("expected the deleted note's cached state to be pruned")
	}
}

func TestStopAllProcessingClearsNotes(t *testing.T) {
	state := project.New(120)
	root := state.ForceTrack(state.Root)

	section := project.NewSectionTrack()
	section.Patch = sectionPatch(t)
	sid := mustAddTrack(state, project.TrackID{}, section)
	root.Children.Add(sid)

	clip := project.NewClip(project.NewRange(0, units.UnitsPerBeat*4))
	if _, err := clip.AddNote(0, project.Note{Length: units.UnitsPerBeat, Pitch: 69, Velocity: 1}); err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if _, err := section.AddClip(0, clip); err != nil {
		t.Fatalf("AddClip: %v", err)
	}

	h := newTestHost(t, 2)
	out := buffer.Zeroed(buffer.BlockSize)
	if _, err := h.Process(context.Background(), state, nil, 0, out); err != nil {
		t.Fatalf("Process: %v", err)
	}

	h.StopAllProcessing()

	entry := h.entries[sid]
	if len(entry.notes) != 0 {
		t.Errorf("expected StopAllProcessing to clear cached notes, got %d remaining", len(entry.notes))
	}
}

// TestTriggerLiveNoteReclaimedOnCompletion exercises spec §8 scenario 6:
// a live note whose executor reports completion triggers a FinishJob
// distinct from ordinary clip-note completion, the host removes it
// from liveNotes before the next frame, and the still-playing clip
// note (tracked separately) is untouched.
func TestTriggerLiveNoteReclaimedOnCompletion(t *testing.T) {
	state := project.New(120)
	root := state.ForceTrack(state.Root)

	section := project.NewSectionTrack()
	section.Patch = sectionPatchVelocityGated(t)
	sid := mustAddTrack(state, project.TrackID{}, section)
	root.Children.Add(sid)

	clip := project.NewClip(project.NewRange(0, units.UnitsPerBeat*4))
	nid, err := clip.AddNote(0, project.Note{Length: units.UnitsPerBeat, Pitch: 69, Velocity: 1})
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if _, err := section.AddClip(0, clip); err != nil {
		t.Fatalf("AddClip: %v", err)
	}

	h := newTestHost(t, 2)
	out := buffer.Zeroed(buffer.BlockSize)

	// First frame: builds the cached track entry (syncWithState) and
	// starts the sustaining clip note (velocity 1, never silent).
	if _, err := h.Process(context.Background(), state, nil, 0, out); err != nil {
		t.Fatalf("Process 1: %v", err)
	}

	liveID := id.Arbitrary[project.NoteKind]()
	ok, err := h.TriggerLiveNote(sid, liveID, state, 69, 0)
	if err != nil {
		t.Fatalf("TriggerLiveNote: %v", err)
	}
	if !ok {
		t.Fatal("expected TriggerLiveNote to succeed against a note-synthesis-wired section track")
	}

	entry, ok := h.entries[sid]
	if !ok {
		t.Fatal("expected a cached track entry for the section track")
	}
	if _, ok := entry.liveNotes[liveID]; !ok {
		t.Fatal("expected the live note to be registered immediately")
	}

	// Second frame: the live note's velocity-gated graph is silent from
	// the start, so its NoteProcess job reports finished=true and the
	// host retires it via EventFinishJobLive.
	if _, err := h.Process(context.Background(), state, nil, units.UnitsPerBeat, out); err != nil {
		t.Fatalf("Process 2: %v", err)
	}

	if _, ok := entry.liveNotes[liveID]; ok {
		t.Error("expected FinishJob{Live} to retire the live note once its gated output went silent")
	}
	if _, ok := entry.notes[nid]; !ok {
		t.Error("expected the ordinary clip note to remain tracked, untouched by the live note's completion")
	}

	// Third frame: no NoteProcess job is scheduled for liveID anymore,
	// i.e. subsequent frames produce no audio contribution from it.
	if _, err := h.Process(context.Background(), state, nil, units.UnitsPerBeat*2, out); err != nil {
		t.Fatalf("Process 3: %v", err)
	}
	if _, ok := entry.liveNotes[liveID]; ok {
		t.Error("expected the live note to stay retired across subsequent frames")
	}
}

// mustAddTrack registers tr under a freshly minted id and returns it.
func mustAddTrack(state *project.State, _ project.TrackID, tr *project.Track) project.TrackID {
	tid := id.Arbitrary[project.TrackKind]()
	state.Tracks.Set(tid, tr)
	return tid
}

// noteIDOf looks up the single note placed on section's only clip, for
// assertions that need the id without threading it through every call
// site above.
func noteIDOf(t *testing.T, section *project.Track) project.NoteID {
	t.Helper()
	for _, cs := range section.ClipsSorted() {
		clip, ok := section.Clip(cs.ID)
		if !ok {
			continue
		}
		for _, np := range clip.NotePositions() {
			return np.ID
		}
	}
	t.Fatal("expected a note on the section track")
	return project.NoteID{}
}
