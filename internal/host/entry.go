package host

import (
	"fmt"

	"github.com/cubedaw/engine/internal/execgraph"
	"github.com/cubedaw/engine/internal/patch"
	"github.com/cubedaw/engine/internal/project"
	"github.com/cubedaw/engine/internal/registry"
)

// trackEntry is WorkerHostState's cached per-track state: the
// track-level executor (nil if the patch carries no output node) and,
// for section tracks, one private executor per note currently being
// synthesised.
//
// notes and liveNotes are deliberately separate collections (mirroring
// the original_source cubedaw-worker host state's WorkerSectionTrackState
// split between `notes` and `live_notes`): notes are derived from a
// clip's placed note positions and come and go as the playhead crosses
// them, while liveNotes are registered directly by a caller (e.g. a
// MIDI keyboard or on-screen piano preview) via TriggerLiveNote and
// exist independent of any clip.
type trackEntry struct {
	wiring  wiring
	graph   *execgraph.Graph // nil if the patch has no builtin:output node
	bufSize int

	notes     map[project.NoteID]*noteEntry
	liveNotes map[project.NoteID]*noteEntry
}

// noteEntry is one note's private per-note graph plus the attribute
// values last fed into it, kept so a note already playing when its
// clip range slides out of the current frame (a sustained tail) can
// still be re-scheduled with its original pitch/velocity.
type noteEntry struct {
	graph      *execgraph.Graph
	inputNode  patch.NodeID
	outputNode patch.NodeID
	pitch      float32
	velocity   float32
}

func newTrackEntry(p *patch.Patch, reg *registry.Registry, bufSize int) (*trackEntry, error) {
	te := &trackEntry{
		bufSize:   bufSize,
		notes:     make(map[project.NoteID]*noteEntry),
		liveNotes: make(map[project.NoteID]*noteEntry),
	}
	if err := te.resync(p, reg); err != nil {
		return nil, err
	}
	return te, nil
}

// resync rebuilds the track-level graph's topology against p's current
// wiring, per §4.H step 1. Reuses the existing *execgraph.Graph (which
// itself reuses mutable node state by id) rather than discarding it.
func (te *trackEntry) resync(p *patch.Patch, reg *registry.Registry) error {
	w := deriveWiring(p)
	te.wiring = w
	if !w.hasOutput {
		te.graph = nil
		return nil
	}
	if te.graph == nil {
		te.graph = execgraph.New(te.bufSize)
	}
	if err := te.graph.SyncWith(p, reg, w.trackGraphInput(), w.output); err != nil {
		return fmt.Errorf("host: track executor sync: %w", err)
	}
	return nil
}

// ensureNote returns nid's private graph, creating and syncing it on
// first sight. ok is false if the patch isn't wired for note synthesis
// (no note-output/downmix pair) — the caller should skip scheduling
// this note entirely.
func (te *trackEntry) ensureNote(nid project.NoteID, p *patch.Patch, reg *registry.Registry, pitch, velocity float32) (*noteEntry, bool, error) {
	return te.ensureNoteIn(te.notes, nid, p, reg, pitch, velocity)
}

// ensureLiveNote is ensureNote's counterpart for the liveNotes
// collection, used by TriggerLiveNote.
func (te *trackEntry) ensureLiveNote(nid project.NoteID, p *patch.Patch, reg *registry.Registry, pitch, velocity float32) (*noteEntry, bool, error) {
	return te.ensureNoteIn(te.liveNotes, nid, p, reg, pitch, velocity)
}

func (te *trackEntry) ensureNoteIn(notes map[project.NoteID]*noteEntry, nid project.NoteID, p *patch.Patch, reg *registry.Registry, pitch, velocity float32) (*noteEntry, bool, error) {
	in, out, ok := te.wiring.noteGraphBoundary()
	if !ok {
		return nil, false, nil
	}
	if ne, ok := notes[nid]; ok {
		ne.pitch, ne.velocity = pitch, velocity
		return ne, true, nil
	}
	g := execgraph.New(te.bufSize)
	if err := g.SyncWith(p, reg, &in, out); err != nil {
		return nil, false, fmt.Errorf("host: note executor sync: %w", err)
	}
	ne := &noteEntry{graph: g, inputNode: in, outputNode: out, pitch: pitch, velocity: velocity}
	notes[nid] = ne
	return ne, true, nil
}

// pruneNotes drops any cached note entry whose note id is no longer
// present in the track's clips (deleted by a command), per §4.H step 1.
// liveNotes is untouched: it isn't derived from clips, so nothing here
// can ever make a live note stale.
func (te *trackEntry) pruneNotes(existing map[project.NoteID]bool) {
	for nid := range te.notes {
		if !existing[nid] {
			delete(te.notes, nid)
		}
	}
}
