package host

import (
	"fmt"

	"github.com/cubedaw/engine/internal/buffer"
	"github.com/cubedaw/engine/internal/project"
	"github.com/cubedaw/engine/internal/syncbuf"
	"github.com/cubedaw/engine/internal/units"
	"github.com/cubedaw/engine/internal/worker"
)

// activeNote is one note this frame must schedule a NoteProcess job
// for: either newly intersecting the frame window, or already playing
// from an earlier frame (a tail the host hasn't been told is finished).
type activeNote struct {
	id                 project.NoteID
	pitch, velocity    float32
	startOffsetSamples int32
}

// activeNotesFor computes §4.H step 3's note set for one section
// track: every note in a clip intersecting frame, unioned with every
// note already tracked (and not yet reported finished) in entry.
func activeNotesFor(track *project.Track, entry *trackEntry, frame project.Range, sampleRate int, bpm float64) []activeNote {
	seen := make(map[project.NoteID]bool)
	var out []activeNote
	for _, cs := range track.ClipsIn(frame) {
		clip, ok := track.Clip(cs.ID)
		if !ok {
			continue
		}
		for _, np := range clip.NotesIn(cs.Start, frame) {
			n, ok := clip.Note(np.ID)
			if !ok {
				continue
			}
			absStart := cs.Start + np.Pos
			var offset int32
			if absStart > frame.Start {
				offset = int32(units.UnitsToSamples(absStart-frame.Start, sampleRate, bpm))
			}
			out = append(out, activeNote{
				id:                 np.ID,
				pitch:              float32(n.Pitch),
				velocity:           n.Velocity,
				startOffsetSamples: offset,
			})
			seen[np.ID] = true
		}
	}
	for nid, ne := range entry.notes {
		if seen[nid] {
			continue
		}
		out = append(out, activeNote{id: nid, pitch: ne.pitch, velocity: ne.velocity})
	}
	return out
}

// buildTrack recursively constructs the job (sub)graph rooted at tid,
// per §4.H step 3: a track's own sync buffer is written by its
// children (group tracks) or its active notes (section tracks), and
// read by the track's own TrackProcess/TrackGroup job, whose rendered
// result is accumulated into parentWrite — the write handle the
// caller obtained on ITS OWN sync buffer for this track.
func (h *WorkerHostState) buildTrack(state *project.State, tid project.TrackID, parentWrite worker.WriteHandle, frame project.Range, a *arena, initial *[]worker.Job) error {
	track, ok := state.Track(tid)
	if !ok {
		return fmt.Errorf("host: track %v vanished mid-build", tid.Value())
	}
	entry, ok := h.entries[tid]
	if !ok {
		return fmt.Errorf("host: track %v missing a cached executor entry; syncWithState was not run", tid.Value())
	}

	ownBuf := syncbuf.New[buffer.Buffer, worker.Job](*a.alloc())
	ownRead := ownBuf.GetReadHandle()

	switch track.Variant {
	case project.VariantGroup:
		for _, cid := range track.Children.Slice() {
			wh := ownBuf.GetWriteHandle()
			if err := h.buildTrack(state, cid, wh, frame, a, initial); err != nil {
				return err
			}
		}

	case project.VariantSection:
		for _, an := range activeNotesFor(track, entry, frame, h.opts.SampleRate, h.bpm) {
			ne, ok, err := entry.ensureNote(an.id, track.Patch, h.opts.Registry, an.pitch, an.velocity)
			if err != nil {
				return err
			}
			if !ok {
				continue // track's patch isn't wired for note synthesis
			}
			wh := ownBuf.GetWriteHandle()
			job := worker.Job{
				Kind:               worker.KindNoteProcess,
				TrackID:            tid,
				NoteID:             an.id,
				Graph:              ne.graph,
				InputNodeID:        &ne.inputNode,
				OutputNodeID:       ne.outputNode,
				Pitch:              an.pitch,
				Velocity:           an.velocity,
				StartOffsetSamples: an.startOffsetSamples,
				Output:             &wh,
			}
			// A note job has no upstream dependency of its own: it is
			// always immediately runnable.
			*initial = append(*initial, job)
		}

		// Every live note on this section track, unconditionally: unlike
		// clip notes it has no frame-intersection test, per §4.H step 3
		// ("For each live note on that section track: emit a NoteProcess
		// job... notes are additive").
		for nid, ne := range entry.liveNotes {
			wh := ownBuf.GetWriteHandle()
			job := worker.Job{
				Kind:         worker.KindNoteProcess,
				Live:         true,
				TrackID:      tid,
				NoteID:       nid,
				Graph:        ne.graph,
				InputNodeID:  &ne.inputNode,
				OutputNodeID: ne.outputNode,
				Pitch:        ne.pitch,
				Velocity:     ne.velocity,
				Output:       &wh,
			}
			*initial = append(*initial, job)
		}
	}

	kind := worker.KindTrackProcess
	if track.Variant == project.VariantGroup {
		kind = worker.KindTrackGroup
	}
	trackJob := worker.Job{Kind: kind, TrackID: tid, Graph: entry.graph, Output: &parentWrite}
	if entry.graph != nil {
		trackJob.OutputNodeID = entry.wiring.output
		if in := entry.wiring.trackGraphInput(); in != nil {
			trackJob.InputNodeID = in
			trackJob.Input = &ownRead
		}
	} else {
		// No output node at all: a plain passthrough bus. The worker's
		// nil-Graph path still waits on ownRead and accumulates it
		// straight into parentWrite.
		trackJob.Input = &ownRead
	}

	extra, ready := ownBuf.Prime(trackJob)
	if ready {
		*initial = append(*initial, extra)
	}
	return nil
}
