// Package host implements WorkerHostState and the per-frame scheduler
// of §4.H: it owns the project State's cached executors, a persistent
// worker pool, and drives one Process call per audio frame, wiring the
// track hierarchy into a SyncBuffer-linked job graph and dispatching it
// to internal/worker.
//
// Grounded on the original_source cubedaw-worker crate's host/scheduler
// glue (the same crate execgraph and worker are grounded on); the
// teacher has no per-frame scheduler of its own (its player drives a
// single linear row cursor, not a worker pool), so the concurrency
// shape follows the original directly while the surrounding plumbing
// (logging, error wrapping) matches the teacher's plain style.
package host

import (
	"context"
	"fmt"

	"github.com/cubedaw/engine/internal/buffer"
	"github.com/cubedaw/engine/internal/project"
	"github.com/cubedaw/engine/internal/registry"
	"github.com/cubedaw/engine/internal/syncbuf"
	"github.com/cubedaw/engine/internal/units"
	"github.com/cubedaw/engine/internal/worker"
)

// jobChannelCapacity bounds the host's job/event channels. Sized
// generously against realistic track/note counts rather than per-frame
// job counts, since a fixed-capacity channel lets the worker pool stay
// alive across frames instead of being re-spun every Process call.
const jobChannelCapacity = 1 << 14

// WorkerHostState is the host of §4.H: cached per-track executors and
// per-note states, plus the persistent worker pool and its two
// channels (job dispatch, host-from-worker events).
type WorkerHostState struct {
	opts *registry.WorkerOptions

	entries map[project.TrackID]*trackEntry

	jobs    chan worker.Job
	events  chan worker.Event
	cancel  context.CancelFunc
	workers []*worker.Worker

	bpm float64 // last State.BPM seen, used for note start-offset math
}

// New constructs a host bound to opts. Call Start before the first
// Process call.
func New(opts *registry.WorkerOptions) *WorkerHostState {
	return &WorkerHostState{
		opts:    opts,
		entries: make(map[project.TrackID]*trackEntry),
	}
}

// Start spins up opts.WorkerCount persistent worker goroutines. The
// returned host remains usable until Close.
func (h *WorkerHostState) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.jobs = make(chan worker.Job, jobChannelCapacity)
	h.events = make(chan worker.Event, jobChannelCapacity)
	h.workers = h.workers[:0]
	for i := 0; i < h.opts.WorkerCount; i++ {
		w := worker.New(i, h.opts)
		h.workers = append(h.workers, w)
		go w.Run(ctx, h.jobs, h.events)
	}
}

// Close stops every worker goroutine. The host must not be used again
// afterward.
func (h *WorkerHostState) Close() {
	if h.cancel != nil {
		h.cancel()
	}
}

// syncWithState implements §4.H step 1: add entries for new tracks,
// drop entries for deleted ones, resync surviving ones' executors, and
// prune note states whose notes were deleted by a command.
func (h *WorkerHostState) syncWithState(state *project.State) error {
	var firstErr error
	state.Each(func(tid project.TrackID, t *project.Track) {
		if firstErr != nil {
			return
		}
		if _, ok := h.entries[tid]; ok {
			return
		}
		entry, err := newTrackEntry(t.Patch, h.opts.Registry, h.opts.BufferSize)
		if err != nil {
			firstErr = fmt.Errorf("host: track %v: %w", tid.Value(), err)
			return
		}
		h.entries[tid] = entry
	})
	if firstErr != nil {
		return firstErr
	}

	for tid := range h.entries {
		if !state.Tracks.Has(tid) {
			delete(h.entries, tid)
		}
	}

	state.Each(func(tid project.TrackID, t *project.Track) {
		if firstErr != nil {
			return
		}
		entry := h.entries[tid]
		if err := entry.resync(t.Patch, h.opts.Registry); err != nil {
			firstErr = fmt.Errorf("host: track %v: %w", tid.Value(), err)
			return
		}
		if t.Variant == project.VariantSection {
			entry.pruneNotes(noteSetOf(t))
		}
	})
	return firstErr
}

// noteSetOf collects every note id currently placed on t, across every
// clip, for pruneNotes to diff a cached note-entry set against.
func noteSetOf(t *project.Track) map[project.NoteID]bool {
	out := make(map[project.NoteID]bool)
	for _, cs := range t.ClipsSorted() {
		clip, ok := t.Clip(cs.ID)
		if !ok {
			continue
		}
		for _, np := range clip.NotePositions() {
			out[np.ID] = true
		}
	}
	return out
}

// finishedNote pairs a note id with the track that scheduled it, for
// retirement at frame end. live says which of the track entry's two
// note collections to retire it from.
type finishedNote struct {
	track project.TrackID
	note  project.NoteID
	live  bool
}

// Process is the frame entry point of §4.H: `process(start_pos?,
// live_pos, out_buffer)`. startPos overrides livePos when non-nil
// (scrubbing/seeking); the returned song-time position is the next
// frame's start_pos (end_pos of this one).
func (h *WorkerHostState) Process(ctx context.Context, state *project.State, startPos *units.SongTime, livePos units.SongTime, out *buffer.Buffer) (units.SongTime, error) {
	if err := h.syncWithState(state); err != nil {
		return 0, err
	}
	h.bpm = state.BPM

	start := livePos
	if startPos != nil {
		start = *startPos
	}
	frameLen := h.opts.BufferSize
	end := start + units.FramesToUnits(frameLen, h.opts.SampleRate, state.BPM)
	frame := project.NewRange(start, end)

	a := newArena(frameLen)

	masterBuf := syncbuf.New[buffer.Buffer, worker.Job](*a.alloc())
	masterWrite := masterBuf.GetWriteHandle()
	masterRead := masterBuf.GetReadHandle()

	var initial []worker.Job
	if err := h.buildTrack(state, state.Root, masterWrite, frame, a, &initial); err != nil {
		return 0, err
	}
	// Exactly one writer (the root's own job) was ever registered
	// against masterBuf, via masterWrite above; this can never resolve
	// ready=true immediately.
	masterBuf.Prime(worker.Job{})

	for _, j := range initial {
		h.jobs <- j
	}

	result := masterRead.Wait()
	out.CopyFrom(result)

	finished, err := h.drainFinalize()
	if err != nil {
		return 0, err
	}
	for _, fn := range finished {
		if entry, ok := h.entries[fn.track]; ok {
			if fn.live {
				delete(entry.liveNotes, fn.note)
			} else {
				delete(entry.notes, fn.note)
			}
		}
	}

	a.reset()
	return end, nil
}

// drainFinalize implements §4.H steps 5/6's Idle bookkeeping. By the
// time this is called, masterRead.Wait() has already guaranteed every
// real job of this frame has completed (§5 Ordering: the master output
// read is sequenced-after every job that transitively contributes), so
// sending Finalize here can never race a still-pending job.
func (h *WorkerHostState) drainFinalize() ([]finishedNote, error) {
	h.jobs <- worker.Job{Kind: worker.KindFinalize, Remaining: h.opts.WorkerCount - 1}

	var finished []finishedNote
	var firstErr error
	for idle := 0; idle < h.opts.WorkerCount; {
		ev := <-h.events
		switch ev.Kind {
		case worker.EventIdle:
			idle++
		case worker.EventFinishJob:
			finished = append(finished, finishedNote{track: ev.Track, note: ev.Note})
		case worker.EventFinishJobLive:
			finished = append(finished, finishedNote{track: ev.Track, note: ev.Note, live: true})
		case worker.EventError:
			if firstErr == nil {
				firstErr = ev.Err
			}
		}
	}
	return finished, firstErr
}

// StopAllProcessing implements §4.H "Cancellation": clears every
// section track's live-note state and resets every executor's mutable
// state to its original snapshot. Subsequent frames produce silence
// until new notes arrive. Must be called between frames, never
// concurrently with Process.
func (h *WorkerHostState) StopAllProcessing() {
	for _, entry := range h.entries {
		entry.notes = make(map[project.NoteID]*noteEntry)
		entry.liveNotes = make(map[project.NoteID]*noteEntry)
		if entry.graph != nil {
			entry.graph.Reset()
		}
	}
}

// TriggerLiveNote registers an externally-triggered note (e.g. a MIDI
// keyboard press or an on-screen piano key) on section track tid,
// independent of any clip. Subsequent Process calls schedule a
// NoteProcess job for it every frame, additive to whatever clip notes
// intersect the frame, until either ReleaseLiveNote is called or the
// note's own executor reports completion (§8 scenario 6). ok is false
// if tid isn't a section track wired for note synthesis, or is not a
// known track at all.
func (h *WorkerHostState) TriggerLiveNote(tid project.TrackID, nid project.NoteID, state *project.State, pitch, velocity float32) (ok bool, err error) {
	entry, ok := h.entries[tid]
	if !ok {
		return false, nil
	}
	track, ok := state.Track(tid)
	if !ok || track.Variant != project.VariantSection {
		return false, nil
	}
	_, ok, err = entry.ensureLiveNote(nid, track.Patch, h.opts.Registry, pitch, velocity)
	return ok, err
}

// ReleaseLiveNote immediately stops a live note registered by
// TriggerLiveNote, dropping it from tid's liveNotes collection without
// waiting for a natural FinishJob. A no-op if tid or nid isn't live.
func (h *WorkerHostState) ReleaseLiveNote(tid project.TrackID, nid project.NoteID) {
	if entry, ok := h.entries[tid]; ok {
		delete(entry.liveNotes, nid)
	}
}
