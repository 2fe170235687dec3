// Package worker implements the worker loop and job kinds of §4.I:
// each worker owns a scratch buffer pair and the shared WorkerOptions,
// and runs NoteProcess/TrackProcess/TrackGroup/Finalize jobs pulled
// off one shared channel.
//
// Grounded on the original_source cubedaw-worker crate's worker loop
// (job_channel.recv / host event emission) and on the teacher's own
// goroutine-per-concern pattern for its SuperCollider OSC listener
// (internal/supercollider), which likewise loops on a channel and
// reports back over a second channel rather than returning values
// synchronously.
package worker

import (
	"github.com/cubedaw/engine/internal/buffer"
	"github.com/cubedaw/engine/internal/execgraph"
	"github.com/cubedaw/engine/internal/patch"
	"github.com/cubedaw/engine/internal/project"
	"github.com/cubedaw/engine/internal/syncbuf"
)

// Kind distinguishes the four job shapes of §4.I.
type Kind int

const (
	KindNoteProcess Kind = iota
	KindTrackProcess
	KindTrackGroup
	KindFinalize
)

func (k Kind) String() string {
	switch k {
	case KindNoteProcess:
		return "NoteProcess"
	case KindTrackProcess:
		return "TrackProcess"
	case KindTrackGroup:
		return "TrackGroup"
	case KindFinalize:
		return "Finalize"
	default:
		return "unknown"
	}
}

// ReadHandle/WriteHandle/Buf instantiate syncbuf.Buffer for the
// engine's concrete (held value, extra payload) pair: an audio buffer
// handed off between jobs, and the next Job to run once it drains.
type (
	Buf         = syncbuf.Buffer[buffer.Buffer, Job]
	ReadHandle  = syncbuf.ReadHandle[buffer.Buffer, Job]
	WriteHandle = syncbuf.WriteHandle[buffer.Buffer, Job]
)

// Job is one unit of work dispatched to a worker. Only the fields
// relevant to Kind are populated; see §4.I per-kind semantics.
type Job struct {
	Kind Kind

	// Live distinguishes a NoteProcess job for a liveNotes entry
	// (externally triggered, not derived from any clip) from one for an
	// ordinary clip-derived note. Meaningless for other Kinds. The host
	// needs this on the way back out too (see EventFinishJobLive) so it
	// retires the completed note from the right per-track collection.
	Live bool

	TrackID project.TrackID
	NoteID  project.NoteID

	// Graph is the executor to run: the note's private graph for
	// NoteProcess, the section/group track's graph otherwise. Nil for
	// Finalize.
	Graph *execgraph.Graph

	// Input is read (after waiting for all its writers) to seed the
	// graph's designated input node before Process, for TrackProcess and
	// TrackGroup. Nil for NoteProcess (fed directly from note attributes)
	// and Finalize.
	Input *ReadHandle

	// Output receives the graph's rendered result via accumulate, under
	// the buffer's own lock, for every kind but Finalize.
	Output *WriteHandle

	// Note attribute inputs for NoteProcess (§4.I), fed into the note
	// graph's note-output sentinel via Graph.SetSourceOutputs.
	Pitch              float32
	Velocity           float32
	StartOffsetSamples int32

	// InputNodeID/OutputNodeID name the graph's designated boundary
	// nodes so the worker knows where to feed the section/group input
	// buffer and which node's output to read back.
	InputNodeID  *patch.NodeID
	OutputNodeID patch.NodeID

	// Remaining is only meaningful for KindFinalize: the number of
	// peers still owed a Finalize message, per §4.I's re-emission
	// scheme (see worker.go).
	Remaining int
}

// EventKind distinguishes the host event channel's three message
// shapes, per §4.H step 6.
type EventKind int

const (
	EventIdle EventKind = iota
	EventFinishJob
	// EventFinishJobLive is EventFinishJob's counterpart for a liveNotes
	// entry (§8 scenario 6): a live note whose executor reports
	// completion is reclaimed from live_notes, never from the ordinary
	// clip-derived notes collection.
	EventFinishJobLive
	EventError
)

// Event is one message a worker sends back to the host.
type Event struct {
	Kind  EventKind
	Note  project.NoteID // meaningful for EventFinishJob
	Track project.TrackID
	Err   error // meaningful for EventError
}
