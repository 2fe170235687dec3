package worker

import (
	"context"
	"log"

	"github.com/cubedaw/engine/internal/buffer"
	"github.com/cubedaw/engine/internal/registry"
)

// Worker owns a scratch buffer pair and the shared worker options,
// per §4.I. It loops on the shared job channel until told to stop.
type Worker struct {
	id       int
	opts     *registry.WorkerOptions
	instance *instanceCache
	scratchA *buffer.Buffer
	scratchB *buffer.Buffer
}

// New constructs a worker with a scratch buffer pair sized to opts's
// configured buffer size.
func New(id int, opts *registry.WorkerOptions) *Worker {
	return &Worker{
		id:       id,
		opts:     opts,
		instance: newInstanceCache(opts),
		scratchA: buffer.Zeroed(opts.BufferSize),
		scratchB: buffer.Zeroed(opts.BufferSize),
	}
}

// Run pulls jobs off jobs until ctx is cancelled, sending one Event to
// events per job it completes (and per Finalize it forwards or
// consumes). Intended to run in its own goroutine for the lifetime of
// the host.
func (w *Worker) Run(ctx context.Context, jobs chan Job, events chan<- Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-jobs:
			w.handle(ctx, job, jobs, events)
		}
	}
}

func (w *Worker) handle(ctx context.Context, job Job, jobs chan Job, events chan<- Event) {
	switch job.Kind {
	case KindFinalize:
		if job.Remaining > 0 {
			jobs <- Job{Kind: KindFinalize, Remaining: job.Remaining - 1}
		}
		events <- Event{Kind: EventIdle}

	case KindNoteProcess:
		finished, err := w.runNoteProcess(ctx, job, jobs)
		if err != nil {
			events <- Event{Kind: EventError, Err: err}
			return
		}
		if finished {
			kind := EventFinishJob
			if job.Live {
				kind = EventFinishJobLive
			}
			events <- Event{Kind: kind, Note: job.NoteID, Track: job.TrackID}
		}

	case KindTrackProcess, KindTrackGroup:
		if err := w.runTrackJob(ctx, job, jobs); err != nil {
			events <- Event{Kind: EventError, Err: err}
		}

	default:
		log.Printf("worker %d: unknown job kind %v", w.id, job.Kind)
	}
}

// runNoteProcess implements §4.I "NoteProcess": feeds the note's
// attributes through its private graph's note-output sentinel, runs
// it, and accumulates the result into the section track's sync
// buffer. The designated output node (conventionally declared with no
// outputs of its own — a pure sink) is read back via its INPUT ports,
// the same way the original worker's TrackOutputNode.end() hands back
// whatever accumulated into it rather than anything it "produces";
// finished mirrors the plugin's self-reported completion via the
// attribute channel, approximated here as every input port having
// gone silent.
func (w *Worker) runNoteProcess(ctx context.Context, job Job, jobs chan Job) (finished bool, err error) {
	if job.InputNodeID != nil {
		if setErr := job.Graph.SetSourceOutputs(*job.InputNodeID, []float32{
			job.Pitch, job.Velocity, float32(job.StartOffsetSamples),
		}); setErr != nil {
			return false, setErr
		}
	}
	if err := job.Graph.Process(ctx, w.opts.Registry, w.instance); err != nil {
		return false, err
	}

	outEntry, ok := job.Graph.EntryFor(job.OutputNodeID)
	if !ok || len(outEntry.Inputs) == 0 {
		next, ready := job.Output.Lock(func(*buffer.Buffer) {})
		if ready {
			jobs <- next
		}
		return true, nil
	}

	silent := true
	next, ready := job.Output.Lock(func(dst *buffer.Buffer) {
		for _, in := range outEntry.Inputs {
			buffer.Accumulate(dst, in.Buffer)
			for _, s := range in.Buffer.Samples() {
				if s != 0 {
					silent = false
				}
			}
		}
	})
	if ready {
		jobs <- next
	}
	return silent, nil
}

// runTrackJob implements §4.I "TrackProcess"/"TrackGroup": wait on the
// input sync buffer, run the track/group executor with it as input,
// accumulate into the parent's sync buffer. Like runNoteProcess, the
// track's designated output node is read back via its INPUT ports,
// since builtin:output is conventionally declared with no outputs.
func (w *Worker) runTrackJob(ctx context.Context, job Job, jobs chan Job) error {
	// A nil Graph means this track carries no output node of its own
	// (an unwired bus): its rendered signal is simply its children's
	// sync-buffer sum, passed straight through.
	if job.Graph == nil {
		var next Job
		var ready bool
		if job.Input != nil {
			in := job.Input.Wait()
			next, ready = job.Output.Lock(func(dst *buffer.Buffer) { buffer.Accumulate(dst, in) })
		} else {
			next, ready = job.Output.Lock(func(*buffer.Buffer) {})
		}
		if ready {
			jobs <- next
		}
		return nil
	}

	if job.Input != nil && job.InputNodeID != nil {
		in := job.Input.Wait()
		if err := job.Graph.FeedInputBuffer(*job.InputNodeID, in); err != nil {
			return err
		}
	}
	if err := job.Graph.Process(ctx, w.opts.Registry, w.instance); err != nil {
		return err
	}
	outEntry, ok := job.Graph.EntryFor(job.OutputNodeID)
	if !ok {
		next, ready := job.Output.Lock(func(*buffer.Buffer) {})
		if ready {
			jobs <- next
		}
		return nil
	}
	next, ready := job.Output.Lock(func(dst *buffer.Buffer) {
		for _, in := range outEntry.Inputs {
			buffer.Accumulate(dst, in.Buffer)
		}
	})
	if ready {
		jobs <- next
	}
	return nil
}

