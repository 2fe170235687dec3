package worker

import (
	"context"
	"testing"
	"time"

	"github.com/cubedaw/engine/internal/buffer"
	"github.com/cubedaw/engine/internal/execgraph"
	"github.com/cubedaw/engine/internal/patch"
	"github.com/cubedaw/engine/internal/registry"
	"github.com/cubedaw/engine/internal/syncbuf"
)

func TestFinalizePropagatesToEveryWorker(t *testing.T) {
	const n = 3
	opts := &registry.WorkerOptions{Registry: registry.New(), WorkerCount: n, SampleRate: 48000, BufferSize: buffer.BlockSize}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobs := make(chan Job, n*2)
	events := make(chan Event, n*2)

	for i := 0; i < n; i++ {
		w := New(i, opts)
		go w.Run(ctx, jobs, events)
	}

	jobs <- Job{Kind: KindFinalize, Remaining: n - 1}

	received := 0
	deadline := time.After(2 * time.Second)
	for received < n {
		select {
		case ev := <-events:
			if ev.Kind != EventIdle {
				t.Fatalf("expected Idle events, got %v", ev.Kind)
			}
			received++
		case <-deadline:
			t.Fatalf("timed out waiting for %d Idle events, got %d", n, received)
		}
	}
}

func TestNoteProcessAccumulatesIntoOutput(t *testing.T) {
	p := patch.New()
	noteOut := p.AddNode(registry.BuiltinNoteOutput, nil, 0, 3)
	out := p.AddNode(patch.ResourceKeyOutput, nil, 1, 0)
	if _, err := p.AddCable(noteOut, 0, out, 0, 1); err != nil {
		t.Fatalf("AddCable: %v", err)
	}

	reg := registry.New()
	g := execgraph.New(buffer.BlockSize)
	if err := g.SyncWith(p, reg, &noteOut, out); err != nil {
		t.Fatalf("SyncWith: %v", err)
	}

	opts := &registry.WorkerOptions{Registry: reg, WorkerCount: 1, SampleRate: 48000, BufferSize: buffer.BlockSize}
	w := New(0, opts)

	sb := syncbuf.New[buffer.Buffer, Job](*buffer.Zeroed(buffer.BlockSize))
	wh := sb.GetWriteHandle()
	rh := sb.GetReadHandle()
	sb.Prime(Job{})

	job := Job{
		Kind:         KindNoteProcess,
		Graph:        g,
		InputNodeID:  &noteOut,
		OutputNodeID: out,
		Pitch:        440,
		Velocity:     1,
		Output:       &wh,
	}

	jobs := make(chan Job, 1)
	if _, err := w.runNoteProcess(context.Background(), job, jobs); err != nil {
		t.Fatalf("runNoteProcess: %v", err)
	}
	result := rh.Wait()
	if result.Len() != buffer.BlockSize {
		t.Errorf("expected result buffer of length %d, got %d", buffer.BlockSize, result.Len())
	}
}
