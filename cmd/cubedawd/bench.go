package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cubedaw/engine/internal/audiosink"
	"github.com/cubedaw/engine/internal/buffer"
	"github.com/cubedaw/engine/internal/config"
	"github.com/cubedaw/engine/internal/host"
	"github.com/cubedaw/engine/internal/registry"
	"github.com/cubedaw/engine/internal/units"
	"github.com/spf13/cobra"
)

func newBenchCommand() *cobra.Command {
	var frames int
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure scheduler throughput rendering the demo project to a null sink",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigOrDefault()
			if err != nil {
				return err
			}
			return runBench(cfg, frames)
		},
	}
	cmd.Flags().IntVar(&frames, "frames", 5000, "number of audio frames to render")
	return cmd
}

func runBench(cfg config.Config, frames int) error {
	opts := &registry.WorkerOptions{
		Registry:    registry.New(),
		WorkerCount: cfg.WorkerCount,
		SampleRate:  cfg.SampleRate,
		BufferSize:  cfg.BufferSize,
	}

	h := host.New(opts)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Start(ctx)
	defer h.Close()

	var sink audiosink.Sink = audiosink.Null{}
	state := demoState(120, units.UnitsPerBeat)
	out := buffer.Zeroed(cfg.BufferSize)

	var pos units.SongTime
	start := time.Now()
	for i := 0; i < frames; i++ {
		next, err := h.Process(ctx, state, nil, pos, out)
		if err != nil {
			return fmt.Errorf("cubedawd: frame %d: %w", i, err)
		}
		if err := sink.WriteFrame(out); err != nil {
			return fmt.Errorf("cubedawd: frame %d: %w", i, err)
		}
		pos = next
	}
	elapsed := time.Since(start)

	rendered := time.Duration(frames*cfg.BufferSize) * time.Second / time.Duration(cfg.SampleRate)
	fmt.Printf("rendered %d frames (%s of audio) in %s (%.1fx realtime)\n",
		frames, rendered, elapsed, float64(rendered)/float64(elapsed))
	return nil
}
