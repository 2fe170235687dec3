package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cubedaw/engine/internal/audiosink"
	"github.com/cubedaw/engine/internal/buffer"
	"github.com/cubedaw/engine/internal/config"
	"github.com/cubedaw/engine/internal/host"
	"github.com/cubedaw/engine/internal/miditransport"
	"github.com/cubedaw/engine/internal/registry"
	"github.com/cubedaw/engine/internal/telemetry"
	"github.com/cubedaw/engine/internal/units"
	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	var (
		outPath string
		frames  int
		bpm     float64
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Render the built-in demo project for a fixed number of frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigOrDefault()
			if err != nil {
				return err
			}
			return runEngine(cfg, outPath, frames, bpm)
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "write rendered audio to this WAV file (discarded if unset)")
	cmd.Flags().IntVar(&frames, "frames", 200, "number of audio frames to render")
	cmd.Flags().Float64Var(&bpm, "bpm", 120, "tempo of the demo project")
	return cmd
}

func loadConfigOrDefault() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func runEngine(cfg config.Config, outPath string, frames int, bpm float64) error {
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

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		log.Printf("cubedawd: received interrupt, stopping")
		cancel()
	}()

	var sink audiosink.Sink = audiosink.Null{}
	if outPath != "" {
		wf, err := audiosink.NewWAVFile(outPath, cfg.SampleRate)
		if err != nil {
			return fmt.Errorf("cubedawd: %w", err)
		}
		defer wf.Close()
		sink = wf
	}

	reporter, err := telemetry.NewReporter(cfg.TelemetryOSCAddr)
	if err != nil {
		return fmt.Errorf("cubedawd: telemetry: %w", err)
	}

	clock, err := miditransport.New(cfg.MIDIClockDevice)
	if err != nil {
		return fmt.Errorf("cubedawd: midi clock: %w", err)
	}
	defer clock.Close()
	clock.Start()
	defer clock.Stop()

	state := demoState(bpm, units.UnitsPerBeat)
	out := buffer.Zeroed(cfg.BufferSize)

	var pos units.SongTime
	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			log.Printf("cubedawd: stopped after %d/%d frames", i, frames)
			return nil
		default:
		}

		start := time.Now()
		next, err := h.Process(ctx, state, nil, pos, out)
		if err != nil {
			return fmt.Errorf("cubedawd: frame %d: %w", i, err)
		}
		idle := time.Since(start)

		if err := sink.WriteFrame(out); err != nil {
			return fmt.Errorf("cubedawd: frame %d: %w", i, err)
		}
		reporter.ReportFrame(int64(i), idle.Microseconds(), 0)
		clock.Tick(next-pos, state.BPM)

		pos = next
	}
	log.Printf("cubedawd: rendered %d frames", frames)
	return nil
}
