// Package config loads the engine's JSON configuration document (§6):
// sample rate, buffer size, worker count, and the optional ambient
// telemetry/MIDI-clock endpoints.
//
// Grounded on the teacher's internal/storage, which decodes/encodes
// project state through a single package-level
// jsoniter.ConfigCompatibleWithStandardLibrary codec rather than
// encoding/json directly; config repurposes that same codec for a
// small static document instead of a save-file bundle.
package config

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config is the engine configuration document of §6. Absence of
// TelemetryOSCAddr/MIDIClockDevice disables those ambient features;
// the core engine never requires them.
type Config struct {
	SampleRate       int    `json:"sample_rate"`
	BufferSize       int    `json:"buffer_size"`
	WorkerCount      int    `json:"worker_count"`
	TelemetryOSCAddr string `json:"telemetry_osc_addr,omitempty"`
	MIDIClockDevice  string `json:"midi_clock_device,omitempty"`
}

// Default returns a Config usable without a config file: a modest
// worker count, a 48 kHz sample rate, and every ambient feature
// disabled.
func Default() Config {
	return Config{
		SampleRate:  48000,
		BufferSize:  256,
		WorkerCount: 4,
	}
}

// Load reads and decodes the JSON document at path. Missing optional
// fields are left at their zero value (ambient features disabled).
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants cmd/cubedawd and internal/host rely
// on before starting a worker pool.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("config: sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("config: buffer_size must be positive, got %d", c.BufferSize)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("config: worker_count must be positive, got %d", c.WorkerCount)
	}
	return nil
}
