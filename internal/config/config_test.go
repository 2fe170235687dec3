package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFillsDefaultsAndDecodesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.json")
	body := `{"sample_rate": 44100, "buffer_size": 128, "worker_count": 8, "telemetry_osc_addr": "127.0.0.1:9001"}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SampleRate != 44100 || cfg.BufferSize != 128 || cfg.WorkerCount != 8 {
		t.Errorf("unexpected decoded config: %+v", cfg)
	}
	if cfg.TelemetryOSCAddr != "127.0.0.1:9001" {
		t.Errorf("expected telemetry addr to decode, got %q", cfg.TelemetryOSCAddr)
	}
	if cfg.MIDIClockDevice != "" {
		t.Errorf("expected midi_clock_device to stay empty (disabled), got %q", cfg.MIDIClockDevice)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.json")
	if err := os.WriteFile(path, []byte(`{"sample_rate": 0, "buffer_size": 256, "worker_count": 4}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected Load to reject a zero sample_rate")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected Load to fail for a missing file")
	}
}
