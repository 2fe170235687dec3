package registry

import "testing"

func TestNewPreRegistersBuiltins(t *testing.T) {
	r := New()
	for _, key := range builtinKeys {
		entry, ok := r.Get(key)
		if !ok {
			t.Fatalf("expected builtin %q to be registered", key)
		}
		if entry.Plugin != nil {
			t.Errorf("builtin %q should have no plugin data", key)
		}
		if got := entry.Factory(nil); got != nil {
			t.Errorf("builtin %q factory should return nil state, got %v", key, got)
		}
	}
}

func TestGetUnknownKey(t *testing.T) {
	r := New()
	if _, ok := r.Get("nonexistent:key"); ok {
		t.Fatal("expected unknown key to be absent")
	}
}

func TestWorkerOptionsNewInstanceBuiltinReturnsNil(t *testing.T) {
	r := New()
	opts := &WorkerOptions{Registry: r, WorkerCount: 1, SampleRate: 48000, BufferSize: 16}
	inst, err := opts.NewInstance(nil, BuiltinInput)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	if inst != nil {
		t.Errorf("expected nil instance for builtin node, got %v", inst)
	}
}

func TestWorkerOptionsNewInstanceUnknownKey(t *testing.T) {
	r := New()
	opts := &WorkerOptions{Registry: r, WorkerCount: 1, SampleRate: 48000, BufferSize: 16}
	if _, err := opts.NewInstance(nil, "nonexistent:key"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}
