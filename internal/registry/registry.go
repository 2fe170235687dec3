// Package registry implements the NodeRegistry and WorkerOptions of
// §4.K: a read-only-during-processing map from resource key to node
// factory and (for plugin-backed nodes) the compiled plugin behind it.
//
// Grounded on the original_source cubedaw-worker/src/registry.rs
// NodeRegistry/DynNodeFactory/PluginData; the teacher has nothing
// comparable (synth voices are dispatched by a fixed switch over
// "instrument" strings, not a registry), so the Go shape follows the
// original's responsibilities directly while trading the Rust
// Arc<Mutex<...>> sharing discipline for a Go RWMutex-guarded map,
// matching how the teacher guards its own shared model state.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/cubedaw/engine/internal/plugin"
)

// Builtin resource keys pre-registered with an empty state blob, per
// spec.md §4.K and §4.B's special-node classification.
const (
	BuiltinTrackInput  = "builtin:track_input"
	BuiltinTrackOutput = "builtin:track_output"
	BuiltinNoteOutput  = "builtin:note_output"
	BuiltinInput       = "builtin:input"
	BuiltinOutput      = "builtin:output"
	BuiltinDownmix     = "builtin:downmix"
)

var builtinKeys = []string{
	BuiltinTrackInput,
	BuiltinTrackOutput,
	BuiltinNoteOutput,
	BuiltinInput,
	BuiltinOutput,
	BuiltinDownmix,
}

// NodeFactory creates a node's initial mutable-state blob from its
// constructor args. Builtins use a factory that always returns nil.
type NodeFactory func(args []byte) []byte

func emptyStateFactory([]byte) []byte { return nil }

// PluginData is the shared, reference-counted-by-Go-GC handle to one
// compiled plugin backing one or more registry entries, mirroring the
// original's Arc<PluginData>.
type PluginData struct {
	Plugin  *plugin.Plugin
	Factory *plugin.StandaloneFactory
}

// Entry is one resource key's registration.
type Entry struct {
	Key     string
	Factory NodeFactory
	// Plugin is nil for builtin nodes, non-nil for plugin-backed ones.
	Plugin *PluginData
}

// Registry is the global, shared node registry: read by every worker,
// written to only when a plugin is loaded or unloaded.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	plugins []*PluginData
}

// New constructs a Registry with the builtin nodes pre-registered.
func New() *Registry {
	r := &Registry{entries: make(map[string]*Entry)}
	for _, key := range builtinKeys {
		r.entries[key] = &Entry{Key: key, Factory: emptyStateFactory}
	}
	return r
}

// RegisterPlugin compiles p into a standalone factory (at sampleRate)
// and registers one entry per node it exports, using factories to
// supply each node's NodeFactory. It is an error for factories to be
// missing an entry for one of p's nodes, or for any of p's node keys
// to collide with an already-registered key.
func (r *Registry) RegisterPlugin(ctx context.Context, p *plugin.Plugin, factories map[string]NodeFactory, sampleRate int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range p.Nodes() {
		if _, exists := r.entries[key]; exists {
			return fmt.Errorf("registry: plugin key collision for %q", key)
		}
		if _, ok := factories[key]; !ok {
			return fmt.Errorf("registry: no node factory supplied for plugin node %q", key)
		}
	}

	standalone, err := plugin.NewStandaloneFactory(ctx, p, sampleRate)
	if err != nil {
		return err
	}
	data := &PluginData{Plugin: p, Factory: standalone}

	for _, key := range p.Nodes() {
		r.entries[key] = &Entry{Key: key, Factory: factories[key], Plugin: data}
	}
	r.plugins = append(r.plugins, data)
	return nil
}

// Get looks up a resource key's registration.
func (r *Registry) Get(key string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	return e, ok
}

// Keys returns every currently-registered resource key.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for k := range r.entries {
		out = append(out, k)
	}
	return out
}

// Close releases every plugin's wazero runtime. Call once at engine
// shutdown.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for _, data := range r.plugins {
		if err := data.Factory.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WorkerOptions bundles everything a worker pool needs to construct
// and drive node instances, per spec.md §4.K: "engine handle, a
// per-key standalone plugin factory cache, worker count, sample rate,
// buffer size". The registry itself already caches one StandaloneFactory
// per loaded plugin (shared by every node key that plugin exports), so
// WorkerOptions need only route instance creation through it.
type WorkerOptions struct {
	Registry    *Registry
	WorkerCount int
	SampleRate  int
	BufferSize  int // in samples; must be a multiple of buffer.BlockSize
}

// NewInstance creates a fresh plugin.Instance for the node backing
// key, or (nil, nil) if key names a builtin (builtins have no plugin
// instance to run; the executor special-cases them directly).
func (o *WorkerOptions) NewInstance(ctx context.Context, key string) (*plugin.Instance, error) {
	entry, ok := o.Registry.Get(key)
	if !ok {
		return nil, fmt.Errorf("registry: unknown resource key %q", key)
	}
	if entry.Plugin == nil {
		return nil, nil
	}
	return entry.Plugin.Factory.NewInstance(ctx)
}
