package plugin

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// PluginAlign is PLUGIN_ALIGN from §4.F: the byte alignment used for
// the args/state blob offsets written into a plugin instance's linear
// memory before each invocation.
const PluginAlign = 16

// StandaloneFactory compiles one plugin into a standalone module (one
// plugin, real-time-invokable) and creates fresh Instances on demand,
// each owning its own memory, per §4.F "Standalone factory".
type StandaloneFactory struct {
	plugin     *Plugin
	sampleRate int
	rt         wazero.Runtime
	compiled   wazero.CompiledModule
}

// NewStandaloneFactory compiles p for real-time use against the given
// sample rate (baked into the hostSampleRate import, which never
// changes mid-instance per spec.md §4.K WorkerOptions).
func NewStandaloneFactory(ctx context.Context, p *Plugin, sampleRate int) (*StandaloneFactory, error) {
	rt := newRuntime(ctx)
	compiled, err := compile(ctx, rt, p.raw)
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}
	f := &StandaloneFactory{plugin: p, sampleRate: sampleRate, rt: rt, compiled: compiled}
	if err := f.registerHostModules(ctx); err != nil {
		rt.Close(ctx)
		return nil, err
	}
	return f, nil
}

// Close releases the factory's wazero runtime (and every compiled
// module/instance it owns).
func (f *StandaloneFactory) Close(ctx context.Context) error {
	return f.rt.Close(ctx)
}

// registerHostModules builds one wazero host module per distinct
// import-namespace the plugin actually used, each exporting whichever
// of the four fixed functions that namespace supplies. The Go closures
// dereference the Store stashed in the calling context (by Invoke for
// every node call, and by NewInstance for instantiation), so one
// compiled host module serves every Instance without re-registration.
func (f *StandaloneFactory) registerHostModules(ctx context.Context) error {
	byModule := map[string][]HostFunction{}
	for _, b := range f.plugin.imports {
		byModule[b.Module] = append(byModule[b.Module], b.Function)
	}
	for module, fns := range byModule {
		builder := f.rt.NewHostModuleBuilder(module)
		for _, fn := range fns {
			switch fn {
			case HostSampleRate:
				builder.NewFunctionBuilder().WithFunc(hostSampleRate).Export(string(HostSampleRate))
			case HostInput:
				builder.NewFunctionBuilder().WithFunc(hostInput).Export(string(HostInput))
			case HostOutput:
				builder.NewFunctionBuilder().WithFunc(hostOutput).Export(string(HostOutput))
			case HostAttribute:
				builder.NewFunctionBuilder().WithFunc(hostAttribute).Export(string(HostAttribute))
			}
		}
		if _, err := builder.Instantiate(ctx); err != nil {
			return fmt.Errorf("%w: registering host module %q: %v", ErrLinkerError, module, err)
		}
	}
	return nil
}

// storeKey is the context key an Instance's Store is stashed under so
// the package-level host function closures below can reach it.
type storeKey struct{}

func storeFromContext(ctx context.Context) *Store {
	s, _ := ctx.Value(storeKey{}).(*Store)
	return s
}

func hostSampleRate(ctx context.Context, _ api.Module) int32 {
	return storeFromContext(ctx).SampleRate
}

func hostInput(ctx context.Context, _ api.Module, port int32) (f0, f1, f2, f3, f4, f5, f6, f7, f8, f9, f10, f11, f12, f13, f14, f15 float32) {
	b := storeFromContext(ctx).inputs[port]
	return b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7], b[8], b[9], b[10], b[11], b[12], b[13], b[14], b[15]
}

func hostOutput(ctx context.Context, _ api.Module, f0, f1, f2, f3, f4, f5, f6, f7, f8, f9, f10, f11, f12, f13, f14, f15 float32, port int32) {
	storeFromContext(ctx).outputs[port] = [lanesPerBlock]float32{f0, f1, f2, f3, f4, f5, f6, f7, f8, f9, f10, f11, f12, f13, f14, f15}
}

func hostAttribute(ctx context.Context, _ api.Module, key int32) (f0, f1, f2, f3, f4, f5, f6, f7, f8, f9, f10, f11, f12, f13, f14, f15 float32) {
	b := storeFromContext(ctx).attrs[key]
	return b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7], b[8], b[9], b[10], b[11], b[12], b[13], b[14], b[15]
}

// Instance is one standalone, real-time-invokable instantiation of a
// plugin, owning its own linear memory and Store.
type Instance struct {
	factory *StandaloneFactory
	mod     api.Module
	store   *Store

	// staticMemSize is the post-instantiation memory size in bytes: the
	// region below it holds the plugin's own globals/data segments and
	// is never overwritten; args/state blobs are always written above it.
	staticMemSize uint32

	nodeFuncs map[string]api.Function // resource key -> exported node function
}

// NewInstance creates a fresh instance, each owning independent memory
// (§4.F "The factory creates fresh instances on demand, each owning
// its memory").
func (f *StandaloneFactory) NewInstance(ctx context.Context) (*Instance, error) {
	store := newStore(f.sampleRate)
	ctx = context.WithValue(ctx, storeKey{}, store)

	cfg := wazero.NewModuleConfig().WithName("")
	mod, err := f.rt.InstantiateModule(ctx, f.compiled, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: instantiating plugin: %v", ErrLinkerError, err)
	}

	inst := &Instance{
		factory:   f,
		mod:       mod,
		store:     store,
		nodeFuncs: make(map[string]api.Function, len(f.plugin.NodeList)),
	}
	if mem := mod.Memory(); mem != nil {
		inst.staticMemSize = mem.Size()
	}
	for key, exportName := range f.plugin.NodeList {
		fn := mod.ExportedFunction(exportName)
		if fn == nil {
			return nil, fmt.Errorf("%w: node %q's export %q vanished after instantiation", ErrLinkerError, key, exportName)
		}
		inst.nodeFuncs[key] = fn
	}
	return inst, nil
}

// Close releases the instance's module (and its memory).
func (inst *Instance) Close(ctx context.Context) error {
	return inst.mod.Close(ctx)
}

// alignUp rounds n up to the next multiple of PluginAlign.
func alignUp(n uint32) uint32 {
	rem := n % PluginAlign
	if rem == 0 {
		return n
	}
	return n + (PluginAlign - rem)
}

// Invoke runs the node backing resourceKey once, per §4.F
// "Per-invocation protocol": it writes args and state into memory
// above the instance's static region (growing memory if needed), runs
// the exported function, and reads the (possibly mutated) state blob
// back out. Inputs/outputs themselves flow through inst.store, which
// the caller (internal/execgraph) must populate/drain around this call.
func (inst *Instance) Invoke(ctx context.Context, resourceKey string, args, state []byte) ([]byte, error) {
	fn, ok := inst.nodeFuncs[resourceKey]
	if !ok {
		return nil, fmt.Errorf("%w: instance has no node for resource key %q", ErrPluginRuntime, resourceKey)
	}
	mem := inst.mod.Memory()
	argsOff := alignUp(inst.staticMemSize)
	stateOff := alignUp(argsOff + uint32(len(args)))
	needed := stateOff + uint32(len(state))

	if mem.Size() < needed {
		deltaBytes := needed - mem.Size()
		deltaPages := deltaBytes/65536 + 1
		if _, ok := mem.Grow(deltaPages); !ok {
			return nil, fmt.Errorf("%w: plugin %q refused to grow memory", ErrPluginRuntime, resourceKey)
		}
	}
	if !mem.Write(argsOff, args) {
		return nil, fmt.Errorf("%w: failed writing args blob", ErrPluginRuntime)
	}
	if !mem.Write(stateOff, state) {
		return nil, fmt.Errorf("%w: failed writing state blob", ErrPluginRuntime)
	}

	ctx = context.WithValue(ctx, storeKey{}, inst.store)
	if _, err := fn.Call(ctx, uint64(argsOff), uint64(stateOff)); err != nil {
		return nil, fmt.Errorf("%w: node %q trapped: %v", ErrPluginRuntime, resourceKey, err)
	}

	newState, ok := mem.Read(stateOff, uint32(len(state)))
	if !ok {
		return nil, fmt.Errorf("%w: failed reading back state blob", ErrPluginRuntime)
	}
	out := make([]byte, len(newState))
	copy(out, newState)
	return out, nil
}

// Store returns the instance's host-side input/output/attribute
// channel, for the caller to populate before Invoke and drain after.
func (inst *Instance) Store() *Store { return inst.store }
