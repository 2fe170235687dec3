package worker

import (
	"context"
	"fmt"

	"github.com/cubedaw/engine/internal/buffer"
	"github.com/cubedaw/engine/internal/registry"
)

// instanceCache adapts registry.WorkerOptions to execgraph.NodeInvoker:
// it lazily creates (and reuses, per worker) one plugin.Instance per
// resource key, matching the original's WorkerState.standalone_instances
// — a worker-local cache so a plugin's runtime memory persists across
// the many Process calls a long-lived note/track executor makes.
type instanceCache struct {
	opts      *registry.WorkerOptions
	instances map[string]*pluginInstance
}

// pluginInstance is the minimal surface instanceCache needs from
// *plugin.Instance, expressed as an interface so tests can substitute
// a fake without constructing a real wazero runtime.
type pluginInstance interface {
	Invoke(ctx context.Context, resourceKey string, args, state []byte) ([]byte, error)
	SetInput(port int32, block [buffer.BlockSize]float32)
	TakeOutput(port int32) [buffer.BlockSize]float32
}

// instanceFactory creates a pluginInstance for a resource key; swapped
// out in tests.
type instanceFactory func(ctx context.Context, key string) (pluginInstance, error)

func newInstanceCache(opts *registry.WorkerOptions) *instanceCache {
	return &instanceCache{opts: opts, instances: make(map[string]*pluginInstance)}
}

func (c *instanceCache) get(ctx context.Context, key string) (pluginInstance, error) {
	if inst, ok := c.instances[key]; ok {
		return *inst, nil
	}
	raw, err := c.opts.NewInstance(ctx, key)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("worker: resource key %q has no plugin instance (builtin node reached plugin dispatch)", key)
	}
	wrapped := pluginInstance(instanceAdapter{raw})
	c.instances[key] = &wrapped
	return wrapped, nil
}

// Invoke implements execgraph.NodeInvoker: push each input port's
// block into the instance's store, run the plugin invocation, and
// drain each output port's block back out.
func (c *instanceCache) Invoke(ctx context.Context, key string, args, state []byte, inputs [][buffer.BlockSize]float32, numOutputs int) ([]byte, [][buffer.BlockSize]float32, error) {
	inst, err := c.get(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	for port, block := range inputs {
		inst.SetInput(int32(port), block)
	}
	newState, err := inst.Invoke(ctx, key, args, state)
	if err != nil {
		return nil, nil, err
	}
	outputs := make([][buffer.BlockSize]float32, numOutputs)
	for port := range outputs {
		outputs[port] = inst.TakeOutput(int32(port))
	}
	return newState, outputs, nil
}
