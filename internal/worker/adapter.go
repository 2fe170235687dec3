package worker

import (
	"context"

	"github.com/cubedaw/engine/internal/buffer"
	"github.com/cubedaw/engine/internal/plugin"
)

// instanceAdapter adapts *plugin.Instance to the pluginInstance
// interface instanceCache depends on.
type instanceAdapter struct{ inst *plugin.Instance }

func (a instanceAdapter) Invoke(ctx context.Context, resourceKey string, args, state []byte) ([]byte, error) {
	return a.inst.Invoke(ctx, resourceKey, args, state)
}

func (a instanceAdapter) SetInput(port int32, block [buffer.BlockSize]float32) {
	a.inst.Store().SetInput(port, block)
}

func (a instanceAdapter) TakeOutput(port int32) [buffer.BlockSize]float32 {
	return a.inst.Store().TakeOutput(port)
}
