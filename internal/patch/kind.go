// Package patch implements the per-track node/cable graph and its tag
// propagation (monophonic, multiphonic, downmix, disconnected).
//
// Grounded on the teacher's internal/music package (the tracker's
// signal-chain-as-graph of effects per track) generalized from a flat
// ordered effect chain to an arbitrary DAG with typed ports, and on the
// modulation-routing idea in the (now-removed) modulation package, whose
// "source feeds destination" wiring is the closest teacher analogue to
// a cable.
package patch

import "github.com/cubedaw/engine/internal/id"

// NodeKind and CableKind are phantom markers for id.Id.
type NodeKind struct{}
type CableKind struct{}

// NodeID and CableID name a node or cable within a Patch.
type NodeID = id.Id[NodeKind]
type CableID = id.Id[CableKind]

// Built-in resource keys. A patch may contain at most one node of each
// of these keys; RecalculateTags rejects a patch violating that.
const (
	ResourceKeyInput   = "builtin:input"
	ResourceKeyOutput  = "builtin:output"
	ResourceKeyDownmix = "builtin:downmix"
)

func isSpecialResourceKey(key string) bool {
	switch key {
	case ResourceKeyInput, ResourceKeyOutput, ResourceKeyDownmix:
		return true
	default:
		return false
	}
}
