package patch

import (
	"errors"

	"github.com/cubedaw/engine/internal/id"
)

var (
	// ErrMultipleSpecialNodes is returned by Validate/RecalculateTags when
	// a patch carries more than one builtin:input, builtin:output, or
	// builtin:downmix node. Resolves an open question left by the
	// original design: rejected as an invalid patch, never a panic.
	ErrMultipleSpecialNodes = errors.New("patch: more than one node with the same builtin resource key")
	// ErrNodeNotFound is returned when an operation names a node id the
	// patch does not contain.
	ErrNodeNotFound = errors.New("patch: node not found")
	// ErrCableNotFound is returned when an operation names a cable id the
	// patch does not contain.
	ErrCableNotFound = errors.New("patch: cable not found")
	// ErrPortOutOfRange is returned when a cable references an input or
	// output port index past the node's declared port count.
	ErrPortOutOfRange = errors.New("patch: port index out of range")
	// ErrWouldCycle is returned only by ProspectiveInsert's advisory
	// check when the candidate cable would create a cycle in the graph.
	// AddCable/InsertCable never return it — insertion is pure
	// bookkeeping (spec.md §4.E) and accepts a forced-in cycle;
	// RecalculateTags is what marks the resulting back-edge invalid.
	ErrWouldCycle = errors.New("patch: cable would create a cycle")
)

// CableRef names a cable attached to one of a node's input ports, plus
// the per-cable gain (multiplier) applied before it is summed into the
// port's bias.
type CableRef struct {
	Cable      CableID
	Multiplier float32
}

// NodeInput is one input port: a constant bias summed with every
// attached cable's (signal * multiplier).
type NodeInput struct {
	Bias   float32
	Cables []CableRef
}

// NodeOutput is one output port: the set of cables reading from it.
type NodeOutput struct {
	Cables []CableID
}

// Node is one vertex of the patch graph. ResourceKey names the plugin
// (or builtin) that supplies its processing behavior; Arg is an opaque
// state blob round-tripped through plugin invocations (§4.F) and
// otherwise untouched by the patch package.
type Node struct {
	ResourceKey string
	Arg         []byte
	Inputs      []NodeInput
	Outputs     []NodeOutput
	Tag         NodeTag
}

// Cable is one edge: ProducerNode/ProducerPort is the node-output the
// cable reads from, ConsumerNode/ConsumerPort/ConsumerPos is the
// node-input slot (and position within that slot's Cables list) it
// feeds. Named by role (producer/consumer) rather than the original
// design's input/output-side terms, which read backwards in Go: the
// cable's "input" is the producer.
type Cable struct {
	ProducerNode NodeID
	ProducerPort int
	ConsumerNode NodeID
	ConsumerPort int
	ConsumerPos  int
	Tag          CableTag
}

// Patch is a track's node/cable graph.
type Patch struct {
	nodes  *id.Map[NodeKind, *Node]
	cables *id.Map[CableKind, *Cable]
}

func New() *Patch {
	return &Patch{
		nodes:  id.NewMap[NodeKind, *Node](),
		cables: id.NewMap[CableKind, *Cable](),
	}
}

// AddNode inserts a node with the given port counts and returns its id.
func (p *Patch) AddNode(resourceKey string, arg []byte, numInputs, numOutputs int) NodeID {
	nid := id.Arbitrary[NodeKind]()
	p.InsertNode(nid, resourceKey, arg, numInputs, numOutputs)
	return nid
}

// InsertNode inserts a node under a caller-chosen id. Used by the
// command layer's NodeAddOrRemove, which must restore the exact id a
// removed node previously held on rollback.
func (p *Patch) InsertNode(nid NodeID, resourceKey string, arg []byte, numInputs, numOutputs int) {
	p.nodes.Set(nid, &Node{
		ResourceKey: resourceKey,
		Arg:         arg,
		Inputs:      make([]NodeInput, numInputs),
		Outputs:     make([]NodeOutput, numOutputs),
		Tag:         NodeTagDisconnected,
	})
}

// RemoveNode deletes a node. The caller must have already removed every
// cable touching it (mirrors the teacher's convention of leaving
// cross-entity cleanup ordering to the command layer, see
// internal/command).
func (p *Patch) RemoveNode(nid NodeID) error {
	n, ok := p.nodes.Get(nid)
	if !ok {
		return ErrNodeNotFound
	}
	for _, in := range n.Inputs {
		if len(in.Cables) != 0 {
			return errors.New("patch: cannot remove node with attached input cables")
		}
	}
	for _, out := range n.Outputs {
		if len(out.Cables) != 0 {
			return errors.New("patch: cannot remove node with attached output cables")
		}
	}
	p.nodes.Delete(nid)
	return nil
}

func (p *Patch) Node(nid NodeID) (*Node, bool)    { return p.nodes.Get(nid) }
func (p *Patch) Cable(cid CableID) (*Cable, bool) { return p.cables.Get(cid) }

func (p *Patch) Nodes() *id.Map[NodeKind, *Node]    { return p.nodes }
func (p *Patch) Cables() *id.Map[CableKind, *Cable] { return p.cables }
