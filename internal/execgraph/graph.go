// Package execgraph implements the node-graph executor of §4.G: a
// topologically sorted array of node entries rebuilt from a patch via
// Kahn's algorithm, processed one frame at a time with interpolated
// bias/multiplier smoothing.
//
// Grounded on the original_source cubedaw-worker/src/node_graph/mod.rs
// PreparedNodeGraph (sync_with/process/reset); the teacher has no
// per-frame DAG executor of its own (the tracker evaluates one linear
// effect chain per track), so the control flow follows the original
// directly, translated into Go slices/maps in place of Rust's
// IdMap/IdSet collaborators (here: internal/id's generic containers).
package execgraph

import (
	"context"
	"fmt"

	"github.com/cubedaw/engine/internal/buffer"
	"github.com/cubedaw/engine/internal/id"
	"github.com/cubedaw/engine/internal/patch"
	"github.com/cubedaw/engine/internal/registry"
)

// Connection is one resolved cable: which already-processed entry (by
// index into Graph.nodes) and output port feeds this input, scaled by
// an interpolated multiplier.
type Connection struct {
	NodeIndex   int
	OutputIndex int
	Multiplier  Interpolated
}

// Input is one node input port's working state.
type Input struct {
	Connections []Connection
	Bias        Interpolated
	Buffer      *buffer.Buffer
}

// Output is one node output port's working state.
type Output struct {
	Buffer *buffer.Buffer
}

// Entry is one processed node: its resource key, argument blob,
// mutable state (cloned from OriginalState on Reset), and resolved
// input/output ports.
type Entry struct {
	NodeID        patch.NodeID
	Key           string
	Args          []byte
	State         []byte
	OriginalState []byte
	Inputs        []Input
	Outputs       []Output
}

// Graph is a PreparedNodeGraph: the topologically sorted node array
// plus the id->index map supporting incremental sync_with updates.
type Graph struct {
	inputNode  *patch.NodeID
	outputNode patch.NodeID

	idToIndex *id.Map[patch.NodeKind, int]
	nodes     []*Entry

	bufferSize int
}

// New constructs an empty graph that will produce bufferSize-sample
// output buffers (a multiple of buffer.BlockSize) once synced.
func New(bufferSize int) *Graph {
	return &Graph{idToIndex: id.NewMap[patch.NodeKind, int](), bufferSize: bufferSize}
}

func (g *Graph) InputNode() *patch.NodeID  { return g.inputNode }
func (g *Graph) OutputNode() patch.NodeID  { return g.outputNode }
func (g *Graph) Entries() []*Entry         { return g.nodes }

// EntryFor returns the entry for a node id, if present in the last
// synced graph.
func (g *Graph) EntryFor(nid patch.NodeID) (*Entry, bool) {
	idx, ok := g.idToIndex.Get(nid)
	if !ok {
		return nil, false
	}
	return g.nodes[idx], true
}

// SyncWith rebuilds the graph against p, per §4.G "Sync-with-patch":
// backward-reachability DFS from outputNode bounded by inputNode,
// Kahn's algorithm for a topological order, reusing prior entries'
// mutable state by node id where possible.
func (g *Graph) SyncWith(p *patch.Patch, reg *registry.Registry, inputNode *patch.NodeID, outputNode patch.NodeID) error {
	g.inputNode = inputNode
	g.outputNode = outputNode

	prevEntries := id.NewMap[patch.NodeKind, *Entry]()
	for _, nid := range g.idToIndex.Keys() {
		idx, _ := g.idToIndex.Get(nid)
		prevEntries.Set(nid, g.nodes[idx])
	}
	g.nodes = nil
	newIndex := id.NewMap[patch.NodeKind, int]()

	indegrees := id.NewMap[patch.NodeKind, int]()
	var stack []patch.NodeID
	visited := id.NewSet[patch.NodeKind]()

	stack = append(stack, outputNode)
	visited.Add(outputNode)

	var zeroIndegree []patch.NodeID

	for len(stack) > 0 {
		nid := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, ok := p.Node(nid)
		if !ok {
			return fmt.Errorf("execgraph: cable connected to nonexistent node %v", nid)
		}
		indeg := 0
		for _, in := range node.Inputs {
			indeg += len(in.Cables)
		}
		if indeg == 0 || (inputNode != nil && nid == *inputNode) {
			zeroIndegree = append(zeroIndegree, nid)
		} else {
			indegrees.Set(nid, indeg)
			for _, in := range node.Inputs {
				for _, ref := range in.Cables {
					cable, ok := p.Cable(ref.Cable)
					if !ok || cable.Tag == patch.CableTagInvalid {
						continue
					}
					producer := cable.ProducerNode
					if !visited.Has(producer) {
						visited.Add(producer)
						stack = append(stack, producer)
					}
				}
			}
		}
	}

	if inputNode != nil && !visited.Has(*inputNode) {
		// Input node unreachable from the output: insert a dummy entry so
		// callers can still feed it (it simply produces no downstream effect).
		newIndex.Set(*inputNode, 0)
		n, ok := p.Node(*inputNode)
		if !ok {
			return fmt.Errorf("execgraph: input node %v not found in patch", *inputNode)
		}
		g.nodes = append(g.nodes, &Entry{NodeID: *inputNode, Key: n.ResourceKey})
	}

	for len(zeroIndegree) > 0 {
		nid := zeroIndegree[len(zeroIndegree)-1]
		zeroIndegree = zeroIndegree[:len(zeroIndegree)-1]

		node, ok := p.Node(nid)
		if !ok {
			return fmt.Errorf("execgraph: node %v vanished mid-sync", nid)
		}

		entry, ok := prevEntries.Get(nid)
		if !ok {
			regEntry, ok := reg.Get(node.ResourceKey)
			if !ok {
				return fmt.Errorf("execgraph: resource key %q not in registry", node.ResourceKey)
			}
			state := regEntry.Factory(node.Arg)
			original := append([]byte(nil), state...)
			entry = &Entry{NodeID: nid, Key: node.ResourceKey, State: state, OriginalState: original}
		}
		entry.Args = node.Arg

		nodeInputs := node.Inputs
		if inputNode != nil && nid == *inputNode {
			// The input node bounds the graph: its own upstream cables lie
			// outside it, and what FeedInputBuffer/SetSourceOutputs write
			// to its outputs must not be overwritten by Process.
			nodeInputs = nil
		}
		entry.Inputs = make([]Input, len(nodeInputs))
		for i, nodeInput := range nodeInputs {
			gi := &entry.Inputs[i]
			gi.Buffer = buffer.Zeroed(g.bufferSize)
			gi.Bias.SetRaw(nodeInput.Bias)
			gi.Connections = make([]Connection, len(nodeInput.Cables))
			for j, ref := range nodeInput.Cables {
				cable, ok := p.Cable(ref.Cable)
				if !ok {
					return fmt.Errorf("execgraph: input references nonexistent cable %v", ref.Cable)
				}
				producerIdx, ok := newIndex.Get(cable.ProducerNode)
				if !ok {
					return fmt.Errorf("execgraph: node %v reachable with cables but not yet indexed; preprocessing error", cable.ProducerNode)
				}
				gi.Connections[j] = Connection{NodeIndex: producerIdx, OutputIndex: cable.ProducerPort}
				gi.Connections[j].Multiplier.SetRaw(ref.Multiplier)
			}
		}

		entry.Outputs = make([]Output, len(node.Outputs))
		for i := range entry.Outputs {
			entry.Outputs[i].Buffer = buffer.Zeroed(g.bufferSize)
		}

		newIndex.Set(nid, len(g.nodes))
		g.nodes = append(g.nodes, entry)

		if nid != outputNode {
			for _, out := range node.Outputs {
				for _, cid := range out.Cables {
					cable, ok := p.Cable(cid)
					if !ok || cable.Tag == patch.CableTagInvalid {
						continue
					}
					if indeg, ok := indegrees.Get(cable.ConsumerNode); ok {
						indeg--
						if indeg == 0 {
							zeroIndegree = append(zeroIndegree, cable.ConsumerNode)
							indegrees.Delete(cable.ConsumerNode)
						} else {
							indegrees.Set(cable.ConsumerNode, indeg)
						}
					}
				}
			}
		}
	}

	if indegrees.Len() != 0 || len(zeroIndegree) != 0 {
		return fmt.Errorf("execgraph: cycle detected in node graph")
	}

	g.idToIndex = newIndex
	return nil
}

// NodeInvoker supplies the plugin instance backing a resource key,
// shared per graph (typically per executor, e.g. one per note/track)
// so a plugin's mutable runtime state persists across Process calls.
type NodeInvoker interface {
	Invoke(ctx context.Context, key string, args, state []byte, inputs [][buffer.BlockSize]float32, numOutputs int) (newState []byte, outputs [][buffer.BlockSize]float32, err error)
}

// Process runs every node in topological order: each input buffer is
// first filled with its interpolated bias, then multiply-accumulated
// with every incoming connection's (already-processed) output scaled
// by its interpolated multiplier; the node is then dispatched to inv
// (plugin-backed) or passed straight through input->output (builtin).
func (g *Graph) Process(ctx context.Context, reg *registry.Registry, inv NodeInvoker) error {
	for index, node := range g.nodes {
		for i := range node.Inputs {
			in := &node.Inputs[i]
			in.Bias.FillBuffer(in.Buffer)
			for ci := range in.Connections {
				conn := &in.Connections[ci]
				if conn.NodeIndex >= index {
					return fmt.Errorf("execgraph: connection from non-predecessor index %d at index %d", conn.NodeIndex, index)
				}
				producerOut := g.nodes[conn.NodeIndex].Outputs[conn.OutputIndex].Buffer
				conn.Multiplier.macInto(in.Buffer, producerOut)
			}
		}

		entry, ok := reg.Get(node.Key)
		if !ok {
			return fmt.Errorf("execgraph: resource key %q missing from registry mid-process", node.Key)
		}

		if entry.Plugin == nil {
			n := len(node.Inputs)
			if len(node.Outputs) < n {
				n = len(node.Outputs)
			}
			for i := 0; i < n; i++ {
				node.Outputs[i].Buffer.CopyFrom(node.Inputs[i].Buffer)
			}
			continue
		}

		numBlocks := g.bufferSize / buffer.BlockSize
		for blk := 0; blk < numBlocks; blk++ {
			inputs := make([][buffer.BlockSize]float32, len(node.Inputs))
			for i := range node.Inputs {
				copy(inputs[i][:], node.Inputs[i].Buffer.Block(blk))
			}
			newState, outputs, err := inv.Invoke(ctx, node.Key, node.Args, node.State, inputs, len(node.Outputs))
			if err != nil {
				return fmt.Errorf("execgraph: node %v (%s): %w", node.NodeID, node.Key, err)
			}
			node.State = newState
			for i := range node.Outputs {
				if i < len(outputs) {
					copy(node.Outputs[i].Buffer.Block(blk), outputs[i][:])
				}
			}
		}
	}
	return nil
}

// SetSourceOutputs overwrites nid's output buffers with constant
// values, one per output port. Used by a NoteProcess job (§4.I) to
// feed a note's attributes (pitch, velocity, start-offset-in-samples)
// through the per-note graph's note-output sentinel. SyncWith gives a
// graph's input node no inputs of its own, so Process's builtin
// passthrough copies nothing over what this call sets.
func (g *Graph) SetSourceOutputs(nid patch.NodeID, values []float32) error {
	entry, ok := g.EntryFor(nid)
	if !ok {
		return fmt.Errorf("execgraph: SetSourceOutputs: node %v not in graph", nid)
	}
	if len(values) != len(entry.Outputs) {
		return fmt.Errorf("execgraph: SetSourceOutputs: node %v has %d outputs, got %d values", nid, len(entry.Outputs), len(values))
	}
	for i, v := range values {
		samples := entry.Outputs[i].Buffer.Samples()
		for j := range samples {
			samples[j] = v
		}
	}
	return nil
}

// FeedInputBuffer copies src's full contents into nid's first output
// port, for a TrackProcess/TrackGroup job (§4.I) whose graph input
// node represents an upstream sync-buffer summation rather than a
// fixed attribute tuple (contrast SetSourceOutputs, used by
// NoteProcess). Like SetSourceOutputs, this relies on SyncWith giving
// the input node no inputs of its own, so Process's builtin
// passthrough never overwrites it.
func (g *Graph) FeedInputBuffer(nid patch.NodeID, src *buffer.Buffer) error {
	entry, ok := g.EntryFor(nid)
	if !ok {
		return fmt.Errorf("execgraph: FeedInputBuffer: node %v not in graph", nid)
	}
	if len(entry.Outputs) == 0 {
		return fmt.Errorf("execgraph: FeedInputBuffer: node %v declares no outputs", nid)
	}
	entry.Outputs[0].Buffer.CopyFrom(src)
	return nil
}

// Reset restores every node's state blob from its original snapshot,
// per §4.G "Reset" — used when the scheduler drops in-flight audio.
func (g *Graph) Reset() {
	for _, n := range g.nodes {
		n.State = append([]byte(nil)[:0:0], n.OriginalState...)
	}
}
