package command

import (
	"fmt"

	"github.com/cubedaw/engine/internal/patch"
	"github.com/cubedaw/engine/internal/project"
)

// nodeSnapshot captures everything needed to restore a removed node
// exactly: its resource key, static arg blob, and per-input bias
// values (cables themselves are never captured here — a node cannot
// be removed while cables are still attached, per patch.RemoveNode, so
// by construction a removed node's inputs/outputs are always cable-free).
type nodeSnapshot struct {
	resourceKey string
	arg         []byte
	numInputs   int
	numOutputs  int
	biases      []float32
}

// NodeAddOrRemove adds or removes a node from a track's patch.
type NodeAddOrRemove struct {
	Track     project.TrackID
	ID        patch.NodeID
	IsRemoval bool
	strength  Strength

	data *nodeSnapshot
}

// NewNodeAdd returns a command that inserts a node with the given
// resource key, static arg blob, and port counts.
func NewNodeAdd(trackID project.TrackID, nodeID patch.NodeID, resourceKey string, arg []byte, numInputs, numOutputs int, strength Strength) *NodeAddOrRemove {
	return &NodeAddOrRemove{
		Track: trackID, ID: nodeID, IsRemoval: false, strength: strength,
		data: &nodeSnapshot{resourceKey: resourceKey, arg: arg, numInputs: numInputs, numOutputs: numOutputs, biases: make([]float32, numInputs)},
	}
}

// NewNodeRemove returns a command that removes a node.
func NewNodeRemove(trackID project.TrackID, nodeID patch.NodeID, strength Strength) *NodeAddOrRemove {
	return &NodeAddOrRemove{Track: trackID, ID: nodeID, IsRemoval: true, strength: strength}
}

func (c *NodeAddOrRemove) Strength() Strength { return c.strength }

func (c *NodeAddOrRemove) Run(s *project.State, dir Direction) error {
	track, ok := s.Track(c.Track)
	if !ok {
		return fmt.Errorf("command: NodeAddOrRemove references nonexistent track %d", c.Track.Value())
	}
	doAdd := (dir == Execute) != c.IsRemoval
	if doAdd {
		snap := c.data
		c.data = nil
		track.Patch.InsertNode(c.ID, snap.resourceKey, snap.arg, snap.numInputs, snap.numOutputs)
		if n, ok := track.Patch.Node(c.ID); ok {
			for i := range n.Inputs {
				if i < len(snap.biases) {
					n.Inputs[i].Bias = snap.biases[i]
				}
			}
		}
	} else {
		n, ok := track.Patch.Node(c.ID)
		if !ok {
			return nil
		}
		snap := &nodeSnapshot{resourceKey: n.ResourceKey, arg: n.Arg, numInputs: len(n.Inputs), numOutputs: len(n.Outputs)}
		snap.biases = make([]float32, len(n.Inputs))
		for i, in := range n.Inputs {
			snap.biases[i] = in.Bias
		}
		if err := track.Patch.RemoveNode(c.ID); err != nil {
			return err
		}
		c.data = snap
	}
	return track.Patch.RecalculateTags()
}

func (c *NodeAddOrRemove) TryMerge(Command) bool { return false }

// NodeStateUpdate replaces a node's opaque arg blob and resizes its
// input/output port arrays, disallowing shrinking past an input that
// still carries connected cables.
type NodeStateUpdate struct {
	Track      project.TrackID
	ID         patch.NodeID
	NewArg     []byte
	NewInputs  int
	NewOutputs int
	strength   Strength

	prevArg     []byte
	prevInputs  int
	prevOutputs int
	applied     bool
}

func NewNodeStateUpdate(trackID project.TrackID, nodeID patch.NodeID, newArg []byte, newInputs, newOutputs int, strength Strength) *NodeStateUpdate {
	return &NodeStateUpdate{Track: trackID, ID: nodeID, NewArg: newArg, NewInputs: newInputs, NewOutputs: newOutputs, strength: strength}
}

func (c *NodeStateUpdate) Strength() Strength { return c.strength }

func (c *NodeStateUpdate) Run(s *project.State, dir Direction) error {
	track, ok := s.Track(c.Track)
	if !ok {
		return fmt.Errorf("command: NodeStateUpdate references nonexistent track %d", c.Track.Value())
	}
	n, ok := track.Patch.Node(c.ID)
	if !ok {
		return fmt.Errorf("command: NodeStateUpdate references nonexistent node %d", c.ID.Value())
	}

	var newArg []byte
	var newInputs, newOutputs int
	if dir == Execute {
		if !c.applied {
			c.prevArg = n.Arg
			c.prevInputs = len(n.Inputs)
			c.prevOutputs = len(n.Outputs)
		}
		newArg, newInputs, newOutputs = c.NewArg, c.NewInputs, c.NewOutputs
	} else {
		newArg, newInputs, newOutputs = c.prevArg, c.prevInputs, c.prevOutputs
	}

	for i := newInputs; i < len(n.Inputs); i++ {
		if len(n.Inputs[i].Cables) != 0 {
			return fmt.Errorf("command: NodeStateUpdate would drop input %d with connected cables", i)
		}
	}
	for i := newOutputs; i < len(n.Outputs); i++ {
		if len(n.Outputs[i].Cables) != 0 {
			return fmt.Errorf("command: NodeStateUpdate would drop output %d with connected cables", i)
		}
	}

	n.Arg = newArg
	n.Inputs = resizeInputs(n.Inputs, newInputs)
	n.Outputs = resizeOutputs(n.Outputs, newOutputs)
	if dir == Execute {
		c.applied = true
	}
	return track.Patch.RecalculateTags()
}

func resizeInputs(in []patch.NodeInput, n int) []patch.NodeInput {
	if n <= len(in) {
		return in[:n]
	}
	out := make([]patch.NodeInput, n)
	copy(out, in)
	return out
}

func resizeOutputs(out []patch.NodeOutput, n int) []patch.NodeOutput {
	if n <= len(out) {
		return out[:n]
	}
	o := make([]patch.NodeOutput, n)
	copy(o, out)
	return o
}

func (c *NodeStateUpdate) TryMerge(other Command) bool {
	o, ok := other.(*NodeStateUpdate)
	if !ok || o.Track != c.Track || o.ID != c.ID {
		return false
	}
	c.NewArg, c.NewInputs, c.NewOutputs = o.NewArg, o.NewInputs, o.NewOutputs
	return true
}

// NodeBiasChange changes one input port's constant bias value.
type NodeBiasChange struct {
	Track    project.TrackID
	ID       patch.NodeID
	Input    int
	From, To float32
	strength Strength
}

func NewNodeBiasChange(trackID project.TrackID, nodeID patch.NodeID, input int, from, to float32, strength Strength) *NodeBiasChange {
	return &NodeBiasChange{Track: trackID, ID: nodeID, Input: input, From: from, To: to, strength: strength}
}

func (c *NodeBiasChange) Strength() Strength { return c.strength }

func (c *NodeBiasChange) Run(s *project.State, dir Direction) error {
	track, ok := s.Track(c.Track)
	if !ok {
		return fmt.Errorf("command: NodeBiasChange references nonexistent track %d", c.Track.Value())
	}
	n, ok := track.Patch.Node(c.ID)
	if !ok {
		return fmt.Errorf("command: NodeBiasChange references nonexistent node %d", c.ID.Value())
	}
	if c.Input < 0 || c.Input >= len(n.Inputs) {
		return fmt.Errorf("command: NodeBiasChange input %d out of range", c.Input)
	}
	if dir == Execute {
		n.Inputs[c.Input].Bias = c.To
	} else {
		n.Inputs[c.Input].Bias = c.From
	}
	return nil
}

// TryMerge folds a second consecutive bias change on the same
// (track, node, input) into one command spanning From->other.To —
// the canonical drag-produces-many-tiny-moves case from §8 scenario 5.
func (c *NodeBiasChange) TryMerge(other Command) bool {
	o, ok := other.(*NodeBiasChange)
	if !ok || o.Track != c.Track || o.ID != c.ID || o.Input != c.Input {
		return false
	}
	c.To = o.To
	return true
}

// NodeMultiplierChange changes one cable's gain multiplier as seen from
// the consuming input's cable-ref list.
type NodeMultiplierChange struct {
	Track    project.TrackID
	ID       patch.NodeID
	Input    int
	Cable    patch.CableID
	From, To float32
	strength Strength
}

func NewNodeMultiplierChange(trackID project.TrackID, nodeID patch.NodeID, input int, cableID patch.CableID, from, to float32, strength Strength) *NodeMultiplierChange {
	return &NodeMultiplierChange{Track: trackID, ID: nodeID, Input: input, Cable: cableID, From: from, To: to, strength: strength}
}

func (c *NodeMultiplierChange) Strength() Strength { return c.strength }

func (c *NodeMultiplierChange) Run(s *project.State, dir Direction) error {
	track, ok := s.Track(c.Track)
	if !ok {
		return fmt.Errorf("command: NodeMultiplierChange references nonexistent track %d", c.Track.Value())
	}
	n, ok := track.Patch.Node(c.ID)
	if !ok {
		return fmt.Errorf("command: NodeMultiplierChange references nonexistent node %d", c.ID.Value())
	}
	if c.Input < 0 || c.Input >= len(n.Inputs) {
		return fmt.Errorf("command: NodeMultiplierChange input %d out of range", c.Input)
	}
	v := c.From
	if dir == Execute {
		v = c.To
	}
	for i := range n.Inputs[c.Input].Cables {
		if n.Inputs[c.Input].Cables[i].Cable == c.Cable {
			n.Inputs[c.Input].Cables[i].Multiplier = v
			return nil
		}
	}
	return fmt.Errorf("command: NodeMultiplierChange references cable %d not attached to that input", c.Cable.Value())
}

func (c *NodeMultiplierChange) TryMerge(other Command) bool {
	o, ok := other.(*NodeMultiplierChange)
	if !ok || o.Track != c.Track || o.ID != c.ID || o.Input != c.Input || o.Cable != c.Cable {
		return false
	}
	c.To = o.To
	return true
}
