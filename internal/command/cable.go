package command

import (
	"fmt"

	"github.com/cubedaw/engine/internal/patch"
	"github.com/cubedaw/engine/internal/project"
)

// cableSnapshot captures everything needed to restore a removed cable
// exactly, including its position within the consumer's cable list.
type cableSnapshot struct {
	producer     patch.NodeID
	producerPort int
	consumer     patch.NodeID
	consumerPort int
	consumerPos  int
	multiplier   float32
}

// CableAddOrRemove adds or removes a cable from a track's patch.
type CableAddOrRemove struct {
	Track     project.TrackID
	ID        patch.CableID
	IsRemoval bool
	strength  Strength

	data *cableSnapshot
}

// NewCableAdd returns a command that wires producer's outputIdx-th
// output into consumer's inputIdx-th input.
func NewCableAdd(trackID project.TrackID, cableID patch.CableID, producer patch.NodeID, outputIdx int, consumer patch.NodeID, inputIdx int, multiplier float32, strength Strength) *CableAddOrRemove {
	return &CableAddOrRemove{
		Track: trackID, ID: cableID, IsRemoval: false, strength: strength,
		data: &cableSnapshot{producer: producer, producerPort: outputIdx, consumer: consumer, consumerPort: inputIdx, consumerPos: -1, multiplier: multiplier},
	}
}

// NewCableRemove returns a command that removes a cable.
func NewCableRemove(trackID project.TrackID, cableID patch.CableID, strength Strength) *CableAddOrRemove {
	return &CableAddOrRemove{Track: trackID, ID: cableID, IsRemoval: true, strength: strength}
}

func (c *CableAddOrRemove) Strength() Strength { return c.strength }

func (c *CableAddOrRemove) Run(s *project.State, dir Direction) error {
	track, ok := s.Track(c.Track)
	if !ok {
		return fmt.Errorf("command: CableAddOrRemove references nonexistent track %d", c.Track.Value())
	}
	doAdd := (dir == Execute) != c.IsRemoval
	if doAdd {
		snap := c.data
		c.data = nil
		if err := track.Patch.InsertCable(c.ID, snap.producer, snap.producerPort, snap.consumer, snap.consumerPort, snap.consumerPos, snap.multiplier); err != nil {
			c.data = snap
			return err
		}
	} else {
		cb, ok := track.Patch.Cable(c.ID)
		if !ok {
			return nil
		}
		var mult float32
		if n, ok := track.Patch.Node(cb.ConsumerNode); ok {
			for _, ref := range n.Inputs[cb.ConsumerPort].Cables {
				if ref.Cable == c.ID {
					mult = ref.Multiplier
				}
			}
		}
		snap := &cableSnapshot{
			producer: cb.ProducerNode, producerPort: cb.ProducerPort,
			consumer: cb.ConsumerNode, consumerPort: cb.ConsumerPort,
			consumerPos: cb.ConsumerPos, multiplier: mult,
		}
		if err := track.Patch.RemoveCable(c.ID); err != nil {
			return err
		}
		c.data = snap
	}
	return track.Patch.RecalculateTags()
}

func (c *CableAddOrRemove) TryMerge(Command) bool { return false }
