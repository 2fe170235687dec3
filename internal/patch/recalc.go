package patch

type visitState int

const (
	visitActive visitState = iota
	visitDone
)

type visitInfo struct {
	state visitState
	tag   NodeTag
}

// RecalculateTags recomputes every node and cable tag from scratch.
// builtin:input seeds Monophonic (it is always a source, so it is
// never itself the target of a backward walk). builtin:downmix and
// builtin:output each seed a fixed tag and then run a backward DFS
// over their own producer cables, tagging everything reachable with
// the carrying tag. A cycle among producers marks the closing cable
// Invalid and disconnects every node on the cycle; a producer already
// finalized under a different tag by an earlier pass marks only the
// cable connecting to it Invalid, without disturbing that node's own
// (independently correct) classification.
func (p *Patch) RecalculateTags() error {
	var input, output, downmix NodeID
	haveInput, haveOutput, haveDownmix := false, false, false

	var err error
	p.nodes.Each(func(nid NodeID, n *Node) {
		n.Tag = NodeTagDisconnected
		switch n.ResourceKey {
		case ResourceKeyInput:
			if haveInput {
				err = ErrMultipleSpecialNodes
			}
			input, haveInput = nid, true
		case ResourceKeyOutput:
			if haveOutput {
				err = ErrMultipleSpecialNodes
			}
			output, haveOutput = nid, true
		case ResourceKeyDownmix:
			if haveDownmix {
				err = ErrMultipleSpecialNodes
			}
			downmix, haveDownmix = nid, true
		}
	})
	if err != nil {
		return err
	}
	p.cables.Each(func(cid CableID, c *Cable) {
		c.Tag = CableTagDisconnected
	})

	visited := make(map[uint64]visitInfo)

	if haveInput {
		n, _ := p.Node(input)
		n.Tag = NodeTagMonophonic
		visited[input.Value()] = visitInfo{state: visitDone, tag: NodeTagMonophonic}
	}
	if haveDownmix {
		n, _ := p.Node(downmix)
		n.Tag = NodeTagDownmix
		p.propagateBackward(downmix, NodeTagMultiphonic, visited)
	}
	if haveOutput {
		n, _ := p.Node(output)
		n.Tag = NodeTagMonophonic
		p.propagateBackward(output, NodeTagMonophonic, visited)
	}
	return nil
}

// propagateBackward walks nodeID's input cables backward, tagging
// everything it can reach with carryTag, and returns the tag nodeID
// itself ends up with. If nodeID names a builtin node its own tag is
// left untouched (the caller pre-seeded it) and only read back.
func (p *Patch) propagateBackward(nodeID NodeID, carryTag NodeTag, visited map[uint64]visitInfo) NodeTag {
	key := nodeID.Value()
	visited[key] = visitInfo{state: visitActive}
	n, ok := p.Node(nodeID)
	if !ok {
		return NodeTagDisconnected
	}

	allOK := true
	for _, in := range n.Inputs {
		for _, ref := range in.Cables {
			c, ok := p.Cable(ref.Cable)
			if !ok {
				continue
			}
			producer := c.ProducerNode
			pkey := producer.Value()
			info, seen := visited[pkey]
			switch {
			case seen && info.state == visitActive:
				// Cycle: this edge closes a loop through the current
				// recursion stack.
				c.Tag = CableTagInvalid
				allOK = false
			case seen && info.state == visitDone:
				if effectiveOutputTag(info.tag) == carryTag {
					c.Tag = cableTagForOutput(carryTag)
				} else {
					// Independently-classified node under a different
					// tag; only this edge is invalid, not the producer.
					c.Tag = CableTagInvalid
				}
			default:
				childTag := p.propagateBackward(producer, carryTag, visited)
				if effectiveOutputTag(childTag) == carryTag {
					c.Tag = cableTagForOutput(carryTag)
				} else {
					c.Tag = CableTagInvalid
					allOK = false
				}
			}
		}
	}

	var finalTag NodeTag
	if isSpecialResourceKey(n.ResourceKey) {
		finalTag = n.Tag // pre-seeded by caller; never overwritten here
	} else if allOK {
		finalTag = carryTag
		n.Tag = finalTag
	} else {
		finalTag = NodeTagDisconnected
		n.Tag = finalTag
	}
	visited[key] = visitInfo{state: visitDone, tag: finalTag}
	return finalTag
}
