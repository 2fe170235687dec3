package patch

import "github.com/cubedaw/engine/internal/id"

// AddCable wires producer's outputIdx-th output into consumer's
// inputIdx-th input, appended at the end of that input's cable list,
// with the given gain multiplier. Rejects a cable naming a nonexistent
// node/port; a cable that closes a cycle is accepted (see
// ProspectiveInsert for the advisory check) — RecalculateTags marks the
// back-edge CableTagInvalid rather than the insertion itself failing.
func (p *Patch) AddCable(producer NodeID, outputIdx int, consumer NodeID, inputIdx int, multiplier float32) (CableID, error) {
	cid := id.Arbitrary[CableKind]()
	if err := p.InsertCable(cid, producer, outputIdx, consumer, inputIdx, -1, multiplier); err != nil {
		return id.Invalid[CableKind](), err
	}
	return cid, nil
}

// InsertCable wires producer/consumer under a caller-chosen cable id,
// at a caller-chosen position within the consumer input's cable list
// (or appended, if pos < 0). Used directly by AddCable and by the
// command layer's CableAddOrRemove, which must restore both the exact
// id and the exact ConsumerPos a removed cable previously held on
// rollback. Insertion is pure list bookkeeping (spec.md §4.E): it does
// not reject cycles — a cable that closes one is inserted like any
// other, and RecalculateTags subsequently marks the forced-in back-edge
// CableTagInvalid rather than Monophonic/Multiphonic.
func (p *Patch) InsertCable(cid CableID, producer NodeID, outputIdx int, consumer NodeID, inputIdx int, pos int, multiplier float32) error {
	pn, ok := p.Node(producer)
	if !ok {
		return ErrNodeNotFound
	}
	cn, ok := p.Node(consumer)
	if !ok {
		return ErrNodeNotFound
	}
	if outputIdx < 0 || outputIdx >= len(pn.Outputs) {
		return ErrPortOutOfRange
	}
	if inputIdx < 0 || inputIdx >= len(cn.Inputs) {
		return ErrPortOutOfRange
	}

	in := &cn.Inputs[inputIdx]
	if pos < 0 || pos > len(in.Cables) {
		pos = len(in.Cables)
	}
	cable := &Cable{
		ProducerNode: producer,
		ProducerPort: outputIdx,
		ConsumerNode: consumer,
		ConsumerPort: inputIdx,
		ConsumerPos:  pos,
		Tag:          CableTagDisconnected,
	}
	p.cables.Set(cid, cable)
	pn.Outputs[outputIdx].Cables = append(pn.Outputs[outputIdx].Cables, cid)
	in.Cables = append(in.Cables, CableRef{})
	copy(in.Cables[pos+1:], in.Cables[pos:])
	in.Cables[pos] = CableRef{Cable: cid, Multiplier: multiplier}
	for i := pos + 1; i < len(in.Cables); i++ {
		c2, ok := p.Cable(in.Cables[i].Cable)
		if ok {
			c2.ConsumerPos = i
		}
	}
	return nil
}

// RemoveCable detaches and deletes a cable, fixing up the ConsumerPos
// of every cable that shifted down in its input's list.
func (p *Patch) RemoveCable(cid CableID) error {
	c, ok := p.Cable(cid)
	if !ok {
		return ErrCableNotFound
	}
	pn, ok := p.Node(c.ProducerNode)
	if ok {
		out := &pn.Outputs[c.ProducerPort]
		out.Cables = removeCableID(out.Cables, cid)
	}
	cn, ok := p.Node(c.ConsumerNode)
	if ok {
		in := &cn.Inputs[c.ConsumerPort]
		idx := -1
		for i, ref := range in.Cables {
			if ref.Cable == cid {
				idx = i
				break
			}
		}
		if idx >= 0 {
			in.Cables = append(in.Cables[:idx], in.Cables[idx+1:]...)
			for i := range in.Cables {
				c2, ok := p.Cable(in.Cables[i].Cable)
				if ok {
					c2.ConsumerPos = i
				}
			}
		}
	}
	p.cables.Delete(cid)
	return nil
}

func removeCableID(s []CableID, target CableID) []CableID {
	for i, c := range s {
		if c == target {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// cableTagForOutput is the CableTag a node of the given tag presents on
// its outgoing cables.
func cableTagForOutput(t NodeTag) CableTag {
	switch t {
	case NodeTagMultiphonic:
		return CableTagMultiphonic
	case NodeTagMonophonic, NodeTagDownmix:
		return CableTagMonophonic
	default:
		return CableTagDisconnected
	}
}

// cableTagForInput is the CableTag a node of the given tag requires on
// its incoming cables.
func cableTagForInput(t NodeTag) CableTag {
	switch t {
	case NodeTagMultiphonic, NodeTagDownmix:
		return CableTagMultiphonic
	case NodeTagMonophonic:
		return CableTagMonophonic
	default:
		return CableTagDisconnected
	}
}

// cableTagBetween is the node_tag_for_output x node_tag_for_input
// lookup table: a consumer that doesn't care yet (Disconnected)
// accepts anything; otherwise the producer and consumer must agree.
func cableTagBetween(producerTag, consumerTag NodeTag) (CableTag, bool) {
	out := cableTagForOutput(producerTag)
	in := cableTagForInput(consumerTag)
	if in == CableTagDisconnected || out == in {
		return out, true
	}
	return CableTagDisconnected, false
}

// ProspectiveInsert reports what CableTag a cable from producer to
// consumer would carry if added now, without mutating the patch.
// Returns ErrWouldCycle if the consumer can already reach the producer
// (adding the cable would close a loop); a tag incompatibility is not
// an error, it is reported as CableTagInvalid so the caller (e.g. a
// patch editor UI) can preview the rejection.
func (p *Patch) ProspectiveInsert(producer NodeID, consumer NodeID) (CableTag, error) {
	pn, ok := p.Node(producer)
	if !ok {
		return CableTagDisconnected, ErrNodeNotFound
	}
	cn, ok := p.Node(consumer)
	if !ok {
		return CableTagDisconnected, ErrNodeNotFound
	}
	if p.wouldCycle(producer, consumer) {
		return CableTagInvalid, ErrWouldCycle
	}
	tag, ok := cableTagBetween(pn.Tag, cn.Tag)
	if !ok {
		return CableTagInvalid, nil
	}
	return tag, nil
}

// wouldCycle reports whether consumer can already reach producer by
// following existing cables forward, i.e. whether producer -> consumer
// would close a loop. Plain BFS; patch graphs are small (per-track).
func (p *Patch) wouldCycle(producer, consumer NodeID) bool {
	if producer == consumer {
		return true
	}
	seen := id.NewSet[NodeKind]()
	queue := []NodeID{consumer}
	seen.Add(consumer)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == producer {
			return true
		}
		n, ok := p.Node(cur)
		if !ok {
			continue
		}
		for _, out := range n.Outputs {
			for _, cid := range out.Cables {
				c, ok := p.Cable(cid)
				if !ok {
					continue
				}
				if !seen.Has(c.ConsumerNode) {
					seen.Add(c.ConsumerNode)
					queue = append(queue, c.ConsumerNode)
				}
			}
		}
	}
	return false
}
