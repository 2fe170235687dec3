package patch

import "fmt"

// Validate checks structural invariants that RecalculateTags assumes:
// at most one node per builtin resource key, and every cable's port
// indices still within range of its endpoints' current port counts
// (a node's port count can shrink underneath a stale cable if a
// command misapplies a resize). Does not itself recompute tags; call
// RecalculateTags first if up-to-date tags are also required.
func (p *Patch) Validate() error {
	seen := map[string]bool{}
	var err error
	p.nodes.Each(func(nid NodeID, n *Node) {
		if isSpecialResourceKey(n.ResourceKey) {
			if seen[n.ResourceKey] {
				err = ErrMultipleSpecialNodes
			}
			seen[n.ResourceKey] = true
		}
	})
	if err != nil {
		return err
	}
	var portErr error
	p.cables.Each(func(cid CableID, c *Cable) {
		if portErr != nil {
			return
		}
		pn, ok := p.Node(c.ProducerNode)
		if !ok {
			portErr = fmt.Errorf("%w: cable %d producer", ErrNodeNotFound, cid.Value())
			return
		}
		cn, ok := p.Node(c.ConsumerNode)
		if !ok {
			portErr = fmt.Errorf("%w: cable %d consumer", ErrNodeNotFound, cid.Value())
			return
		}
		if c.ProducerPort < 0 || c.ProducerPort >= len(pn.Outputs) {
			portErr = fmt.Errorf("%w: cable %d producer port", ErrPortOutOfRange, cid.Value())
			return
		}
		if c.ConsumerPort < 0 || c.ConsumerPort >= len(cn.Inputs) {
			portErr = fmt.Errorf("%w: cable %d consumer port", ErrPortOutOfRange, cid.Value())
		}
	})
	return portErr
}
