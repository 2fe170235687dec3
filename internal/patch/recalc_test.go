package patch

import (
	"testing"
)

func tag(t *testing.T, p *Patch, n NodeID) NodeTag {
	t.Helper()
	node, ok := p.Node(n)
	if !ok {
		t.Fatalf("node %d not found", n.Value())
	}
	return node.Tag
}

func cableTag(t *testing.T, p *Patch, c CableID) CableTag {
	t.Helper()
	cable, ok := p.Cable(c)
	if !ok {
		t.Fatalf("cable %d not found", c.Value())
	}
	return cable.Tag
}

// input -> filter -> downmix -> effect -> output, plus a disconnected
// constant node. Mirrors the linear chain in the testable-properties
// scenario for tag propagation.
func TestRecalculateTagsLinearChain(t *testing.T) {
	p := New()
	input := p.AddNode(ResourceKeyInput, nil, 0, 1)
	filter := p.AddNode("effect:filter", nil, 1, 1)
	downmix := p.AddNode(ResourceKeyDownmix, nil, 1, 1)
	effect := p.AddNode("effect:gain", nil, 1, 1)
	output := p.AddNode(ResourceKeyOutput, nil, 1, 0)
	unrelated := p.AddNode("source:constant", nil, 0, 1)

	c1, err := p.AddCable(input, 0, filter, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := p.AddCable(filter, 0, downmix, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	c3, err := p.AddCable(downmix, 0, effect, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.AddCable(effect, 0, output, 0, 1)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.RecalculateTags(); err != nil {
		t.Fatalf("RecalculateTags: %v", err)
	}

	if got := tag(t, p, filter); got != NodeTagMultiphonic {
		t.Errorf("filter tag = %v, want multiphonic", got)
	}
	if got := tag(t, p, effect); got != NodeTagMonophonic {
		t.Errorf("effect tag = %v, want monophonic", got)
	}
	if got := tag(t, p, downmix); got != NodeTagDownmix {
		t.Errorf("downmix tag = %v, want downmix", got)
	}
	if got := tag(t, p, unrelated); got != NodeTagDisconnected {
		t.Errorf("unrelated tag = %v, want disconnected", got)
	}
	if got := cableTag(t, p, c2); got != CableTagMultiphonic {
		t.Errorf("filter->downmix cable = %v, want multiphonic", got)
	}
	if got := cableTag(t, p, c3); got != CableTagMonophonic {
		t.Errorf("downmix->effect cable = %v, want monophonic", got)
	}
	_ = c1
}

// A -> B -> C -> A (cycle), forced in via the real public AddCable —
// per spec.md §4.E insertion is pure bookkeeping and never rejects a
// cycle — with C also feeding output. Mirrors spec.md §8 scenario 4:
// after the last edge is inserted, ProspectiveInsert would have
// reported it Invalid, but since it was forced in anyway,
// RecalculateTags is what marks the back-edge cable Invalid and
// disconnects every node on the cycle.
func TestRecalculateTagsForcedCycleMarksBackEdgeInvalid(t *testing.T) {
	p := New()
	a := p.AddNode("effect:a", nil, 1, 1)
	b := p.AddNode("effect:b", nil, 1, 1)
	c := p.AddNode("effect:c", nil, 1, 1)
	output := p.AddNode(ResourceKeyOutput, nil, 1, 0)

	if _, err := p.AddCable(a, 0, b, 0, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := p.AddCable(b, 0, c, 0, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := p.AddCable(c, 0, output, 0, 1); err != nil {
		t.Fatal(err)
	}

	// ProspectiveInsert still reports this would close a loop...
	if _, err := p.ProspectiveInsert(c, a); err != ErrWouldCycle {
		t.Fatalf("ProspectiveInsert: expected ErrWouldCycle, got %v", err)
	}
	// ...but AddCable (the real, mutating path) inserts it anyway.
	closingID, err := p.AddCable(c, 0, a, 0, 1)
	if err != nil {
		t.Fatalf("AddCable: expected the forced-in cable to be accepted, got %v", err)
	}

	if err := p.RecalculateTags(); err != nil {
		t.Fatalf("RecalculateTags: %v", err)
	}
	for _, n := range []NodeID{a, b, c} {
		if got := tag(t, p, n); got != NodeTagDisconnected {
			t.Errorf("cyclic node tag = %v, want disconnected", got)
		}
	}
	if got := cableTag(t, p, closingID); got != CableTagInvalid {
		t.Errorf("closing cable tag = %v, want invalid", got)
	}
	if got := tag(t, p, output); got != NodeTagMonophonic {
		t.Errorf("output tag = %v, want monophonic (fixed, independent of its unresolved producer)", got)
	}
}

func TestRecalculateTagsRejectsMultipleSpecialNodes(t *testing.T) {
	p := New()
	p.AddNode(ResourceKeyOutput, nil, 1, 0)
	p.AddNode(ResourceKeyOutput, nil, 1, 0)
	if err := p.RecalculateTags(); err != ErrMultipleSpecialNodes {
		t.Fatalf("expected ErrMultipleSpecialNodes, got %v", err)
	}
}
