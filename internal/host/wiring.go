package host

import (
	"github.com/cubedaw/engine/internal/patch"
	"github.com/cubedaw/engine/internal/registry"
)

// wiring locates a track's patch's job-boundary nodes: the builtin
// resource-keyed sentinels the scheduler feeds or reads directly,
// distinct from the tag-propagation roles RecalculateTags assigns the
// same builtin:input/output/downmix keys (see patch.RecalculateTags).
// A track's patch need not carry any of these — a track with no output
// node gets no track-level graph and passes its children's summed
// input straight through to its parent, and a track with no
// note-output/downmix pair skips note synthesis entirely.
type wiring struct {
	hasOutput bool
	output    patch.NodeID

	hasDownmix bool
	downmix    patch.NodeID

	hasTrackInput bool
	trackInput    patch.NodeID

	hasNoteOutput bool
	noteOutput    patch.NodeID
}

func deriveWiring(p *patch.Patch) wiring {
	var w wiring
	p.Nodes().Each(func(nid patch.NodeID, n *patch.Node) {
		switch n.ResourceKey {
		case patch.ResourceKeyOutput:
			w.output, w.hasOutput = nid, true
		case patch.ResourceKeyDownmix:
			w.downmix, w.hasDownmix = nid, true
		case registry.BuiltinTrackInput:
			w.trackInput, w.hasTrackInput = nid, true
		case registry.BuiltinNoteOutput:
			w.noteOutput, w.hasNoteOutput = nid, true
		}
	})
	return w
}

// trackGraphInput returns the node the track-level (TrackProcess/
// TrackGroup) graph should be fed the section/group's summed input
// through: the downmix node if the patch has per-note synthesis,
// otherwise a dedicated track-input node, otherwise nil (the track's
// graph is a pure generator and ignores its children's audio).
func (w wiring) trackGraphInput() *patch.NodeID {
	if w.hasDownmix {
		nid := w.downmix
		return &nid
	}
	if w.hasTrackInput {
		nid := w.trackInput
		return &nid
	}
	return nil
}

// noteGraphBoundary returns the per-note graph's (input, output) node
// pair, and whether the patch is wired for note synthesis at all.
func (w wiring) noteGraphBoundary() (in, out patch.NodeID, ok bool) {
	if !w.hasNoteOutput || !w.hasDownmix {
		return patch.NodeID{}, patch.NodeID{}, false
	}
	return w.noteOutput, w.downmix, true
}
