package main

import (
	"testing"

	"github.com/cubedaw/engine/internal/project"
	"github.com/cubedaw/engine/internal/units"
)

func TestDemoStateIsWellFormed(t *testing.T) {
	state := demoState(120, units.UnitsPerBeat)
	if err := state.Validate(); err != nil {
		t.Fatalf("demoState produced an invalid State: %v", err)
	}

	root := state.ForceTrack(state.Root)
	if root.Children.Len() != 1 {
		t.Fatalf("expected the root group track to have exactly one child, got %d", root.Children.Len())
	}

	sectionCount := 0
	state.Each(func(_ project.TrackID, tr *project.Track) {
		if tr.Variant == project.VariantSection {
			sectionCount++
		}
	})
	if sectionCount != 1 {
		t.Fatalf("expected exactly one section track, got %d", sectionCount)
	}
}
