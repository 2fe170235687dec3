package main

import (
	"github.com/cubedaw/engine/internal/id"
	"github.com/cubedaw/engine/internal/patch"
	"github.com/cubedaw/engine/internal/project"
	"github.com/cubedaw/engine/internal/registry"
	"github.com/cubedaw/engine/internal/units"
)

// demoState builds a minimal, fully wired project: a root group track
// holding one section track, itself carrying a single clip with one
// sustained note through a note_output -> downmix -> output patch.
// Grounded on the same wiring internal/host/host_test.go's
// sectionPatch helper exercises; cmd/cubedawd needs a project it can
// actually render without a save-file loader of its own (out of scope
// per spec.md's non-goals), so it mints one directly rather than
// reading one from disk.
func demoState(bpm float64, noteLength units.SongTime) *project.State {
	state := project.New(bpm)

	section := project.NewSectionTrack()
	wireSectionPatch(section.Patch)

	clip := project.NewClip(project.NewRange(0, noteLength*4))
	note := project.Note{Length: noteLength, Pitch: 69, Velocity: 0.8}
	if _, err := clip.AddNote(0, note); err != nil {
		panic(err) // a length-4 clip always fits a length-1 note at offset 0
	}

	sectionID := id.Arbitrary[project.TrackKind]()
	state.Tracks.Set(sectionID, section)
	if _, err := section.AddClip(0, clip); err != nil {
		panic(err)
	}

	root := state.ForceTrack(state.Root)
	root.Children.Add(sectionID)

	return state
}

func wireSectionPatch(p *patch.Patch) {
	noteOut := p.AddNode(registry.BuiltinNoteOutput, nil, 0, 3)
	downmix := p.AddNode(patch.ResourceKeyDownmix, nil, 1, 1)
	output := p.AddNode(patch.ResourceKeyOutput, nil, 1, 0)
	if _, err := p.AddCable(noteOut, 0, downmix, 0, 1); err != nil {
		panic(err)
	}
	if _, err := p.AddCable(downmix, 0, output, 0, 1); err != nil {
		panic(err)
	}
	if err := p.RecalculateTags(); err != nil {
		panic(err)
	}
}
