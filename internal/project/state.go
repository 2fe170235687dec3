// Package project is the immutable-between-commands project state: a
// tree of tracks, each owning a patch.Patch, section tracks
// additionally owning clips and notes.
//
// Grounded on the teacher's internal/model.Model (the single mutable
// struct the whole program reads/writes) and internal/project's
// selector-based navigation (Model.GetCurrentPhrasesData and friends),
// generalized from the tracker's fixed track/chain/phrase/row
// hierarchy to an arbitrary-depth track tree with graph-shaped patches
// per track.
package project

import (
	"errors"

	"github.com/cubedaw/engine/internal/id"
	"github.com/cubedaw/engine/internal/units"
)

// TrackKind, ClipKind, NoteKind are phantom markers for id.Id.
type TrackKind struct{}
type ClipKind struct{}
type NoteKind struct{}

type TrackID = id.Id[TrackKind]
type ClipID = id.Id[ClipKind]
type NoteID = id.Id[NoteKind]

var (
	// ErrRootNotPresent is returned by Validate if State.Root names a
	// track that isn't in State.Tracks.
	ErrRootNotPresent = errors.New("project: root track not present in State")
	// ErrDanglingChild is returned by Validate if a group track's child
	// set names a track that isn't in State.Tracks.
	ErrDanglingChild = errors.New("project: track references a nonexistent child track")
	// ErrTrackNotFound is returned by track-lookup operations.
	ErrTrackNotFound = errors.New("project: track not found")
)

// State is the project root: every track, keyed by id, the root track
// id, the tempo, and the song's time range. The sole source of truth
// both the GUI and the audio workers read; mutated only through
// internal/command.
type State struct {
	Tracks *id.Map[TrackKind, *Track]
	Root   TrackID
	BPM    float64
	Length units.SongTime
}

// New returns a State containing a single empty group track as Root.
func New(bpm float64) *State {
	s := &State{
		Tracks: id.NewMap[TrackKind, *Track](),
		BPM:    bpm,
	}
	root := id.Arbitrary[TrackKind]()
	s.Tracks.Set(root, NewGroupTrack())
	s.Root = root
	return s
}

// Track looks up a track by id.
func (s *State) Track(tid TrackID) (*Track, bool) { return s.Tracks.Get(tid) }

// ForceTrack panics if tid is absent — used where an invariant
// guarantees presence (matches the spec's force_get convention).
func (s *State) ForceTrack(tid TrackID) *Track { return s.Tracks.ForceGet(tid) }

// Each iterates every (id, *Track) pair in unspecified order.
func (s *State) Each(fn func(TrackID, *Track)) { s.Tracks.Each(fn) }

// Validate checks the invariants of §3: every track id referenced by
// any group track's child set, and the root id itself, is present in
// Tracks.
func (s *State) Validate() error {
	if !s.Tracks.Has(s.Root) {
		return ErrRootNotPresent
	}
	var err error
	s.Tracks.Each(func(_ TrackID, t *Track) {
		if err != nil || t.Variant != VariantGroup {
			return
		}
		t.Children.Each(func(child TrackID) {
			if err == nil && !s.Tracks.Has(child) {
				err = ErrDanglingChild
			}
		})
	})
	return err
}

// ParentOf returns the group track that lists tid as a child, if any.
// O(tracks); used by commands and UI navigation, never the hot audio
// path.
func (s *State) ParentOf(tid TrackID) (TrackID, bool) {
	var parent TrackID
	found := false
	s.Tracks.Each(func(pid TrackID, t *Track) {
		if found || t.Variant != VariantGroup {
			return
		}
		if t.Children.Has(tid) {
			parent, found = pid, true
		}
	})
	return parent, found
}
