package command

import (
	"github.com/cubedaw/engine/internal/project"
)

// TrackAddOrRemove adds or removes a track, always keeping the
// parent's child set in sync (§4.D). A single implementation backs
// both directions by flipping on direction XOR is_removal.
type TrackAddOrRemove struct {
	ID        project.TrackID
	Parent    project.TrackID // id.Invalid() if this track has no parent (the root)
	IsRemoval bool
	strength  Strength

	// data holds the track to (re)insert: populated up front for an
	// addition, captured lazily on first removal. Cleared (nilled) once
	// consumed by the opposite half, mirroring the source's Option.take()
	// discipline so Run stays idempotent within one direction.
	data *project.Track
}

// NewTrackAdd returns a command that inserts track under parent (or no
// parent, if !parent.IsValid()).
func NewTrackAdd(id project.TrackID, parent project.TrackID, track *project.Track, strength Strength) *TrackAddOrRemove {
	return &TrackAddOrRemove{ID: id, Parent: parent, IsRemoval: false, data: track, strength: strength}
}

// NewTrackRemove returns a command that removes the track id (child of
// parent, or no parent if !parent.IsValid()).
func NewTrackRemove(id project.TrackID, parent project.TrackID, strength Strength) *TrackAddOrRemove {
	return &TrackAddOrRemove{ID: id, Parent: parent, IsRemoval: true, strength: strength}
}

func (c *TrackAddOrRemove) Strength() Strength { return c.strength }

func (c *TrackAddOrRemove) Run(s *project.State, dir Direction) error {
	doAdd := (dir == Execute) != c.IsRemoval
	if doAdd {
		return c.doAdd(s)
	}
	return c.doRemove(s)
}

func (c *TrackAddOrRemove) doAdd(s *project.State) error {
	track := c.data
	c.data = nil
	s.Tracks.Set(c.ID, track)
	if c.Parent.IsValid() {
		parent, ok := s.Track(c.Parent)
		if ok {
			parent.Children.Add(c.ID)
		}
	}
	return nil
}

func (c *TrackAddOrRemove) doRemove(s *project.State) error {
	track, ok := s.Track(c.ID)
	if !ok {
		return nil
	}
	c.data = track
	s.Tracks.Delete(c.ID)
	if c.Parent.IsValid() {
		if parent, ok := s.Track(c.Parent); ok {
			parent.Children.Remove(c.ID)
		}
	}
	return nil
}

// TryMerge never merges: two distinct track add/removes are never the
// same logical edit (unlike a drag's many NodeBiasChange calls).
func (c *TrackAddOrRemove) TryMerge(Command) bool { return false }
