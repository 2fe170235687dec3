package command

import (
	"fmt"

	"github.com/cubedaw/engine/internal/project"
	"github.com/cubedaw/engine/internal/units"
)

// ClipAddOrRemove adds or removes a clip on a section track.
type ClipAddOrRemove struct {
	Track     project.TrackID
	ID        project.ClipID
	Start     units.SongTime
	IsRemoval bool
	strength  Strength

	data *project.Clip
}

func NewClipAdd(trackID project.TrackID, clipID project.ClipID, start units.SongTime, clip *project.Clip, strength Strength) *ClipAddOrRemove {
	return &ClipAddOrRemove{Track: trackID, ID: clipID, Start: start, IsRemoval: false, data: clip, strength: strength}
}

func NewClipRemove(trackID project.TrackID, clipID project.ClipID, start units.SongTime, strength Strength) *ClipAddOrRemove {
	return &ClipAddOrRemove{Track: trackID, ID: clipID, Start: start, IsRemoval: true, strength: strength}
}

func (c *ClipAddOrRemove) Strength() Strength { return c.strength }

func (c *ClipAddOrRemove) Run(s *project.State, dir Direction) error {
	track, ok := s.Track(c.Track)
	if !ok {
		return fmt.Errorf("command: ClipAddOrRemove references nonexistent track %d", c.Track.Value())
	}
	doAdd := (dir == Execute) != c.IsRemoval
	if doAdd {
		clip := c.data
		c.data = nil
		if err := track.InsertClip(c.ID, c.Start, clip); err != nil {
			c.data = clip
			return err
		}
		return nil
	}
	_, clip, ok := track.RemoveClipAt(c.Start)
	if !ok {
		return fmt.Errorf("command: ClipAddOrRemove: no clip at start %d on track %d", c.Start, c.Track.Value())
	}
	c.data = clip
	return nil
}

func (c *ClipAddOrRemove) TryMerge(Command) bool { return false }

// ClipMove relocates a clip, either within one track or between two
// tracks. Overlap at the destination is a no-op (resolved Open
// Question in SPEC_FULL §9), never a panic.
type ClipMove struct {
	TrackFrom, TrackTo project.TrackID
	StartPos           units.SongTime
	NewStartPos        units.SongTime
	strength           Strength
}

// NewClipMoveSame returns a same-track move.
func NewClipMoveSame(trackID project.TrackID, startPos, newStartPos units.SongTime, strength Strength) *ClipMove {
	return &ClipMove{TrackFrom: trackID, TrackTo: trackID, StartPos: startPos, NewStartPos: newStartPos, strength: strength}
}

// NewClipMove returns a cross-track move.
func NewClipMove(trackFrom, trackTo project.TrackID, startPos, newStartPos units.SongTime, strength Strength) *ClipMove {
	return &ClipMove{TrackFrom: trackFrom, TrackTo: trackTo, StartPos: startPos, NewStartPos: newStartPos, strength: strength}
}

func (c *ClipMove) Strength() Strength { return c.strength }

func (c *ClipMove) Run(s *project.State, dir Direction) error {
	from, to, startPos, newStartPos := c.TrackFrom, c.TrackTo, c.StartPos, c.NewStartPos
	if dir == Rollback {
		from, to = to, from
		startPos, newStartPos = newStartPos, startPos
	}
	return moveClipBetween(s, from, to, startPos, newStartPos)
}

func moveClipBetween(s *project.State, from, to project.TrackID, startPos, newStartPos units.SongTime) error {
	trackFrom, ok := s.Track(from)
	if !ok {
		return fmt.Errorf("command: ClipMove references nonexistent track %d", from.Value())
	}
	if from == to {
		if err := trackFrom.MoveClip(startPos, newStartPos); err != nil {
			if err == project.ErrClipOverlap {
				return ErrNoop
			}
			return err
		}
		return nil
	}
	trackTo, ok := s.Track(to)
	if !ok {
		return fmt.Errorf("command: ClipMove references nonexistent track %d", to.Value())
	}
	cid, clip, ok := trackFrom.RemoveClipAt(startPos)
	if !ok {
		return fmt.Errorf("command: ClipMove: no clip at start %d on track %d", startPos, from.Value())
	}
	if err := trackTo.InsertClip(cid, newStartPos, clip); err != nil {
		// put it back where it was, the move failed
		clip.Range = clip.Range.WithStart(startPos)
		_ = trackFrom.InsertClip(cid, startPos, clip)
		if err == project.ErrClipOverlap {
			return ErrNoop
		}
		return err
	}
	return nil
}

func (c *ClipMove) TryMerge(other Command) bool {
	o, ok := other.(*ClipMove)
	if !ok || o.TrackFrom != c.TrackTo || o.StartPos != c.NewStartPos {
		return false
	}
	c.TrackTo = o.TrackTo
	c.NewStartPos = o.NewStartPos
	return true
}
