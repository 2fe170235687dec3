package command

import (
	"fmt"

	"github.com/cubedaw/engine/internal/project"
	"github.com/cubedaw/engine/internal/units"
)

// NoteAddOrRemove adds or removes a note within a clip (addressed by
// clip-relative start position).
type NoteAddOrRemove struct {
	Track     project.TrackID
	Clip      project.ClipID
	ID        project.NoteID
	Pos       units.SongTime
	IsRemoval bool
	strength  Strength

	data *project.Note
}

func NewNoteAdd(trackID project.TrackID, clipID project.ClipID, noteID project.NoteID, pos units.SongTime, note project.Note, strength Strength) *NoteAddOrRemove {
	return &NoteAddOrRemove{Track: trackID, Clip: clipID, ID: noteID, Pos: pos, IsRemoval: false, data: &note, strength: strength}
}

func NewNoteRemove(trackID project.TrackID, clipID project.ClipID, noteID project.NoteID, pos units.SongTime, strength Strength) *NoteAddOrRemove {
	return &NoteAddOrRemove{Track: trackID, Clip: clipID, ID: noteID, Pos: pos, IsRemoval: true, strength: strength}
}

func (c *NoteAddOrRemove) Strength() Strength { return c.strength }

func (c *NoteAddOrRemove) clip(s *project.State) (*project.Clip, error) {
	track, ok := s.Track(c.Track)
	if !ok {
		return nil, fmt.Errorf("command: NoteAddOrRemove references nonexistent track %d", c.Track.Value())
	}
	clip, ok := track.Clip(c.Clip)
	if !ok {
		return nil, fmt.Errorf("command: NoteAddOrRemove references nonexistent clip %d", c.Clip.Value())
	}
	return clip, nil
}

func (c *NoteAddOrRemove) Run(s *project.State, dir Direction) error {
	clip, err := c.clip(s)
	if err != nil {
		return err
	}
	doAdd := (dir == Execute) != c.IsRemoval
	if doAdd {
		note := c.data
		c.data = nil
		if err := clip.InsertNote(c.Pos, c.ID, *note); err != nil {
			c.data = note
			return err
		}
		return nil
	}
	_, note, ok := clip.RemoveNoteAt(c.Pos)
	if !ok {
		return fmt.Errorf("command: NoteAddOrRemove: no note at pos %d", c.Pos)
	}
	c.data = &note
	return nil
}

func (c *NoteAddOrRemove) TryMerge(Command) bool { return false }

// NoteMove relocates a note within its clip (or to another clip on the
// same or a different track). Overlap at the destination is a no-op.
type NoteMove struct {
	TrackFrom, TrackTo project.TrackID
	ClipFrom, ClipTo   project.ClipID
	StartPos           units.SongTime
	NewStartPos        units.SongTime
	strength           Strength
}

func NewNoteMoveSame(trackID project.TrackID, clipID project.ClipID, startPos, newStartPos units.SongTime, strength Strength) *NoteMove {
	return &NoteMove{TrackFrom: trackID, TrackTo: trackID, ClipFrom: clipID, ClipTo: clipID, StartPos: startPos, NewStartPos: newStartPos, strength: strength}
}

func NewNoteMove(trackFrom, trackTo project.TrackID, clipFrom, clipTo project.ClipID, startPos, newStartPos units.SongTime, strength Strength) *NoteMove {
	return &NoteMove{TrackFrom: trackFrom, TrackTo: trackTo, ClipFrom: clipFrom, ClipTo: clipTo, StartPos: startPos, NewStartPos: newStartPos, strength: strength}
}

func (c *NoteMove) Strength() Strength { return c.strength }

func (c *NoteMove) Run(s *project.State, dir Direction) error {
	trackFrom, clipFrom, trackTo, clipTo := c.TrackFrom, c.ClipFrom, c.TrackTo, c.ClipTo
	startPos, newStartPos := c.StartPos, c.NewStartPos
	if dir == Rollback {
		trackFrom, trackTo = trackTo, trackFrom
		clipFrom, clipTo = clipTo, clipFrom
		startPos, newStartPos = newStartPos, startPos
	}
	return moveNoteBetween(s, trackFrom, trackTo, clipFrom, clipTo, startPos, newStartPos)
}

func moveNoteBetween(s *project.State, trackFromID, trackToID project.TrackID, clipFromID, clipToID project.ClipID, startPos, newStartPos units.SongTime) error {
	trackFrom, ok := s.Track(trackFromID)
	if !ok {
		return fmt.Errorf("command: NoteMove references nonexistent track %d", trackFromID.Value())
	}
	clipFrom, ok := trackFrom.Clip(clipFromID)
	if !ok {
		return fmt.Errorf("command: NoteMove references nonexistent clip %d", clipFromID.Value())
	}
	nid, note, ok := clipFrom.RemoveNoteAt(startPos)
	if !ok {
		return fmt.Errorf("command: NoteMove: no note at pos %d", startPos)
	}

	var clipTo *project.Clip
	if trackFromID == trackToID && clipFromID == clipToID {
		clipTo = clipFrom
	} else {
		trackTo, ok := s.Track(trackToID)
		if !ok {
			_ = clipFrom.InsertNote(startPos, nid, note)
			return fmt.Errorf("command: NoteMove references nonexistent track %d", trackToID.Value())
		}
		clipTo, ok = trackTo.Clip(clipToID)
		if !ok {
			_ = clipFrom.InsertNote(startPos, nid, note)
			return fmt.Errorf("command: NoteMove references nonexistent clip %d", clipToID.Value())
		}
	}

	if err := clipTo.InsertNote(newStartPos, nid, note); err != nil {
		_ = clipFrom.InsertNote(startPos, nid, note)
		if err == project.ErrNoteOverlap || err == project.ErrNoteOutOfBounds {
			return ErrNoop
		}
		return err
	}
	return nil
}

func (c *NoteMove) TryMerge(other Command) bool {
	o, ok := other.(*NoteMove)
	if !ok || o.TrackFrom != c.TrackTo || o.ClipFrom != c.ClipTo || o.StartPos != c.NewStartPos {
		return false
	}
	c.TrackTo, c.ClipTo, c.NewStartPos = o.TrackTo, o.ClipTo, o.NewStartPos
	return true
}
