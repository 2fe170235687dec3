package project

import (
	"errors"
	"sort"

	"github.com/cubedaw/engine/internal/id"
	"github.com/cubedaw/engine/internal/units"
)

var (
	// ErrNoteOutOfBounds is returned when a note would extend past its
	// clip's length.
	ErrNoteOutOfBounds = errors.New("project: note extends beyond clip length")
	// ErrNoteOverlap is returned when NoteStart already holds a note and
	// the caller did not ask to replace it.
	ErrNoteOverlap = errors.New("project: note start position already occupied")
)

// Clip is a placed-on-timeline container of notes. Length is Range.Length();
// notes are keyed by their start position within the clip (i.e. relative
// to Range.Start, per the source's own clip-local addressing).
type Clip struct {
	Range Range
	notes map[units.SongTime]NoteID
	byID  *id.Map[NoteKind, Note]
}

// NewClip returns an empty clip spanning r.
func NewClip(r Range) *Clip {
	return &Clip{
		Range: r,
		notes: make(map[units.SongTime]NoteID),
		byID:  id.NewMap[NoteKind, Note](),
	}
}

// AddNote inserts note at clip-relative start position pos, returning
// its freshly minted id. Fails if the note would run past the clip's
// length or another note already starts at pos.
func (c *Clip) AddNote(pos units.SongTime, n Note) (NoteID, error) {
	if pos+n.Length > c.Range.Length() {
		return id.Invalid[NoteKind](), ErrNoteOutOfBounds
	}
	if _, ok := c.notes[pos]; ok {
		return id.Invalid[NoteKind](), ErrNoteOverlap
	}
	nid := id.Arbitrary[NoteKind]()
	c.notes[pos] = nid
	c.byID.Set(nid, n)
	return nid, nil
}

// InsertNote inserts a note with an id already chosen by the caller
// (used by NoteAddOrRemove's rollback path, which must restore the
// original id).
func (c *Clip) InsertNote(pos units.SongTime, nid NoteID, n Note) error {
	if pos+n.Length > c.Range.Length() {
		return ErrNoteOutOfBounds
	}
	if _, ok := c.notes[pos]; ok {
		return ErrNoteOverlap
	}
	c.notes[pos] = nid
	c.byID.Set(nid, n)
	return nil
}

// RemoveNoteAt deletes and returns the note starting at pos.
func (c *Clip) RemoveNoteAt(pos units.SongTime) (NoteID, Note, bool) {
	nid, ok := c.notes[pos]
	if !ok {
		return id.Invalid[NoteKind](), Note{}, false
	}
	n, _ := c.byID.Get(nid)
	delete(c.notes, pos)
	c.byID.Delete(nid)
	return nid, n, true
}

// PositionOf returns the clip-relative start position of nid, if present.
func (c *Clip) PositionOf(nid NoteID) (units.SongTime, bool) {
	for pos, id2 := range c.notes {
		if id2 == nid {
			return pos, true
		}
	}
	return 0, false
}

// Note looks up a note by id.
func (c *Clip) Note(nid NoteID) (Note, bool) { return c.byID.Get(nid) }

// NotePositions returns every (start position, note id) pair, sorted by
// position (ascending), for deterministic iteration (scheduling, UI).
func (c *Clip) NotePositions() []NotePos {
	out := make([]NotePos, 0, len(c.notes))
	for pos, nid := range c.notes {
		out = append(out, NotePos{Pos: pos, ID: nid})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pos < out[j].Pos })
	return out
}

// NotePos pairs a clip-relative start position with a note id.
type NotePos struct {
	Pos units.SongTime
	ID  NoteID
}

// NotesIn returns every note (absolute-range-clipped to r) that
// intersects the given absolute song-time range, where clipStart is
// this clip's absolute start position.
func (c *Clip) NotesIn(clipStart units.SongTime, r Range) []NotePos {
	var out []NotePos
	for _, np := range c.NotePositions() {
		n, _ := c.byID.Get(np.ID)
		absStart := clipStart + np.Pos
		noteRange := Range{Start: absStart, End: absStart + n.Length}
		if noteRange.Overlaps(r) {
			out = append(out, np)
		}
	}
	return out
}
