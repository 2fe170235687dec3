package project

import (
	"errors"
	"sort"

	"github.com/cubedaw/engine/internal/id"
	"github.com/cubedaw/engine/internal/patch"
	"github.com/cubedaw/engine/internal/units"
)

// TrackVariant distinguishes a track's inner kind.
type TrackVariant int

const (
	VariantSection TrackVariant = iota
	VariantGroup
)

var (
	// ErrWrongVariant is returned by Section()/Group() when called on a
	// track of the other variant. Sentinel error, no wrapping library —
	// matches the teacher's plain-errors.New style throughout.
	ErrWrongVariant = errors.New("project: track is not the requested variant")
	// ErrClipOverlap is returned when a clip placement would overlap an
	// existing clip on the same track.
	ErrClipOverlap = errors.New("project: clip overlaps an existing clip on this track")
)

// Track is one vertex of the track tree: every track owns a Patch
// (its per-track signal graph) and is either a SectionTrack (leaf,
// owns clips/notes) or a GroupTrack (owns child track ids).
type Track struct {
	Patch   *patch.Patch
	Variant TrackVariant

	// Children holds child track ids for a GroupTrack. Always empty for
	// a SectionTrack.
	Children *id.Set[TrackKind]

	// clips holds this SectionTrack's placed clips, keyed by start
	// position, plus the clip records themselves. Always nil for a
	// GroupTrack.
	clipsByStart map[units.SongTime]ClipID
	clipsByID    *id.Map[ClipKind, *Clip]
}

// NewSectionTrack returns an empty section track (no clips).
func NewSectionTrack() *Track {
	return &Track{
		Patch:        patch.New(),
		Variant:      VariantSection,
		clipsByStart: make(map[units.SongTime]ClipID),
		clipsByID:    id.NewMap[ClipKind, *Clip](),
	}
}

// NewGroupTrack returns an empty group track (no children).
func NewGroupTrack() *Track {
	return &Track{
		Patch:    patch.New(),
		Variant:  VariantGroup,
		Children: id.NewSet[TrackKind](),
	}
}

// Section returns t's section-track view, or ErrWrongVariant.
func (t *Track) Section() (*Track, error) {
	if t.Variant != VariantSection {
		return nil, ErrWrongVariant
	}
	return t, nil
}

// Group returns t's group-track view, or ErrWrongVariant.
func (t *Track) Group() (*Track, error) {
	if t.Variant != VariantGroup {
		return nil, ErrWrongVariant
	}
	return t, nil
}

// AddClip places c at start within this section track, returning its
// freshly minted id. Fails (ErrClipOverlap) if it would overlap an
// existing clip.
func (t *Track) AddClip(start units.SongTime, c *Clip) (ClipID, error) {
	cid := id.Arbitrary[ClipKind]()
	if err := t.InsertClip(cid, start, c); err != nil {
		return id.Invalid[ClipKind](), err
	}
	return cid, nil
}

// InsertClip places c at start under a caller-chosen id (used by
// ClipAddOrRemove's rollback, which must restore the original id).
func (t *Track) InsertClip(cid ClipID, start units.SongTime, c *Clip) error {
	if t.Variant != VariantSection {
		return ErrWrongVariant
	}
	r := c.Range.WithStart(start)
	for other := range t.clipsByStart {
		otherClip, _ := t.clipsByID.Get(t.clipsByStart[other])
		if r.Overlaps(otherClip.Range.WithStart(other)) {
			return ErrClipOverlap
		}
	}
	c.Range = r
	t.clipsByStart[start] = cid
	t.clipsByID.Set(cid, c)
	return nil
}

// RemoveClipAt deletes and returns the clip starting at start.
func (t *Track) RemoveClipAt(start units.SongTime) (ClipID, *Clip, bool) {
	cid, ok := t.clipsByStart[start]
	if !ok {
		return id.Invalid[ClipKind](), nil, false
	}
	c, _ := t.clipsByID.Get(cid)
	delete(t.clipsByStart, start)
	t.clipsByID.Delete(cid)
	return cid, c, true
}

// MoveClip relocates the clip starting at from to newStart, failing
// (no-op) if that would produce an overlap. Per SPEC_FULL's resolution
// of the NodeMove/SectionMove open question: overlap means the command
// is a no-op, never a panic.
func (t *Track) MoveClip(from, newStart units.SongTime) error {
	cid, ok := t.clipsByStart[from]
	if !ok {
		return errors.New("project: no clip at given start position")
	}
	c, _ := t.clipsByID.Get(cid)
	candidate := c.Range.WithStart(newStart)
	for start, other := range t.clipsByStart {
		if start == from {
			continue
		}
		otherClip, _ := t.clipsByID.Get(other)
		if candidate.Overlaps(otherClip.Range.WithStart(start)) {
			return ErrClipOverlap
		}
	}
	delete(t.clipsByStart, from)
	c.Range = candidate
	t.clipsByStart[newStart] = cid
	return nil
}

// Clip looks up a clip by id.
func (t *Track) Clip(cid ClipID) (*Clip, bool) { return t.clipsByID.Get(cid) }

// StartOf returns the absolute start position of cid, if present.
func (t *Track) StartOf(cid ClipID) (units.SongTime, bool) {
	for start, id2 := range t.clipsByStart {
		if id2 == cid {
			return start, true
		}
	}
	return 0, false
}

// ClipStart pairs an absolute start position with a clip id.
type ClipStart struct {
	Start units.SongTime
	ID    ClipID
}

// ClipsSorted returns every clip placement ordered by start position,
// for deterministic scheduling/UI iteration.
func (t *Track) ClipsSorted() []ClipStart {
	out := make([]ClipStart, 0, len(t.clipsByStart))
	for start, cid := range t.clipsByStart {
		out = append(out, ClipStart{Start: start, ID: cid})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// ClipsIn returns every clip placement whose range intersects r.
func (t *Track) ClipsIn(r Range) []ClipStart {
	var out []ClipStart
	for _, cs := range t.ClipsSorted() {
		c, _ := t.clipsByID.Get(cs.ID)
		if c.Range.Overlaps(r) {
			out = append(out, cs)
		}
	}
	return out
}
