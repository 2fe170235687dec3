package project

import (
	"testing"

	"github.com/cubedaw/engine/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateNewIsValid(t *testing.T) {
	s := New(120)
	require.NoError(t, s.Validate())
	root, ok := s.Track(s.Root)
	require.True(t, ok)
	assert.Equal(t, VariantGroup, root.Variant)
}

func TestStateDanglingChildInvalid(t *testing.T) {
	s := New(120)
	root, _ := s.Track(s.Root)
	bogus := TrackID{}
	root.Children.Add(bogus)
	assert.ErrorIs(t, s.Validate(), ErrDanglingChild)
}

func TestTrackVariantAccessors(t *testing.T) {
	sec := NewSectionTrack()
	_, err := sec.Group()
	assert.ErrorIs(t, err, ErrWrongVariant)
	_, err = sec.Section()
	assert.NoError(t, err)

	grp := NewGroupTrack()
	_, err = grp.Section()
	assert.ErrorIs(t, err, ErrWrongVariant)
}

func TestClipAddAndNoteBounds(t *testing.T) {
	track := NewSectionTrack()
	clip := NewClip(NewRange(0, 4*units.UnitsPerBeat))
	cid, err := track.AddClip(0, clip)
	require.NoError(t, err)

	_, err = clip.AddNote(0, Note{Length: units.UnitsPerBeat, Velocity: 1})
	require.NoError(t, err)

	_, err = clip.AddNote(3*units.UnitsPerBeat, Note{Length: 2 * units.UnitsPerBeat})
	assert.ErrorIs(t, err, ErrNoteOutOfBounds)

	got, ok := track.Clip(cid)
	require.True(t, ok)
	assert.Equal(t, clip, got)
}

func TestClipOverlapRejected(t *testing.T) {
	track := NewSectionTrack()
	_, err := track.AddClip(0, NewClip(NewRange(0, units.UnitsPerBeat)))
	require.NoError(t, err)
	_, err = track.AddClip(units.UnitsPerBeat/2, NewClip(NewRange(0, units.UnitsPerBeat)))
	assert.ErrorIs(t, err, ErrClipOverlap)
}

func TestMoveClipOverlapIsNoop(t *testing.T) {
	track := NewSectionTrack()
	_, err := track.AddClip(0, NewClip(NewRange(0, units.UnitsPerBeat)))
	require.NoError(t, err)
	_, err = track.AddClip(2*units.UnitsPerBeat, NewClip(NewRange(0, units.UnitsPerBeat)))
	require.NoError(t, err)

	err = track.MoveClip(0, units.UnitsPerBeat+units.UnitsPerBeat/2)
	assert.ErrorIs(t, err, ErrClipOverlap)
	// original clip untouched
	_, ok := track.clipsByStart[0]
	assert.True(t, ok)
}

func TestRangeIntersect(t *testing.T) {
	a := NewRange(0, 10)
	b := NewRange(5, 15)
	got, ok := a.Intersect(b)
	require.True(t, ok)
	assert.Equal(t, NewRange(5, 10), got)

	_, ok = NewRange(0, 5).Intersect(NewRange(5, 10))
	assert.False(t, ok)
}
