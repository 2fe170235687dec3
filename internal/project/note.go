package project

import "github.com/cubedaw/engine/internal/units"

// Note is one note within a clip. Length is nonnegative, in song-time
// units; Pitch is a signed semitone offset from middle C; Velocity is
// in [0, 1].
type Note struct {
	Length   units.SongTime
	Pitch    int32
	Velocity float32
}

// Clamp returns the fields coerced into their documented ranges; used
// by commands that accept raw GUI input.
func (n Note) Clamp() Note {
	if n.Length < 0 {
		n.Length = 0
	}
	if n.Velocity < 0 {
		n.Velocity = 0
	}
	if n.Velocity > 1 {
		n.Velocity = 1
	}
	return n
}
