package project

import "github.com/cubedaw/engine/internal/units"

// Range is a half-open song-time interval [Start, End).
type Range struct {
	Start units.SongTime
	End   units.SongTime
}

// NewRange returns the range [start, end). Panics if end < start, per
// the source's own Range::new assertion.
func NewRange(start, end units.SongTime) Range {
	if end < start {
		panic("project: Range end before start")
	}
	return Range{Start: start, End: end}
}

// Length returns End-Start.
func (r Range) Length() units.SongTime { return r.End - r.Start }

// Contains reports whether t falls within [Start, End).
func (r Range) Contains(t units.SongTime) bool { return t >= r.Start && t < r.End }

// Overlaps reports whether r and other share any song-time.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Intersect returns the overlapping sub-range of r and other, and
// whether one exists.
func (r Range) Intersect(other Range) (Range, bool) {
	start := r.Start
	if other.Start > start {
		start = other.Start
	}
	end := r.End
	if other.End < end {
		end = other.End
	}
	if end <= start {
		return Range{}, false
	}
	return Range{Start: start, End: end}, true
}

// WithStart returns r shifted to a new start position, keeping length.
func (r Range) WithStart(start units.SongTime) Range {
	return Range{Start: start, End: start + r.Length()}
}
