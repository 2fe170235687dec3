// Package units converts between song-time units, beats, and samples.
//
// Grounded on the teacher's internal/ticks package, which sums DT
// (delta-time) values across phrases/chains/tracks to derive playback
// length; here the same "integer subdivision of a beat" idea is
// generalized from per-row ticks to a fixed-resolution continuous
// timeline.
package units

// UnitsPerBeat is the fixed integer number of song-time units per
// musical beat. 960 gives exact integer positions for eighth-note
// triplets (320) and 32nd notes (120) simultaneously.
const UnitsPerBeat = 960

// SongTime is a position or duration in song-time units.
type SongTime int64

// FramesToUnits converts an audio-frame length (in samples) at the
// given sample rate and BPM into song-time units, per spec §4.H step 3:
//
//	end_pos = start_pos + buffer_size/sample_rate/60 * bpm * UNITS_PER_BEAT
//
// The result is floored; FramesToUnitsFrac additionally returns the
// fractional remainder for UI interpolation between frames.
func FramesToUnits(frames, sampleRate int, bpm float64) SongTime {
	whole, _ := FramesToUnitsFrac(frames, sampleRate, bpm)
	return whole
}

// FramesToUnitsFrac returns both the floored unit delta and the
// fractional part of the boundary, letting the caller (host scheduler)
// expose sub-unit position to the UI without losing precision across
// frames.
func FramesToUnitsFrac(frames, sampleRate int, bpm float64) (SongTime, float64) {
	if sampleRate <= 0 {
		return 0, 0
	}
	exact := float64(frames) / float64(sampleRate) / 60.0 * bpm * UnitsPerBeat
	whole := SongTime(exact)
	frac := exact - float64(whole)
	return whole, frac
}

// UnitsToSamples converts a song-time duration into a sample count at
// the given sample rate and BPM. Inverse of FramesToUnits (up to
// flooring).
func UnitsToSamples(units SongTime, sampleRate int, bpm float64) int {
	if bpm <= 0 {
		return 0
	}
	seconds := float64(units) / UnitsPerBeat / bpm * 60.0
	return int(seconds * float64(sampleRate))
}
