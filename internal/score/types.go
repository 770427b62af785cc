// Package score holds the beat-quantised score model (Song/Part/Note)
// and the line-oriented text format it is parsed from.
package score

import "math"

// DivsPerBeat is the beat-subdivision grid notes are quantised to.
const DivsPerBeat = 32

// C0 is the reference frequency for semitone offset 0.
const C0 = 16.3515978313

// Note is one beat-quantised event within a part.
type Note struct {
	Pitch    int     // signed semitone offset from C0
	Velocity float64 // 0..1
	Beat     int
	Division int // 0..DivsPerBeat-1
	Duration int // in divisions
}

// Freq returns the note's frequency in Hz.
func (n Note) Freq() float64 {
	return C0 * math.Pow(2, float64(n.Pitch)/12)
}

// StartSeconds returns the note's start time given beats-per-second.
func (n Note) StartSeconds(bps float64) float64 {
	return (float64(n.Beat) + float64(n.Division)/DivsPerBeat) / bps
}

// DurationSeconds returns the note's length given beats-per-second and
// the division grid (duration is in divisions, DivsPerBeat divisions
// per beat).
func (n Note) DurationSeconds(bps float64) float64 {
	return float64(n.Duration) / DivsPerBeat / bps
}

// Part is bound 1:1 to an instrument by index within Song.Parts.
type Part struct {
	Notes []Note // sorted by start time
}

// Song is a fully materialised score: tempo plus one part per
// instrument.
type Song struct {
	BPM         float64
	BeatsPerBar int
	Parts       []Part
}

// BPS returns beats per second.
func (s Song) BPS() float64 {
	return s.BPM / 60
}
