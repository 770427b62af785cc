// Package scheduler dispatches a quantised score against a bank of
// instruments: one quantum of samples at a time, stealing voices when
// an instrument's polyphony is exhausted and reporting lifecycle
// events to anything watching.
package scheduler

import (
	"errors"

	"github.com/waveforge/fmforge/internal/graph"
	"github.com/waveforge/fmforge/internal/instrument"
	"github.com/waveforge/fmforge/internal/score"
)

// TimeQuantize is the fixed number of samples dispatched and rendered
// per scheduler step, matching the instrument block size so every
// quantum produces exactly one hold-buffer publish per instrument.
const TimeQuantize = instrument.Block

// EventKind identifies scheduler lifecycle events delivered via Watch.
type EventKind int

const (
	// EventNoteOn fires when a note is dispatched to a voice.
	EventNoteOn EventKind = iota
	// EventPlaybackEnded fires once every part has exhausted its notes
	// and every voice has decayed to silence.
	EventPlaybackEnded
)

// Event carries a scheduler lifecycle notification.
type Event struct {
	Kind EventKind
	Part int
	Note score.Note
}

// Scheduler walks a Song's parts forward in fixed TimeQuantize steps,
// dispatching due notes onto each part's instrument voice pool and
// rendering one block per instrument per step.
type Scheduler struct {
	song        *score.Song
	instruments []*instrument.Instrument
	sampleRate  float64

	head      float64 // seconds, start of the next quantum
	noteIdx   []int   // next undispatched note index, per part
	expiresAt [][]float64 // per part, per voice: time the voice becomes reclaimable

	events chan Event
	ended  bool
}

// New builds a scheduler for song against one instrument per part. The
// two slices must be the same length: instruments[i] renders song's
// Parts[i].
func New(song *score.Song, instruments []*instrument.Instrument, sampleRate float64) (*Scheduler, error) {
	if len(instruments) != len(song.Parts) {
		return nil, errors.New("scheduler: one instrument is required per part")
	}
	if sampleRate <= 0 {
		return nil, errors.New("scheduler: sampleRate must be positive")
	}
	s := &Scheduler{
		song:        song,
		instruments: instruments,
		sampleRate:  sampleRate,
		noteIdx:     make([]int, len(song.Parts)),
		expiresAt:   make([][]float64, len(song.Parts)),
		events:      make(chan Event, 64),
	}
	for i, ins := range instruments {
		s.expiresAt[i] = make([]float64, len(ins.Voices))
	}
	return s, nil
}

// Watch returns the channel lifecycle events are delivered on. Events
// that find the channel's 64-event buffer full are dropped, never
// waited on. The channel is closed right after EventPlaybackEnded is
// emitted.
func (s *Scheduler) Watch() <-chan Event {
	return s.events
}

// Done reports whether every part has finished dispatching and every
// voice has decayed to silence.
func (s *Scheduler) Done() bool {
	return s.ended
}

// Head returns the absolute time, in seconds, the next quantum begins
// at.
func (s *Scheduler) Head() float64 {
	return s.head
}

// NextQuantum dispatches any notes due within the upcoming quantum,
// renders exactly TimeQuantize samples per instrument, and advances
// the time cursor monotonically by one quantum. The returned slice has
// one block per instrument, in Song.Parts order.
func (s *Scheduler) NextQuantum() [][]float64 {
	dt := 1.0 / s.sampleRate
	quantumSeconds := float64(TimeQuantize) * dt
	quantumEnd := s.head + quantumSeconds

	for part := range s.song.Parts {
		s.dispatchDue(part, quantumEnd)
	}

	out := make([][]float64, len(s.instruments))
	for i, ins := range s.instruments {
		out[i] = ins.RenderBlock(s.head, dt)
	}

	s.head = quantumEnd
	s.checkEnded()
	return out
}

// dispatchDue triggers every note in part whose quantised start falls
// before quantumEnd. The note's exact start/duration are corrected to
// the quantised dispatch head: error = head - note.start_seconds;
// voice.note.start = head; voice.note.duration = note.duration_seconds
// - error. This keeps the release landing near the musical intent
// despite the note having been dispatched a little late.
func (s *Scheduler) dispatchDue(part int, quantumEnd float64) {
	notes := s.song.Parts[part].Notes
	bps := s.song.BPS()
	ins := s.instruments[part]

	for s.noteIdx[part] < len(notes) {
		n := notes[s.noteIdx[part]]
		start := n.StartSeconds(bps)
		if start >= quantumEnd {
			break
		}
		freq := n.Freq()
		voiceIdx := pickVoice(ins, s.expiresAt[part], s.head, freq)

		errorSeconds := s.head - start
		duration := n.DurationSeconds(bps) - errorSeconds
		if duration < 0 {
			duration = 0
		}
		ins.Voices[voiceIdx].Reset(graph.Note{
			Freq:     freq,
			Velocity: n.Velocity,
			Start:    s.head,
			Duration: duration,
		})
		s.expiresAt[part][voiceIdx] = s.head + duration + ins.MaxRelease()

		s.emit(Event{Kind: EventNoteOn, Part: part, Note: n})
		s.noteIdx[part]++
	}
}

// pickVoice implements the stealing policy: re-trigger a voice already
// playing the same frequency; else take one that has decayed past its
// expiry (including one never triggered, whose expiry defaults to
// zero); else steal whichever voice's note finishes soonest — the
// least audible one.
func pickVoice(ins *instrument.Instrument, expiresAt []float64, now, freq float64) int {
	for i, v := range ins.Voices {
		if v.Note.Freq == freq {
			return i
		}
	}
	for i, exp := range expiresAt {
		if now >= exp {
			return i
		}
	}
	least := 0
	for i := 1; i < len(expiresAt); i++ {
		if expiresAt[i] < expiresAt[least] {
			least = i
		}
	}
	return least
}

// checkEnded marks the scheduler done once every part has dispatched
// its last note and every voice has decayed past its expiry. Voices
// stay reported as active by the render graph long after they've gone
// silent (Reset is the only place Freq is cleared), so expiry tracked
// here, not instrument.ActiveVoiceCount, is the source of truth for
// playback having ended.
func (s *Scheduler) checkEnded() {
	if s.ended {
		return
	}
	for part := range s.song.Parts {
		if s.noteIdx[part] < len(s.song.Parts[part].Notes) {
			return
		}
	}
	for _, expiresAt := range s.expiresAt {
		for _, exp := range expiresAt {
			if s.head < exp {
				return
			}
		}
	}
	s.ended = true
	s.emit(Event{Kind: EventPlaybackEnded})
	close(s.events)
}

func (s *Scheduler) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		// A slow or absent watcher must never stall playback.
	}
}
