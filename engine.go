package fmforge

import (
	"errors"
	"math"
	"sync/atomic"

	"github.com/waveforge/fmforge/internal/graph"
	"github.com/waveforge/fmforge/internal/instrument"
	"github.com/waveforge/fmforge/internal/scheduler"
	"github.com/waveforge/fmforge/internal/score"
)

// Patch is an instrument's operator graph, loaded once and shared by
// every voice that instrument's pool allocates.
type Patch = []graph.Operator

// Engine owns one Instrument per Song part and the Scheduler that
// dispatches notes onto them, summing every part's block into a single
// mono stream each quantum, scaled by its master volume.
//
// playing and paused are read on the audio callback goroutine and
// written from whatever goroutine calls Play/Pause/Resume/Stop, so both
// are atomics; volumeBits stores a float64's bit pattern in an
// atomic.Uint64 for the same lock-free-read reason, following the
// effects package's gain-storage idiom.
type Engine struct {
	sched       *scheduler.Scheduler
	instruments []*instrument.Instrument
	sampleRate  int
	mixed       []float64

	playing    atomic.Bool
	paused     atomic.Bool
	volumeBits atomic.Uint64
}

// NewEngine builds one instrument per song part from patches (patches
// must have the same length as song.Parts) and wires a scheduler over
// them.
func NewEngine(song *score.Song, patches []Patch, sampleRate int) (*Engine, error) {
	if len(patches) != len(song.Parts) {
		return nil, errors.New("fmforge: one patch is required per song part")
	}
	instruments := make([]*instrument.Instrument, len(patches))
	for i, p := range patches {
		ins, err := instrument.New(p, float64(sampleRate))
		if err != nil {
			return nil, err
		}
		instruments[i] = ins
	}
	sched, err := scheduler.New(song, instruments, float64(sampleRate))
	if err != nil {
		return nil, err
	}
	e := &Engine{
		sched:       sched,
		instruments: instruments,
		sampleRate:  sampleRate,
		mixed:       make([]float64, Block),
	}
	e.playing.Store(true)
	e.volumeBits.Store(math.Float64bits(1))
	return e, nil
}

// Play resumes dispatch after Stop; new engines start out playing, so
// this is only needed after an explicit Stop.
func (e *Engine) Play() {
	e.playing.Store(true)
}

// Stop halts playback until Play is called: NextQuantum returns nil
// from the next call on, as if the song had ended.
func (e *Engine) Stop() {
	e.playing.Store(false)
}

// Pause silences NextQuantum's output without advancing the scheduler
// or dispatching notes, leaving playback resumable exactly where it
// left off.
func (e *Engine) Pause() {
	e.paused.Store(true)
}

// Resume undoes Pause.
func (e *Engine) Resume() {
	e.paused.Store(false)
}

// Paused reports whether the engine is currently paused.
func (e *Engine) Paused() bool {
	return e.paused.Load()
}

// SetVolume sets the master volume scalar applied to every sample
// NextQuantum produces. Negative values clamp to 0; volume is
// otherwise unbounded, matching the teacher's SetMasterVolume.
func (e *Engine) SetVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	e.volumeBits.Store(math.Float64bits(volume))
}

// Volume returns the current master volume scalar. 1.0 is unity.
func (e *Engine) Volume() float64 {
	return math.Float64frombits(e.volumeBits.Load())
}

// Watch exposes the scheduler's lifecycle event channel.
func (e *Engine) Watch() <-chan scheduler.Event {
	return e.sched.Watch()
}

// Done reports whether every part has finished and every voice has
// decayed to silence.
func (e *Engine) Done() bool {
	return e.sched.Done()
}

// Instrument returns the instrument rendering song part i, for
// visualisation (hold buffer / spectrum) or per-instrument EQ/reverb
// configuration.
func (e *Engine) Instrument(i int) *instrument.Instrument {
	return e.instruments[i]
}

// NextQuantum dispatches due notes, renders one block per instrument,
// and returns their sum scaled by Volume and clamped to [-1, 1] as a
// single mono block of Block samples. Returns nil once Stop has been
// called or playback has ended, satisfying device.Source.
//
// While paused, the scheduler is not advanced at all — no dispatch, no
// rendering, no playhead movement — and NextQuantum returns a block of
// silence, so playback resumes exactly where Pause left it.
func (e *Engine) NextQuantum() []float64 {
	if !e.playing.Load() || e.sched.Done() {
		return nil
	}
	if e.paused.Load() {
		for i := range e.mixed {
			e.mixed[i] = 0
		}
		return e.mixed
	}
	volume := e.Volume()
	blocks := e.sched.NextQuantum()
	for i := range e.mixed {
		var sum float64
		for _, b := range blocks {
			sum += b[i]
		}
		e.mixed[i] = clamp(sum*volume, -1, 1)
	}
	return e.mixed
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
