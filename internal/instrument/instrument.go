// Package instrument implements a bank of identical FM voices sharing
// one operator graph, plus the EQ/reverb post-processing chain and the
// block-sized hold buffer an instrument publishes for visualisation.
package instrument

import (
	"math"
	"math/cmplx"
	"sync/atomic"

	"github.com/waveforge/fmforge/internal/biquad"
	"github.com/waveforge/fmforge/internal/graph"
	"github.com/waveforge/fmforge/internal/reverb"
)

// Polyphony is the fixed voice-pool size per instrument.
const Polyphony = 16

// Block is the hold-buffer / block-generation size in samples.
const Block = 1024

type snapshot struct {
	samples  []float64
	spectrum []float64
}

// Instrument is a pool of Polyphony voices sharing one operator graph,
// followed by an EQ and an optional FDN reverb.
type Instrument struct {
	Operators []graph.Operator
	Voices    [Polyphony]*graph.Voice

	EQ            *biquad.EQ
	Reverb        *reverb.FDN
	ReverbEnabled bool

	sampleRate float64
	block      []float64 // audio-thread scratch, accumulated then filtered in place
	fftScratch []complex128

	snaps   [2]snapshot
	current atomic.Pointer[snapshot]
}

// New validates the operator graph and builds an instrument pool at
// the given sample rate. Graph errors (out-of-range send/receive
// indices) are returned here, at construction time, never at render
// time.
func New(ops []graph.Operator, sampleRate float64) (*Instrument, error) {
	if err := graph.Validate(ops, graph.NChannels); err != nil {
		return nil, err
	}
	ins := &Instrument{
		Operators:  ops,
		sampleRate: sampleRate,
		EQ:         biquad.NewEQ(),
		Reverb:     reverb.New(sampleRate),
		block:      make([]float64, Block),
		fftScratch: make([]complex128, Block),
	}
	for i := range ins.Voices {
		ins.Voices[i] = graph.NewVoice(len(ops))
	}
	ins.EQ.Bake(sampleRate)
	for i := range ins.snaps {
		ins.snaps[i] = snapshot{
			samples:  make([]float64, Block),
			spectrum: make([]float64, Block/2+1),
		}
	}
	ins.current.Store(&ins.snaps[0])
	return ins, nil
}

// RenderBlock generates one block of output starting at absolute time
// t0, sums all voices, runs the EQ (and reverb, if enabled), clamps to
// avoid propagating NaN/overflow into the device, publishes the block
// as the new hold buffer + spectrum snapshot, and returns the filtered
// samples. Must not allocate: all scratch buffers are pre-sized in New.
func (ins *Instrument) RenderBlock(t0, dt float64) []float64 {
	for i := range ins.block {
		ins.block[i] = 0
	}
	for _, v := range ins.Voices {
		for k := 0; k < Block; k++ {
			t := t0 + float64(k)*dt
			ins.block[k] += v.RenderSample(ins.Operators, t, dt)
		}
	}
	for k := range ins.block {
		x := ins.EQ.Run(ins.block[k])
		if ins.ReverbEnabled {
			x = ins.Reverb.Run(x)
		}
		ins.block[k] = clamp(x, -1, 1)
	}
	ins.publish()
	return ins.block
}

// publish copies the freshly generated block into whichever of the two
// preallocated snapshots is not currently exposed, computes its
// spectrum, and atomically swaps it in. No allocation occurs here.
func (ins *Instrument) publish() {
	cur := ins.current.Load()
	next := &ins.snaps[0]
	if cur == &ins.snaps[0] {
		next = &ins.snaps[1]
	}
	copy(next.samples, ins.block)
	ins.computeSpectrum(next)
	ins.current.Store(next)
}

func (ins *Instrument) computeSpectrum(s *snapshot) {
	for i := 0; i < Block; i++ {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(Block-1)))
		ins.fftScratch[i] = complex(s.samples[i]*w, 0)
	}
	fft(ins.fftScratch)
	for i := 0; i <= Block/2; i++ {
		s.spectrum[i] = cmplx.Abs(ins.fftScratch[i])
	}
}

// MaxRelease returns the longest release stage across the instrument's
// operators, used by the scheduler to estimate when a triggered voice
// has fully decayed and can be reclaimed.
func (ins *Instrument) MaxRelease() float64 {
	var max float64
	for _, op := range ins.Operators {
		if op.Envelope.Release > max {
			max = op.Envelope.Release
		}
	}
	return max
}

// ActiveVoiceCount returns the number of voices that have been assigned
// a note (Note.Freq > 0). A voice stays counted after its note and
// release have finished, so this is not an end-of-playback test; the
// scheduler tracks voice expiry itself for that.
func (ins *Instrument) ActiveVoiceCount() int {
	n := 0
	for _, v := range ins.Voices {
		if v.Active() {
			n++
		}
	}
	return n
}

// HoldBuffer returns the most recently published block of post-EQ/
// reverb samples, for visualisation. Safe to call from any goroutine:
// each publish fills the snapshot not currently exposed and then swaps
// it in, so the returned slice holds a complete block. The two
// snapshots are reused alternately, so a slice kept across two further
// publishes is overwritten in place.
func (ins *Instrument) HoldBuffer() []float64 {
	return ins.current.Load().samples
}

// Spectrum returns the magnitude spectrum (Block/2+1 bins) of the most
// recently published hold buffer.
func (ins *Instrument) Spectrum() []float64 {
	return ins.current.Load().spectrum
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
