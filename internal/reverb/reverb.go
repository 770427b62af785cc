// Package reverb implements a 4-line feedback-delay-network (FDN)
// reverb with Hadamard mixing and per-line lowpass damping, consuming
// one sample at a time.
package reverb

import "github.com/waveforge/fmforge/internal/biquad"

// Lines is the fixed number of delay lines in the network.
const Lines = 4

// defaultLengths are mutually coprime, chosen for diffusion; all but
// 3385 (5*677) are prime.
var defaultLengths = [Lines]int{3041, 3385, 4481, 5477}

var defaultInGain = [Lines]float64{0.4, 0.3, 0.2, 0.2}
var defaultOutGain = [Lines]float64{0.5, 0.5, 0.3, 0.1}
var defaultFeedback = [Lines]float64{0.83, 0.9, 0.93, 0.85}

// hadamard is the 4x4 Hadamard matrix normalized by 1/sqrt(4).
var hadamard = [Lines][Lines]float64{
	{0.5, 0.5, 0.5, 0.5},
	{0.5, -0.5, 0.5, -0.5},
	{0.5, 0.5, -0.5, -0.5},
	{0.5, -0.5, -0.5, 0.5},
}

type line struct {
	buf  []float64
	pos  int
	damp biquad.Biquad
}

// FDN is a 4-line feedback-delay-network reverb.
type FDN struct {
	lines    [Lines]line
	inGain   [Lines]float64
	outGain  [Lines]float64
	feedback [Lines]float64
	Mix      float64 // 0 = fully dry, 1 = fully wet
}

// New builds an FDN reverb with the default line lengths, gains, and a
// damping cutoff around 5.6kHz on each feedback path.
func New(sampleRate float64) *FDN {
	r := &FDN{
		inGain:   defaultInGain,
		outGain:  defaultOutGain,
		feedback: defaultFeedback,
		Mix:      0.3,
	}
	for i := 0; i < Lines; i++ {
		r.lines[i] = line{
			buf:  make([]float64, defaultLengths[i]),
			damp: biquad.Lowpass(5600, 0.707, sampleRate),
		}
	}
	return r
}

// Run processes one dry sample and returns the mixed wet/dry output.
func (r *FDN) Run(dry float64) float64 {
	var y [Lines]float64
	for i := 0; i < Lines; i++ {
		y[i] = r.lines[i].buf[r.lines[i].pos]
	}

	var wet float64
	for i := 0; i < Lines; i++ {
		wet += y[i] * r.outGain[i]
	}

	var fb [Lines]float64
	for i := 0; i < Lines; i++ {
		var sum float64
		for j := 0; j < Lines; j++ {
			sum += hadamard[i][j] * y[j]
		}
		fb[i] = r.feedback[i] * sum
		fb[i] = r.lines[i].damp.Process(fb[i])
	}

	for i := 0; i < Lines; i++ {
		l := &r.lines[i]
		l.buf[l.pos] = fb[i] + dry*r.inGain[i]
		l.pos++
		if l.pos >= len(l.buf) {
			l.pos = 0
		}
	}

	return r.Mix*wet + (1-r.Mix)*dry
}

// Reset clears all delay line and damping-filter state.
func (r *FDN) Reset() {
	for i := range r.lines {
		l := &r.lines[i]
		for j := range l.buf {
			l.buf[j] = 0
		}
		l.pos = 0
		l.damp.Reset()
	}
}
