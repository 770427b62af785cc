package biquad

import "fmt"

// MaxPeaks is the maximum number of peaking bands an EQ may hold.
const MaxPeaks = 8

// PeakBand describes one peaking-EQ band before baking.
type PeakBand struct {
	Hz     float64
	Q      float64
	GainDB float64
}

// EQ holds an optional lowpass, optional highpass, up to MaxPeaks
// peaking bands, and an output gain. Bake() materializes these into an
// ordered biquad chain; Run() applies the chain in order and scales by
// gain.
type EQ struct {
	HasLowpass  bool
	LowpassHz   float64
	LowpassQ    float64
	HasHighpass bool
	HighpassHz  float64
	HighpassQ   float64
	Peaks       []PeakBand
	Gain        float64

	chain []Biquad
}

// NewEQ returns an EQ with unity gain and no bands.
func NewEQ() *EQ {
	return &EQ{Gain: 1}
}

// AddPeak appends a peaking band. Adding a 9th peak is a no-op; it
// returns an error the caller may log but which is not fatal.
func (eq *EQ) AddPeak(hz, q, gainDB float64) error {
	if len(eq.Peaks) >= MaxPeaks {
		return fmt.Errorf("eq: peak band limit (%d) reached, dropping hz=%.1f", MaxPeaks, hz)
	}
	eq.Peaks = append(eq.Peaks, PeakBand{Hz: hz, Q: q, GainDB: gainDB})
	return nil
}

// Bake materializes the configured bands into an ordered biquad chain:
// lowpass, highpass, then peaks in declaration order. Must be called
// whenever the band configuration changes, before Run.
func (eq *EQ) Bake(sampleRate float64) {
	eq.chain = eq.chain[:0]
	if eq.HasLowpass {
		eq.chain = append(eq.chain, Lowpass(eq.LowpassHz, eq.LowpassQ, sampleRate))
	}
	if eq.HasHighpass {
		eq.chain = append(eq.chain, Highpass(eq.HighpassHz, eq.HighpassQ, sampleRate))
	}
	for _, p := range eq.Peaks {
		eq.chain = append(eq.chain, Peaking(p.Hz, p.Q, p.GainDB, sampleRate))
	}
}

// Run applies the baked biquad chain to one sample, then multiplies by
// gain.
func (eq *EQ) Run(x float64) float64 {
	for i := range eq.chain {
		x = eq.chain[i].Process(x)
	}
	return x * eq.Gain
}

// Reset clears all filter state without discarding coefficients.
func (eq *EQ) Reset() {
	for i := range eq.chain {
		eq.chain[i].Reset()
	}
}
