// Package fmforge ties the operator graph, instrument pool, score
// parser, and scheduler together into a playable or renderable engine.
package fmforge

import (
	"github.com/waveforge/fmforge/internal/biquad"
	"github.com/waveforge/fmforge/internal/graph"
	"github.com/waveforge/fmforge/internal/instrument"
	"github.com/waveforge/fmforge/internal/reverb"
	"github.com/waveforge/fmforge/internal/scheduler"
	"github.com/waveforge/fmforge/internal/score"
)

// Constants an embedder can rely on across the module.
const (
	Polyphony    = instrument.Polyphony  // voices per instrument
	NChannels    = graph.NChannels       // operator/feedback buses per voice
	Block        = instrument.Block      // samples per render block
	TimeQuantize = scheduler.TimeQuantize // samples dispatched per scheduler step
	DivsPerBeat  = score.DivsPerBeat     // beat-subdivision grid notes quantise to
	EQMaxPeaks   = biquad.MaxPeaks       // peaking bands an EQ may hold
	FDNLines     = reverb.Lines          // delay lines in the reverb network
)
