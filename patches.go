package fmforge

import (
	"github.com/waveforge/fmforge/internal/envelope"
	"github.com/waveforge/fmforge/internal/graph"
)

// DefaultPatch returns a simple two-operator carrier/modulator FM
// voice: operator 0 is the carrier (sent to the output bus), operator
// 1 modulates it at twice its frequency.
func DefaultPatch() Patch {
	return Patch{
		{
			Wave:      graph.Sine,
			Transpose: 1,
			Envelope:  envelope.ADSR{Attack: 0.005, Decay: 0.12, Sustain: 0.75, Release: 0.2},
			Receives:  []graph.Receive{{Source: 1, Level: 1.6, Type: graph.Modulate}},
			Sends:     []graph.Send{{Dest: 0, Level: 1}},
		},
		{
			Wave:      graph.Sine,
			Transpose: 2,
			Envelope:  envelope.ADSR{Attack: 0.001, Decay: 0.3, Sustain: 0.4, Release: 0.2},
			Sends:     []graph.Send{{Dest: 1, Level: 1}},
		},
	}
}

// DefaultPatches returns n copies of DefaultPatch, for songs whose
// parts should all use the same voice.
func DefaultPatches(n int) []Patch {
	patches := make([]Patch, n)
	for i := range patches {
		patches[i] = DefaultPatch()
	}
	return patches
}
