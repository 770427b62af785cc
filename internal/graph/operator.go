// Package graph implements the per-voice FM operator graph: a static
// operator description, a phase-accurate oscillator per node, and the
// one-frame-delayed channel bus that lets the graph be cyclic in its
// algebraic definition while remaining an acyclic recurrence in time.
package graph

import (
	"fmt"

	"github.com/waveforge/fmforge/internal/envelope"
)

// Wave selects an operator's oscillator shape.
type Wave int

const (
	Sine Wave = iota
	Square
	Triangle
	Sawtooth
	Noise
)

// RecvType distinguishes how a receive's accumulated value is applied
// to the destination operator's phase. VIBRATO is semantically
// identical to NORMAL; the tag exists so a renderer can tell the two
// apart for display purposes.
type RecvType int

const (
	Normal RecvType = iota
	Modulate
	Vibrato
)

// Receive describes one fan-in edge: Source names the operator whose
// bus is read (0 is the shared output/operator-0 bus), Level scales
// the contribution, and Type selects MODULATE semantics.
type Receive struct {
	Source int
	Level  float64
	Type   RecvType
}

// Send describes one fan-out edge: Dest names the bus written to.
// Dest 0 is the shared output bus.
type Send struct {
	Dest  int
	Level float64
}

// Operator is a static, immutable-during-playback description of one
// FM graph node.
type Operator struct {
	Wave      Wave
	Transpose float64
	Fixed     bool
	Envelope  envelope.ADSR
	Receives  []Receive
	Sends     []Send
}

// Validate checks that every receive/send index names a bus within
// [0, numBuses) — graph construction errors are detected here, at
// instrument construction time, not at render time.
func Validate(ops []Operator, numBuses int) error {
	for i, op := range ops {
		for _, r := range op.Receives {
			if r.Source < 0 || r.Source >= numBuses {
				return fmt.Errorf("graph: operator %d receives from out-of-range bus %d (numBuses=%d)", i, r.Source, numBuses)
			}
		}
		for _, s := range op.Sends {
			if s.Dest < 0 || s.Dest >= numBuses {
				return fmt.Errorf("graph: operator %d sends to out-of-range bus %d (numBuses=%d)", i, s.Dest, numBuses)
			}
		}
	}
	return nil
}
