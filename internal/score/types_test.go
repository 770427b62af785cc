package score

import (
	"math"
	"testing"
)

func TestFreqAtC0(t *testing.T) {
	n := Note{Pitch: 0}
	if got := n.Freq(); math.Abs(got-C0) > 1e-9 {
		t.Fatalf("expected Freq(0) == C0 (%v), got %v", C0, got)
	}
}

func TestFreqOctaveDoubles(t *testing.T) {
	n := Note{Pitch: 12}
	if got, want := n.Freq(), 2*C0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected one octave up to double C0 (%v), got %v", want, got)
	}
}

func TestBPS(t *testing.T) {
	s := Song{BPM: 90}
	if got, want := s.BPS(), 1.5; got != want {
		t.Fatalf("expected BPS %v, got %v", want, got)
	}
}
