package envelope

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBoundsAcrossDomain(t *testing.T) {
	e := ADSR{Attack: 0.1, Decay: 0.2, Sustain: 0.6, Release: 0.3}
	for _, tc := range []struct{ t, hold float64 }{
		{0, 1}, {0.05, 1}, {0.1, 1}, {0.3, 1}, {1, 1},
		{1.3, 1}, {2, 1}, {0.02, 0.05}, {0.05, 0.05}, {0.2, 0.05},
	} {
		v := e.Evaluate(tc.t, tc.hold)
		if v < 0 || v > 1 {
			t.Fatalf("Evaluate(%v,%v)=%v out of [0,1]", tc.t, tc.hold, v)
		}
	}
}

func TestZeroAtOrigin(t *testing.T) {
	e := ADSR{Attack: 0.1, Decay: 0.2, Sustain: 0.6, Release: 0.3}
	if v := e.Evaluate(0, 1); !near(v, 0) {
		t.Fatalf("expected 0 at t=0, got %v", v)
	}
}

func TestBypassAlwaysOne(t *testing.T) {
	e := ADSR{Attack: -1}
	for _, t2 := range []float64{0, 5, 100} {
		if v := e.Evaluate(t2, 1); !near(v, 1) {
			t.Fatalf("expected bypass envelope to always be 1, got %v at t=%v", v, t2)
		}
	}
}

func TestLongHeldShape(t *testing.T) {
	e := ADSR{Attack: 0.1, Decay: 0.2, Sustain: 0.5, Release: 0.1}
	if v := e.Evaluate(0.1, 1); !near(v, 1) {
		t.Fatalf("expected peak of 1 at end of attack, got %v", v)
	}
	if v := e.Evaluate(0.3, 1); !near(v, 0.5) {
		t.Fatalf("expected sustain level 0.5 at end of decay, got %v", v)
	}
	if v := e.Evaluate(0.6, 1); !near(v, 0.5) {
		t.Fatalf("expected sustain held, got %v", v)
	}
	if v := e.Evaluate(1.1, 1); !near(v, 0) {
		t.Fatalf("expected release complete at hold+release, got %v", v)
	}
}

func TestSilenceAfterHoldPlusRelease(t *testing.T) {
	e := ADSR{Attack: 0.01, Decay: 0.01, Sustain: 0.8, Release: 0.05}
	v := e.Evaluate(10, 1)
	if !near(v, 0) {
		t.Fatalf("expected 0 long after release, got %v", v)
	}
}

func TestShortHeldInterruptsCurve(t *testing.T) {
	e := ADSR{Attack: 0.5, Decay: 0.5, Sustain: 0.5, Release: 0.2}
	hold := 0.1 // interrupts during attack, before attack+decay=1.0 completes
	atHold := e.Evaluate(hold, hold)
	if atHold <= 0 || atHold >= 1 {
		t.Fatalf("expected partial attack value at hold, got %v", atHold)
	}
	mid := e.Evaluate(hold+0.1, hold)
	if mid <= 0 || mid >= atHold {
		t.Fatalf("expected release to decay below value at hold, got %v (atHold=%v)", mid, atHold)
	}
	end := e.Evaluate(hold+0.2, hold)
	if !near(end, 0) {
		t.Fatalf("expected silence at hold+release, got %v", end)
	}
}
