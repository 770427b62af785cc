package device

import (
	"encoding/binary"
	"io"
	"math"
	"testing"
)

type fakeSource struct {
	blocks [][]float64
	idx    int
}

func (f *fakeSource) NextQuantum() []float64 {
	if f.idx >= len(f.blocks) {
		return nil
	}
	b := f.blocks[f.idx]
	f.idx++
	return b
}

func TestReadDuplicatesMonoToStereo(t *testing.T) {
	r := newStreamReader(&fakeSource{blocks: [][]float64{{1, -1, 0.5}}})
	buf := make([]byte, 3*8)
	n, err := r.Read(buf)
	if err != nil && err != io.EOF {
		t.Fatalf("Read: %v", err)
	}
	if n != 3*8 {
		t.Fatalf("expected %d bytes, got %d", 3*8, n)
	}
	want := []float32{1, -1, 0.5}
	for i, w := range want {
		l := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*8:]))
		rr := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*8+4:]))
		if l != w || rr != w {
			t.Fatalf("frame %d: expected L=R=%v, got L=%v R=%v", i, w, l, rr)
		}
	}
}

func TestReadBuffersAcrossQuanta(t *testing.T) {
	r := newStreamReader(&fakeSource{blocks: [][]float64{{1, 2}, {3, 4}}})
	buf := make([]byte, 3*8)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 3*8 {
		t.Fatalf("expected 3 frames read across two quanta, got %d bytes", n)
	}
	got := math.Float32frombits(binary.LittleEndian.Uint32(buf[2*8:]))
	if got != 3 {
		t.Fatalf("expected third frame to come from the second quantum (3), got %v", got)
	}
}

func TestReadReturnsEOFWhenSourceExhausted(t *testing.T) {
	r := newStreamReader(&fakeSource{blocks: [][]float64{{1}}})
	buf := make([]byte, 4*8)
	_, err := r.Read(buf)
	if err != io.EOF {
		t.Fatalf("expected io.EOF once the source is exhausted, got %v", err)
	}
}
