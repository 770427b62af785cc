// Package device wires a scheduler's mono output to the system audio
// device via ebiten's pull-based audio player.
package device

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// Source produces mono audio one quantum at a time. NextQuantum
// returns nil once playback has ended.
type Source interface {
	NextQuantum() []float64
}

// streamReader adapts a Source to ebiten's float32 stereo Reader
// contract, duplicating every mono sample into both channels and
// buffering whatever part of a quantum the caller didn't fully
// consume.
type streamReader struct {
	mu      sync.Mutex
	source  Source
	pending []float64
	ended   bool
}

func newStreamReader(source Source) *streamReader {
	return &streamReader{source: source}
}

func (r *streamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8 // 2 channels * 4 bytes (float32) per frame
	if frames == 0 {
		return 0, nil
	}

	written := 0
	for written < frames {
		if len(r.pending) == 0 {
			if r.ended {
				break
			}
			block := r.source.NextQuantum()
			if block == nil {
				r.ended = true
				break
			}
			r.pending = block
		}
		n := frames - written
		if n > len(r.pending) {
			n = len(r.pending)
		}
		for i := 0; i < n; i++ {
			u := math.Float32bits(float32(r.pending[i]))
			off := (written + i) * 8
			binary.LittleEndian.PutUint32(p[off:], u)
			binary.LittleEndian.PutUint32(p[off+4:], u)
		}
		r.pending = r.pending[n:]
		written += n
	}

	n := written * 8
	if written < frames && r.ended {
		return n, io.EOF
	}
	return n, nil
}

func (r *streamReader) Close() error { return nil }

// Player drives a Source through the system audio device.
type Player struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	contextOnce sync.Once
	context     *ebitaudio.Context
	contextRate int
)

func sharedContext(sampleRate int) (*ebitaudio.Context, error) {
	contextOnce.Do(func() {
		contextRate = sampleRate
		context = ebitaudio.NewContext(sampleRate)
	})
	if contextRate != sampleRate {
		return nil, fmt.Errorf("device: audio context already initialised at %d Hz (requested %d Hz)", contextRate, sampleRate)
	}
	return context, nil
}

// NewPlayer opens a device stream at sampleRate backed by source.
func NewPlayer(sampleRate int, source Source) (*Player, error) {
	ctx, err := sharedContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := newStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Player{player: pl, reader: reader}, nil
}

// Play begins (or resumes) playback.
func (p *Player) Play() { p.player.Play() }

// Pause suspends playback without releasing the device.
func (p *Player) Pause() { p.player.Pause() }

// IsPlaying reports whether the device is actively consuming samples.
func (p *Player) IsPlaying() bool { return p.player.IsPlaying() }

// Stop releases the device.
func (p *Player) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}
