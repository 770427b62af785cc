package graph

// NChannels is the fixed channel-bus length shared by every instrument:
// bus 0 is the shared output/operator-0 bus, buses 1..NChannels-1 are
// available to additional operators and feedback paths.
const NChannels = 8

// Note describes the pitch, velocity, and timing a voice is currently
// playing. Freq <= 0 marks an idle voice.
type Note struct {
	Freq     float64
	Velocity float64
	Start    float64 // seconds, absolute
	Duration float64 // seconds
}

// Voice is one monophonic evaluation of an instrument's operator
// graph: per-operator phases, a double-buffered channel bus, and the
// note currently assigned to it. A voice is created once and reset on
// scheduling; it is never destroyed during playback.
type Voice struct {
	Phases       []float64
	channels     []float64
	channelsBack []float64
	Note         Note
	noiseLFSR    uint32
}

// NewVoice allocates a voice for an operator graph with the given
// operator count, using the fixed NChannels bus width.
func NewVoice(numOps int) *Voice {
	return &Voice{
		Phases:       make([]float64, numOps),
		channels:     make([]float64, NChannels),
		channelsBack: make([]float64, NChannels),
		noiseLFSR:    0x7FFF,
	}
}

// Reset assigns a new note to the voice and clears its phase and bus
// state, so no audible artifact from a prior note leaks into the next.
func (v *Voice) Reset(note Note) {
	v.Note = note
	for i := range v.Phases {
		v.Phases[i] = 0
	}
	for i := range v.channels {
		v.channels[i] = 0
		v.channelsBack[i] = 0
	}
}

// Active reports whether the voice's envelope(s) could still be
// producing sound: the caller is expected to combine this with its own
// knowledge of t relative to Note.Start/Duration/release.
func (v *Voice) Active() bool {
	return v.Note.Freq > 0
}

// RenderSample evaluates one frame at absolute time t (dt = 1/sampleRate)
// and returns the voice's output-bus sample (channels[0] after the
// frame's buffer swap). ops is the instrument's shared operator array.
func (v *Voice) RenderSample(ops []Operator, t, dt float64) float64 {
	n := v.Note
	for i := range ops {
		op := &ops[i]
		for _, r := range op.Receives {
			raw := v.channels[r.Source] * r.Level * dt
			if r.Type == Modulate {
				raw *= n.Freq
			}
			v.Phases[i] += raw
		}
		v.Phases[i] = fractional(v.Phases[i])

		if n.Freq > 0 {
			env := op.Envelope.Evaluate(t-n.Start, n.Duration)
			vel := env * n.Velocity
			baseF := op.Transpose
			if !op.Fixed {
				baseF = n.Freq * op.Transpose
			}
			arg := baseF*t + v.Phases[i]
			sample := v.waveSample(arg, op.Wave) * vel
			for _, s := range op.Sends {
				v.channelsBack[s.Dest] += s.Level * sample
			}
		}
	}

	v.channels, v.channelsBack = v.channelsBack, v.channels
	out := v.channels[0]
	for i := range v.channelsBack {
		v.channelsBack[i] = 0
	}
	return out
}

func (v *Voice) waveSample(arg float64, w Wave) float64 {
	switch w {
	case Sine:
		return -cos2pi(arg)
	case Square:
		if sin2pi(arg) >= 0 {
			return 1
		}
		return -1
	case Triangle:
		frac := fractional(arg)
		return 1 - 2*abs(2*frac-1)
	case Sawtooth:
		return fractional(arg)
	case Noise:
		v.noiseLFSR = (v.noiseLFSR >> 1) ^ (-(v.noiseLFSR & 1) & 0xB400)
		if v.noiseLFSR&1 != 0 {
			return 1
		}
		return -1
	default:
		return -cos2pi(arg)
	}
}
