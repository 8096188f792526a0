// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"math"
	"time"
)

// Processor transforms interleaved stereo samples in place. Each voice gets
// its own Processor so state is never shared.
type Processor interface {
	Process(stereo []float32)
}

// Factory builds a Processor for the mixer sample rate.
type Factory func(sampleRate int) Processor

// LowPass is a one-pole low-pass filter with the given cutoff.
func LowPass(cutoff float64) Factory {
	return func(rate int) Processor {
		rc := 1 / (2 * math.Pi * cutoff)
		dt := 1 / float64(rate)
		return &lowPass{alpha: float32(dt / (rc + dt))}
	}
}

type lowPass struct {
	alpha float32
	state [2]float32
}

func (f *lowPass) Process(s []float32) {
	for i := 0; i+1 < len(s); i += 2 {
		f.state[0] += f.alpha * (s[i] - f.state[0])
		f.state[1] += f.alpha * (s[i+1] - f.state[1])
		s[i], s[i+1] = f.state[0], f.state[1]
	}
}

// Echo mixes a delayed copy of the signal back in. feedback controls how
// long the tail rings, mix how loud the echo is.
func Echo(delay time.Duration, feedback, mix float64) Factory {
	return func(rate int) Processor {
		frames := max(int(delay.Seconds()*float64(rate)), 1)
		return &echo{
			line:     make([]float32, 2*frames),
			feedback: float32(feedback),
			mix:      float32(mix),
		}
	}
}

type echo struct {
	line     []float32
	pos      int
	feedback float32
	mix      float32
}

func (e *echo) Process(s []float32) {
	for i := range s {
		delayed := e.line[e.pos]
		e.line[e.pos] = s[i] + delayed*e.feedback
		s[i] += delayed * e.mix

		e.pos++
		if e.pos == len(e.line) {
			e.pos = 0
		}
	}
}
