// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"math"
)

// mockSource synthesises frames from a waveform function. It does not
// implement FrameSeeker, so SeekFrame falls back to Skip on it.
type mockSource struct {
	rate     int
	channels int
	frames   int
	pos      int
	waveform func(frame, channel int) float32
}

func newMockSource(rate, channels, frames int, waveform func(frame, channel int) float32) *mockSource {
	return &mockSource{rate: rate, channels: channels, frames: frames, waveform: waveform}
}

func newSilentSource(rate, channels, frames int) *mockSource {
	return newConstantSource(rate, channels, frames, 0)
}

func newSineSource(rate, channels, frames int, hz float64) *mockSource {
	return newMockSource(rate, channels, frames, func(frame, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * hz * float64(frame) / float64(rate)))
	})
}

func newConstantSource(rate, channels, frames int, v float32) *mockSource {
	return newMockSource(rate, channels, frames, func(int, int) float32 { return v })
}

func (m *mockSource) SampleRate() int { return m.rate }
func (m *mockSource) Channels() int   { return m.channels }
func (m *mockSource) BufSize() int    { return 4096 }
func (m *mockSource) Close() error    { return nil }

func (m *mockSource) ReadSamples(dst []float32) (int, error) {
	if m.pos >= m.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/m.channels, m.frames-m.pos)
	for f := range n {
		for c := range m.channels {
			dst[f*m.channels+c] = m.waveform(m.pos+f, c)
		}
	}
	m.pos += n

	if m.pos >= m.frames {
		return n * m.channels, io.EOF
	}

	return n * m.channels, nil
}
