// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// StereoMapper presents any source as interleaved stereo. Mono is duplicated
// to both sides, stereo passes through, and channels beyond the first two
// are averaged into both sides.
type StereoMapper struct {
	src Source
	tmp []float32
}

func NewStereoMapper(src Source) *StereoMapper {
	return &StereoMapper{
		src: src,
		tmp: make([]float32, 4096),
	}
}

func (m *StereoMapper) SampleRate() int { return m.src.SampleRate() }
func (m *StereoMapper) Channels() int   { return 2 }
func (m *StereoMapper) BufSize() int    { return m.src.BufSize() }
func (m *StereoMapper) Close() error {
	err := m.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (m *StereoMapper) ReadSamples(dst []float32) (int, error) {
	if len(dst)%2 != 0 {
		return 0, ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	channels := m.src.Channels()
	if channels == 2 {
		return m.src.ReadSamples(dst)
	}
	if channels <= 0 {
		return 0, ErrInvalidChannels
	}

	frames := len(dst) / 2
	samplesNeeded := frames * channels

	if cap(m.tmp) < samplesNeeded {
		m.tmp = make([]float32, samplesNeeded)
	}
	m.tmp = m.tmp[:samplesNeeded]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	got := n / channels

	switch channels {
	case 1:
		for f := range got {
			dst[2*f] = m.tmp[f]
			dst[2*f+1] = m.tmp[f]
		}
	default:
		extra := float32(channels - 2)
		for f := range got {
			idx := f * channels
			var rest float32
			for c := 2; c < channels; c++ {
				rest += m.tmp[idx+c]
			}
			rest /= extra
			dst[2*f] = (m.tmp[idx] + rest) * 0.5
			dst[2*f+1] = (m.tmp[idx+1] + rest) * 0.5
		}
	}

	return got * 2, err
}
