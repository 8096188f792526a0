// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/ik5/audchan/utils"
)

// beepStream adapts the mixer to beep.Streamer.
type beepStream struct {
	m   *Mixer
	buf []float32
}

func (s *beepStream) Stream(samples [][2]float64) (int, bool) {
	n := 2 * len(samples)
	if cap(s.buf) < n {
		s.buf = make([]float32, n)
	}
	buf := s.buf[:n]

	s.m.Mix(buf)

	for i := range samples {
		samples[i][0] = float64(utils.Clamp(buf[2*i], -1, 1))
		samples[i][1] = float64(utils.Clamp(buf[2*i+1], -1, 1))
	}

	return len(samples), true
}

func (s *beepStream) Err() error { return nil }

// BeepSink plays the mix through the beep speaker.
type BeepSink struct {
	ctrl *beep.Ctrl
}

func NewBeepSink(m *Mixer, buffer time.Duration) (*BeepSink, error) {
	sr := beep.SampleRate(m.SampleRate())
	if err := speaker.Init(sr, sr.N(buffer)); err != nil {
		return nil, fmt.Errorf("beep speaker: %w", err)
	}

	s := &BeepSink{ctrl: &beep.Ctrl{Streamer: &beepStream{m: m}}}
	speaker.Play(s.ctrl)

	return s, nil
}

func (s *BeepSink) setPaused(p bool) {
	speaker.Lock()
	s.ctrl.Paused = p
	speaker.Unlock()
}

func (s *BeepSink) Suspend() error {
	s.setPaused(true)
	return nil
}

func (s *BeepSink) Resume() error {
	s.setPaused(false)
	return nil
}

func (s *BeepSink) Close() error {
	speaker.Clear()
	speaker.Close()
	return nil
}
