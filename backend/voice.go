// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ik5/audchan/audio"
)

// pipeline is one decoded file positioned for playback.
type pipeline struct {
	rs    *audio.Resampler
	out   *audio.StereoMapper
	base  int64 // source frame the pipeline started at
	srcHz float64
}

func (m *Mixer) openPipeline(file string, offset, pitch float64) (*pipeline, error) {
	src, err := m.reg.Open(file)
	if err != nil {
		return nil, err
	}

	hz := float64(src.SampleRate())
	frame := int64(max(offset, 0) * hz)
	if frame > 0 {
		if err := audio.SeekFrame(src, frame); err != nil && !errors.Is(err, io.EOF) {
			src.Close()
			return nil, fmt.Errorf("seek %s: %w", file, err)
		}
	}

	rs := audio.NewResampler(src, m.rate)
	if pitch > 0 {
		_ = rs.SetPitch(pitch)
	}

	return &pipeline{
		rs:    rs,
		out:   audio.NewStereoMapper(rs),
		base:  frame,
		srcHz: hz,
	}, nil
}

func (p *pipeline) offset() float64 {
	if p.srcHz <= 0 {
		return 0
	}
	return (float64(p.base) + p.rs.Position()) / p.srcHz
}

func (p *pipeline) close() error { return p.out.Close() }

// cue is a pipeline opened by Mixer.Cue and not yet loaded.
type cue struct {
	m      *Mixer
	file   string
	offset float64
	p      *pipeline
}

func (c *cue) Close() error {
	if c.p == nil {
		return nil
	}
	p := c.p
	c.p = nil
	return p.close()
}

// Cue decodes file up to offset seconds. Pitch is applied at Load.
func (m *Mixer) Cue(file string, offset float64) (audio.Cue, error) {
	offset = max(offset, 0)

	p, err := m.openPipeline(file, offset, 1)
	if err != nil {
		return nil, err
	}

	return &cue{m: m, file: file, offset: offset, p: p}, nil
}

type voice struct {
	m      *Mixer
	looped bool

	mu       sync.Mutex
	file     string
	p        *pipeline
	cued     float64 // offset p was opened at
	consumed bool    // p has been read from and needs reopening to restart
	state    audio.PlayState
	gain     float64
	pitch    float64
	filter   Processor
	effect   Processor
	closed   bool
	buf      []float32
}

// Load swaps c in without touching the file system; the replaced
// pipeline is closed off the caller's goroutine.
func (v *voice) Load(ac audio.Cue) error {
	c, ok := ac.(*cue)
	if !ok || c.m != v.m || c.p == nil {
		if ac != nil {
			_ = ac.Close()
		}
		return ErrForeignCue
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		_ = c.Close()
		return ErrVoiceClosed
	}

	p := c.p
	c.p = nil
	_ = p.rs.SetPitch(v.pitch)

	old := v.p
	v.file, v.p = c.file, p
	v.cued = c.offset
	v.consumed = false
	v.state = audio.Stopped
	v.mu.Unlock()

	v.retire(old)

	return nil
}

func (v *voice) retire(p *pipeline) {
	if p == nil {
		return
	}

	go func() {
		if err := p.close(); err != nil {
			v.m.log.Warn().Err(err).Msg("close pipeline")
		}
	}()
}

func (v *voice) Play(offset float64) error {
	v.mu.Lock()

	switch {
	case v.p == nil, v.state == audio.Playing:
		v.mu.Unlock()
		return nil
	case v.state == audio.Paused:
		v.state = audio.Playing
		v.mu.Unlock()
		return nil
	}

	if !v.consumed && max(offset, 0) == v.cued {
		v.consumed = true
		v.state = audio.Playing
		v.mu.Unlock()
		return nil
	}

	cur, file, pitch := v.p, v.file, v.pitch
	v.mu.Unlock()

	p, err := v.m.openPipeline(file, offset, pitch)
	if err != nil {
		return err
	}

	v.mu.Lock()
	if v.p != cur || v.closed {
		v.mu.Unlock()
		return p.close()
	}
	old := v.p
	v.p = p
	v.cued = max(offset, 0)
	v.consumed = true
	v.state = audio.Playing
	v.mu.Unlock()

	v.retire(old)

	return nil
}

func (v *voice) Pause() {
	v.mu.Lock()
	if v.state == audio.Playing {
		v.state = audio.Paused
	}
	v.mu.Unlock()
}

// Stop halts playback; the next Play starts over.
func (v *voice) Stop() {
	v.mu.Lock()
	v.state = audio.Stopped
	v.mu.Unlock()
}

func (v *voice) State() audio.PlayState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *voice) SetGain(gain float64) {
	v.mu.Lock()
	v.gain = gain
	v.mu.Unlock()
}

func (v *voice) SetPitch(pitch float64) {
	if pitch <= 0 {
		return
	}

	v.mu.Lock()
	v.pitch = pitch
	if v.p != nil {
		_ = v.p.rs.SetPitch(pitch)
	}
	v.mu.Unlock()
}

func (v *voice) SetFilter(id audio.FilterID) {
	f := v.m.filter(id)

	v.mu.Lock()
	v.filter = f
	v.mu.Unlock()
}

func (v *voice) SetEffect(id audio.EffectID) {
	e := v.m.effect(id)

	v.mu.Lock()
	v.effect = e
	v.mu.Unlock()
}

// Offset is 0 while stopped.
func (v *voice) Offset() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.p == nil || v.state == audio.Stopped {
		return 0
	}
	return v.p.offset()
}

func (v *voice) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	v.state = audio.Stopped
	p := v.p
	v.p = nil
	v.mu.Unlock()

	v.m.remove(v)

	if p != nil {
		return p.close()
	}
	return nil
}

// render adds the voice output to dst. Called by the mixer with its lock
// held.
func (v *voice) render(dst []float32) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != audio.Playing || v.p == nil {
		return
	}

	if cap(v.buf) < len(dst) {
		v.buf = make([]float32, len(dst))
	}
	buf := v.buf[:len(dst)]

	n := v.fill(buf)
	if n == 0 {
		return
	}
	buf = buf[:n]

	if v.filter != nil {
		v.filter.Process(buf)
	}
	if v.effect != nil {
		v.effect.Process(buf)
	}

	g := float32(v.gain)
	for i, s := range buf {
		dst[i] += s * g
	}
}

// fill reads up to len(buf) samples, restarting looped voices at the end
// of the file.
func (v *voice) fill(buf []float32) int {
	filled := 0
	rewound := false

	for filled < len(buf) {
		n, err := v.p.out.ReadSamples(buf[filled:])
		filled += n

		if n > 0 {
			rewound = false
		}

		switch {
		case err == nil && n > 0:
			continue
		case err != nil && !errors.Is(err, io.EOF):
			v.m.log.Error().Err(err).Str("file", v.file).Msg("decode failed")
			v.state = audio.Stopped
			return filled
		}

		if !v.looped || rewound {
			v.state = audio.Stopped
			return filled
		}

		if err := v.rewind(); err != nil {
			v.m.log.Error().Err(err).Str("file", v.file).Msg("cannot loop")
			v.state = audio.Stopped
			return filled
		}
		rewound = true
	}

	return filled
}

// rewind reopens the file from the start. It runs on the mixer goroutine.
func (v *voice) rewind() error {
	p, err := v.m.openPipeline(v.file, 0, v.pitch)
	if err != nil {
		return err
	}

	old := v.p
	v.p = p
	v.cued = 0
	v.consumed = true

	return old.close()
}
