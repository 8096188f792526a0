// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"sync"

	"github.com/ik5/audchan/audio"
)

var ErrMissingFile = errors.New("audiotest: file not found")

var ErrForeignCue = errors.New("audiotest: foreign cue")

// Backend is a scriptable audio.Backend. Every file cues successfully unless
// it was registered with Fail. Voices never advance on their own: tests call
// Voice.Finish to simulate a non-looped stream reaching its end.
type Backend struct {
	mu     sync.Mutex
	voices []*Voice
	failed map[string]bool
	onCue  func(file string)
	cues   int
}

func NewBackend() *Backend {
	return &Backend{failed: make(map[string]bool)}
}

// Fail makes subsequent Cue calls for file return ErrMissingFile.
func (b *Backend) Fail(file string) {
	b.mu.Lock()
	b.failed[file] = true
	b.mu.Unlock()
}

// OnCue installs a hook run at the start of every Cue call, standing in for
// the file access a real backend does there.
func (b *Backend) OnCue(fn func(file string)) {
	b.mu.Lock()
	b.onCue = fn
	b.mu.Unlock()
}

type cue struct {
	file   string
	offset float64
}

func (*cue) Close() error { return nil }

func (b *Backend) Cue(file string, offset float64) (audio.Cue, error) {
	b.mu.Lock()
	fn := b.onCue
	b.cues++
	b.mu.Unlock()

	if fn != nil {
		fn(file)
	}
	if b.fails(file) {
		return nil, ErrMissingFile
	}

	return &cue{file: file, offset: max(offset, 0)}, nil
}

// Cues counts Cue calls, failed ones included.
func (b *Backend) Cues() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cues
}

func (b *Backend) NewVoice(looped bool) audio.Voice {
	v := &Voice{backend: b, Looped: looped, gain: 1, pitch: 1}

	b.mu.Lock()
	b.voices = append(b.voices, v)
	b.mu.Unlock()

	return v
}

// Voices returns every voice created so far, in creation order.
func (b *Backend) Voices() []*Voice {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]*Voice(nil), b.voices...)
}

// Playing returns the voices currently in the Playing state.
func (b *Backend) Playing() []*Voice {
	var out []*Voice
	for _, v := range b.Voices() {
		if v.State() == audio.Playing {
			out = append(out, v)
		}
	}

	return out
}

func (b *Backend) fails(file string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.failed[file]
}

// Voice records everything the engine asks of it.
type Voice struct {
	backend *Backend
	Looped  bool

	mu     sync.Mutex
	file   string
	state  audio.PlayState
	gain   float64
	pitch  float64
	filter audio.FilterID
	effect audio.EffectID
	offset float64
	opens  int
	starts int
	closed bool
}

func (v *Voice) Load(ac audio.Cue) error {
	c, ok := ac.(*cue)
	if !ok {
		return ErrForeignCue
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.file = c.file
	v.state = audio.Stopped
	v.offset = c.offset
	v.opens++

	return nil
}

func (v *Voice) Play(offset float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch {
	case v.file == "":
	case v.state == audio.Paused:
		v.state = audio.Playing
	case v.state == audio.Stopped:
		v.state = audio.Playing
		v.offset = offset
		v.starts++
	}

	return nil
}

func (v *Voice) Pause() {
	v.mu.Lock()
	if v.state == audio.Playing {
		v.state = audio.Paused
	}
	v.mu.Unlock()
}

func (v *Voice) Stop() {
	v.mu.Lock()
	v.state = audio.Stopped
	v.offset = 0
	v.mu.Unlock()
}

// Finish simulates the end of a non-looped stream. Looped voices ignore it.
func (v *Voice) Finish() {
	v.mu.Lock()
	if !v.Looped {
		v.state = audio.Stopped
		v.offset = 0
	}
	v.mu.Unlock()
}

// Advance moves the reported offset forward by d seconds.
func (v *Voice) Advance(d float64) {
	v.mu.Lock()
	v.offset += d
	v.mu.Unlock()
}

func (v *Voice) State() audio.PlayState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *Voice) SetGain(gain float64) {
	v.mu.Lock()
	v.gain = gain
	v.mu.Unlock()
}

func (v *Voice) Gain() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gain
}

func (v *Voice) SetPitch(pitch float64) {
	v.mu.Lock()
	v.pitch = pitch
	v.mu.Unlock()
}

func (v *Voice) Pitch() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pitch
}

func (v *Voice) SetFilter(id audio.FilterID) {
	v.mu.Lock()
	v.filter = id
	v.mu.Unlock()
}

func (v *Voice) Filter() audio.FilterID {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

func (v *Voice) SetEffect(id audio.EffectID) {
	v.mu.Lock()
	v.effect = id
	v.mu.Unlock()
}

func (v *Voice) Effect() audio.EffectID {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.effect
}

func (v *Voice) Offset() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}

// File returns the last file loaded.
func (v *Voice) File() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.file
}

// Starts counts how many times playback began from a Stopped state.
func (v *Voice) Starts() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.starts
}

// Opens counts successful Load calls.
func (v *Voice) Opens() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.opens
}

func (v *Voice) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

func (v *Voice) Close() error {
	v.mu.Lock()
	v.closed = true
	v.state = audio.Stopped
	v.mu.Unlock()

	return nil
}
