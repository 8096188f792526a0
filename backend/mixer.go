// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ik5/audchan/audio"
	"github.com/ik5/audchan/utils"
)

// Mixer is a software audio.Backend. Every voice decodes its file through
// the registry, is resampled to the mixer rate at its pitch, mapped to
// stereo, run through its filter and effect, scaled by its gain and summed.
// Output sinks pull the mix with Read (16-bit PCM) or Mix (float32).
//
// The mixer lock is always taken before a voice lock.
type Mixer struct {
	reg  *audio.Registry
	rate int
	log  zerolog.Logger

	mu      sync.Mutex
	voices  []*voice
	filters map[audio.FilterID]Factory
	effects map[audio.EffectID]Factory
	lastID  uint32
	mixBuf  []float32
}

func NewMixer(reg *audio.Registry, sampleRate int, log zerolog.Logger) *Mixer {
	return &Mixer{
		reg:     reg,
		rate:    sampleRate,
		log:     log.With().Str("component", "mixer").Logger(),
		filters: make(map[audio.FilterID]Factory),
		effects: make(map[audio.EffectID]Factory),
	}
}

func (m *Mixer) SampleRate() int { return m.rate }

func (m *Mixer) NewVoice(looped bool) audio.Voice {
	v := &voice{m: m, looped: looped, gain: 1, pitch: 1}

	m.mu.Lock()
	m.voices = append(m.voices, v)
	m.mu.Unlock()

	return v
}

func (m *Mixer) remove(v *voice) {
	m.mu.Lock()
	m.voices = slices.DeleteFunc(m.voices, func(x *voice) bool { return x == v })
	m.mu.Unlock()
}

// Voices reports how many voices are registered.
func (m *Mixer) Voices() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// AddFilter registers a filter and returns its handle.
func (m *Mixer) AddFilter(f Factory) audio.FilterID {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastID++
	id := audio.FilterID(m.lastID)
	m.filters[id] = f

	return id
}

// RemoveFilter forgets a filter. Voices already using it keep their
// instance until the filter is changed.
func (m *Mixer) RemoveFilter(id audio.FilterID) {
	m.mu.Lock()
	delete(m.filters, id)
	m.mu.Unlock()
}

func (m *Mixer) AddEffect(f Factory) audio.EffectID {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastID++
	id := audio.EffectID(m.lastID)
	m.effects[id] = f

	return id
}

func (m *Mixer) RemoveEffect(id audio.EffectID) {
	m.mu.Lock()
	delete(m.effects, id)
	m.mu.Unlock()
}

func (m *Mixer) filter(id audio.FilterID) Processor {
	if id == audio.NullFilter {
		return nil
	}

	m.mu.Lock()
	f, ok := m.filters[id]
	m.mu.Unlock()

	if !ok {
		m.log.Warn().Uint32("filter", uint32(id)).Msg("unknown filter")
		return nil
	}

	return f(m.rate)
}

func (m *Mixer) effect(id audio.EffectID) Processor {
	if id == audio.NullEffect {
		return nil
	}

	m.mu.Lock()
	f, ok := m.effects[id]
	m.mu.Unlock()

	if !ok {
		m.log.Warn().Uint32("effect", uint32(id)).Msg("unknown effect")
		return nil
	}

	return f(m.rate)
}

// Mix overwrites dst, interleaved stereo, with the sum of all playing
// voices.
func (m *Mixer) Mix(dst []float32) {
	dst = dst[:len(dst)-len(dst)%2]
	clear(dst)

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range m.voices {
		v.render(dst)
	}
}

// Read fills p with signed 16-bit little endian stereo PCM. It never fails,
// producing silence when nothing plays, so it can feed a device player
// directly.
func (m *Mixer) Read(p []byte) (int, error) {
	samples := len(p) / 2
	samples -= samples % 2

	if cap(m.mixBuf) < samples {
		m.mixBuf = make([]float32, samples)
	}
	buf := m.mixBuf[:samples]

	m.Mix(buf)

	return utils.PutInt16LE(p, buf), nil
}
