// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ik5/audchan/audio"
	"github.com/ik5/audchan/utils"
)

// Handle is one logical playback stream (BGM, BGS, ME or a pooled slot).
// One voice plays the current file; a crossfade hands it to a tail that
// keeps fading on its own ramp. All methods are safe for concurrent use;
// sequences that must observe and change state atomically go through Lock.
//
// Files are only opened through Backend.Cue, and never while h.mu is held.
type Handle struct {
	opts    Options
	log     zerolog.Logger
	backend audio.Backend

	mu sync.Mutex

	active audio.Voice
	tails  []*tail
	spare  []audio.Voice

	vol          volumes
	pitch        float64
	filter       audio.FilterID
	effect       audio.EffectID
	file         string
	startOffset  float64
	cued         bool   // active holds an unstarted cue at startOffset
	gen          uint64 // bumped whenever active is reloaded or stopped
	extPaused    bool
	noResumeStop bool

	fadeOut ramp
	fadeIn  ramp

	wake   chan struct{}
	quit   chan struct{}
	done   chan struct{}
	closed bool
}

// tail is a voice fading out after a crossfade moved on from it.
type tail struct {
	v     audio.Voice
	base  float64 // gain the voice had when the crossfade began
	level float64
	step  float64
}

// maxTails bounds how many outgoing voices may overlap; past it the oldest
// is stopped.
const maxTails = 8

func New(backend audio.Backend, opts Options) *Handle {
	o := opts.withDefaults()

	h := &Handle{
		opts:    o,
		log:     o.Log.With().Str("component", "stream").Str("stream", o.Name).Logger(),
		backend: backend,
		active:  backend.NewVoice(o.Looped),
		spare:   []audio.Voice{backend.NewVoice(o.Looped)},
		vol:     fullVolumes(),
		pitch:   1,
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go h.fader()

	return h
}

func (h *Handle) Name() string { return h.opts.Name }

// Play stops whatever is playing and starts file at offset seconds with the
// given base volume and pitch. When fadeInOnOffset is set and offset is
// positive the stream fades in over Options.OffsetFadeIn. A ducked stream
// loads the file but leaves it to the watchdog to start. It reports false
// when the file cannot be opened.
func (h *Handle) Play(file string, base, pitch, offset float64, fadeInOnOffset bool) bool {
	c, err := h.backend.Cue(file, offset)

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.acceptLocked(c) {
		return false
	}
	if err != nil {
		h.stopLocked()
		h.log.Error().Err(err).Str("file", file).Msg("cannot open stream")
		return false
	}

	var fade time.Duration
	if fadeInOnOffset && offset > 0 {
		fade = h.opts.OffsetFadeIn
	}

	return h.playLocked(c, file, base, pitch, offset, fade)
}

// acceptLocked reports whether the handle can still take a cue, closing c
// when it cannot.
func (h *Handle) acceptLocked(c audio.Cue) bool {
	if !h.closed {
		return true
	}
	if c != nil {
		_ = c.Close()
	}
	return false
}

func (h *Handle) playLocked(c audio.Cue, file string, base, pitch, offset float64, fade time.Duration) bool {
	h.stopVoicesLocked()

	if err := h.active.Load(c); err != nil {
		h.file = ""
		h.noResumeStop = true
		h.log.Error().Err(err).Str("file", file).Msg("cannot load stream")
		return false
	}

	h.file, h.cued = file, true
	h.vol[Base] = utils.Clamp01(base)
	h.setPitchLocked(pitch)
	h.startOffset = offset
	h.noResumeStop = false

	if h.extPaused {
		h.applyGainLocked()
		h.log.Debug().Str("file", file).Msg("loaded while ducked")
		return true
	}

	if fade > 0 {
		h.vol[FadeIn] = 0
		h.fadeIn.start(h.stepFor(fade))
	}
	h.applyGainLocked()

	if !h.startLocked() {
		return false
	}

	h.log.Debug().Str("file", file).Float64("offset", offset).Msg("playing")

	return true
}

// Stop halts every voice, cancels fades and keeps the watchdog from
// restarting the stream.
func (h *Handle) Stop() {
	h.mu.Lock()
	h.stopLocked()
	h.mu.Unlock()
}

func (h *Handle) stopLocked() {
	h.stopVoicesLocked()
	h.noResumeStop = true
}

func (h *Handle) stopVoicesLocked() {
	h.active.Stop()
	for _, t := range h.tails {
		t.v.Stop()
		h.spare = append(h.spare, t.v)
	}
	clear(h.tails)
	h.tails = h.tails[:0]

	h.cued = false
	h.gen++

	h.fadeOut.cancel()
	h.fadeIn.cancel()
	h.vol[FadeOut] = 1
	h.vol[FadeIn] = 1
}

// FadeOut ramps the stream to silence over d and then stops it. It is
// ignored while a fade-out is already running or nothing is playing; a
// paused stream stops at once.
func (h *Handle) FadeOut(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.active.State() {
	case audio.Paused:
		h.stopLocked()
		return
	case audio.Stopped:
		return
	}

	if h.fadeOut.active {
		return
	}

	if d <= 0 {
		h.stopLocked()
		return
	}

	h.fadeOut.start(h.stepFor(d))
	h.kick()
}

// Crossfade starts file on a fresh voice while the current one fades out,
// both over d. With nothing playing it behaves like Play with a fade-in.
// Voices still fading from an earlier crossfade keep their own ramps.
func (h *Handle) Crossfade(file string, d time.Duration, base, pitch, offset float64) bool {
	c, err := h.backend.Cue(file, offset)

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.acceptLocked(c) {
		return false
	}

	if d <= 0 || h.active.State() == audio.Stopped {
		if err != nil {
			h.stopLocked()
			h.log.Error().Err(err).Str("file", file).Msg("cannot open stream")
			return false
		}
		return h.playLocked(c, file, base, pitch, offset, max(d, 0))
	}

	h.retireLocked(d)
	h.fadeOut.cancel()
	h.vol[FadeOut] = 1

	if err == nil {
		err = h.active.Load(c)
	}
	if err != nil {
		h.file, h.cued = "", false
		h.noResumeStop = true
		h.fadeIn.cancel()
		h.vol[FadeIn] = 1
		h.applyGainLocked()
		h.kick()
		h.log.Error().Err(err).Str("file", file).Msg("cannot open crossfade target")
		return false
	}

	h.file, h.cued = file, true
	h.vol[Base] = utils.Clamp01(base)
	h.setPitchLocked(pitch)
	h.startOffset = offset
	h.noResumeStop = false
	h.vol[FadeIn] = 0
	h.fadeIn.start(h.stepFor(d))
	h.applyGainLocked()

	if !h.extPaused {
		h.startLocked()
	}

	h.kick()
	h.log.Debug().Str("file", file).Dur("duration", d).Int("tails", len(h.tails)).Msg("crossfading")

	return true
}

// retireLocked turns the active voice into a tail fading over d and puts
// an idle voice in its place.
func (h *Handle) retireLocked(d time.Duration) {
	if len(h.tails) == maxTails {
		oldest := h.tails[0]
		oldest.v.Stop()
		h.spare = append(h.spare, oldest.v)
		h.tails = slices.Delete(h.tails, 0, 1)
	}

	h.tails = append(h.tails, &tail{
		v:     h.active,
		base:  h.vol[Base] * h.vol[FadeOut] * h.vol[FadeIn],
		level: 1,
		step:  h.stepFor(d),
	})

	h.active = h.spareLocked()
	h.gen++
}

func (h *Handle) spareLocked() audio.Voice {
	if n := len(h.spare); n > 0 {
		v := h.spare[n-1]
		h.spare = h.spare[:n-1]
		return v
	}

	v := h.backend.NewVoice(h.opts.Looped)
	v.SetFilter(h.filter)
	v.SetEffect(h.effect)

	return v
}

func (h *Handle) State() audio.PlayState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active.State()
}

// Offset returns the playback position of the active voice in seconds.
func (h *Handle) Offset() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active.Offset()
}

func (h *Handle) Volume(kind VolumeKind) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.vol[kind]
}

func (h *Handle) SetVolume(kind VolumeKind, v float64) {
	h.mu.Lock()
	h.setVolumeLocked(kind, v)
	h.mu.Unlock()
}

func (h *Handle) setVolumeLocked(kind VolumeKind, v float64) {
	h.vol[kind] = utils.Clamp01(v)
	h.applyGainLocked()
}

func (h *Handle) Pitch() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pitch
}

func (h *Handle) SetPitch(p float64) {
	h.mu.Lock()
	h.setPitchLocked(p)
	h.mu.Unlock()
}

func (h *Handle) setPitchLocked(p float64) {
	if p <= 0 {
		p = 1
	}
	h.pitch = p
	h.active.SetPitch(p)
}

func (h *Handle) Filter() audio.FilterID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.filter
}

func (h *Handle) SetFilter(id audio.FilterID) {
	h.mu.Lock()
	h.filter = id
	for _, v := range h.voicesLocked() {
		v.SetFilter(id)
	}
	h.mu.Unlock()
}

func (h *Handle) Effect() audio.EffectID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.effect
}

func (h *Handle) SetEffect(id audio.EffectID) {
	h.mu.Lock()
	h.effect = id
	for _, v := range h.voicesLocked() {
		v.SetEffect(id)
	}
	h.mu.Unlock()
}

// voicesLocked returns every voice the handle owns: active, tails, spares.
func (h *Handle) voicesLocked() []audio.Voice {
	vs := make([]audio.Voice, 0, 1+len(h.tails)+len(h.spare))
	vs = append(vs, h.active)
	for _, t := range h.tails {
		vs = append(vs, t.v)
	}
	return append(vs, h.spare...)
}

func (h *Handle) Pause() {
	h.mu.Lock()
	h.pauseLocked()
	h.mu.Unlock()
}

func (h *Handle) pauseLocked() {
	h.active.Pause()
	for _, t := range h.tails {
		t.v.Pause()
	}
}

func (h *Handle) Resume() {
	h.mu.Lock()
	h.resumeLocked()
	h.mu.Unlock()
}

func (h *Handle) resumeLocked() {
	for _, v := range h.voicesLocked() {
		if v.State() == audio.Paused {
			if err := v.Play(0); err != nil {
				h.log.Error().Err(err).Msg("cannot resume stream")
			}
		}
	}
	h.kick()
}

// Start begins a loaded but stopped stream at the offset given to its last
// Play. A cue that was already played is reopened with the stream lock
// released; the start is dropped if the stream changed meanwhile. Streams
// stopped on request or ducked are left alone.
func (h *Handle) Start() {
	h.mu.Lock()
	if !h.startableLocked() {
		h.mu.Unlock()
		return
	}
	if h.cued {
		h.startLocked()
		h.mu.Unlock()
		return
	}
	file, offset, gen := h.file, h.startOffset, h.gen
	h.mu.Unlock()

	c, err := h.backend.Cue(file, offset)
	if err != nil {
		h.log.Error().Err(err).Str("file", file).Msg("cannot reopen stream")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.gen != gen || !h.startableLocked() {
		_ = c.Close()
		return
	}
	if err := h.active.Load(c); err != nil {
		h.log.Error().Err(err).Str("file", file).Msg("cannot reload stream")
		return
	}
	h.cued = true
	h.startLocked()
}

func (h *Handle) startableLocked() bool {
	return !h.closed && h.file != "" && !h.noResumeStop && !h.extPaused &&
		h.active.State() == audio.Stopped
}

// startLocked plays the active voice from startOffset. It does no I/O while
// the voice holds a fresh cue.
func (h *Handle) startLocked() bool {
	if err := h.active.Play(h.startOffset); err != nil {
		h.log.Error().Err(err).Str("file", h.file).Msg("cannot start stream")
		return false
	}
	h.cued = false
	h.kick()
	return true
}

func (h *Handle) applyGainLocked() {
	h.active.SetGain(h.vol.gain())
	for _, t := range h.tails {
		t.v.SetGain(t.base * t.level * h.vol[External])
	}
}

func (h *Handle) stepFor(d time.Duration) float64 {
	if d <= h.opts.Tick {
		return 1
	}
	return float64(h.opts.Tick) / float64(d)
}

// Close stops playback, ends the fader and releases every voice. It is
// safe to call more than once.
func (h *Handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.stopVoicesLocked()
	vs := h.voicesLocked()
	h.mu.Unlock()

	close(h.quit)
	<-h.done

	var errs []error
	for _, v := range vs {
		errs = append(errs, v.Close())
	}

	return errors.Join(errs...)
}
