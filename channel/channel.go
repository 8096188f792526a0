// SPDX-License-Identifier: EPL-2.0

package channel

import (
	"sync"
	"time"

	"github.com/ik5/audchan/audio"
	"github.com/ik5/audchan/stream"
)

// Channel is a stream slot that remembers which track it holds and the
// nominal volume and pitch it was asked for. The effective values are the
// nominal ones multiplied by the scales set with SetScale.
type Channel struct {
	h *stream.Handle

	mu         sync.Mutex
	track      string
	volume     float64
	pitch      float64
	volScale   float64
	pitchScale float64
}

func New(h *stream.Handle) *Channel {
	return &Channel{
		h:          h,
		volume:     1,
		pitch:      1,
		volScale:   1,
		pitchScale: 1,
	}
}

func (c *Channel) Handle() *stream.Handle { return c.h }

// Play starts file. If file is already loaded and not stopped only volume
// and pitch are updated.
func (c *Channel) Play(file string, volume, pitch, offset float64, fadeInOnOffset bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.volume, c.pitch = volume, pitch

	if file == c.track && c.h.State() != audio.Stopped {
		c.applyLocked()
		return true
	}

	c.track = file
	if !c.h.Play(file, c.base(), c.effectivePitch(), offset, fadeInOnOffset) {
		c.track = ""
		return false
	}

	return true
}

// Crossfade fades over to file in d. The same track only takes the new
// volume and pitch.
func (c *Channel) Crossfade(file string, d time.Duration, volume, pitch, offset float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.volume, c.pitch = volume, pitch

	if file == c.track && c.h.State() != audio.Stopped {
		c.applyLocked()
		return true
	}

	c.track = file
	if !c.h.Crossfade(file, d, c.base(), c.effectivePitch(), offset) {
		c.track = ""
		return false
	}

	return true
}

func (c *Channel) Stop() {
	c.mu.Lock()
	c.h.Stop()
	c.track = ""
	c.mu.Unlock()
}

func (c *Channel) FadeOut(d time.Duration) { c.h.FadeOut(d) }

func (c *Channel) Offset() float64        { return c.h.Offset() }
func (c *Channel) State() audio.PlayState { return c.h.State() }
func (c *Channel) IsPlaying() bool        { return c.h.State() == audio.Playing }

// Track returns the file last played, or "" after Stop.
func (c *Channel) Track() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.track
}

func (c *Channel) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

func (c *Channel) SetVolume(v float64) {
	c.mu.Lock()
	c.volume = v
	c.applyLocked()
	c.mu.Unlock()
}

func (c *Channel) Pitch() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pitch
}

func (c *Channel) SetPitch(p float64) {
	c.mu.Lock()
	c.pitch = p
	c.applyLocked()
	c.mu.Unlock()
}

// SetScale sets the multipliers applied to the nominal volume and pitch and
// re-applies them to the stream.
func (c *Channel) SetScale(volume, pitch float64) {
	c.mu.Lock()
	c.volScale, c.pitchScale = volume, pitch
	c.applyLocked()
	c.mu.Unlock()
}

func (c *Channel) SetFilter(id audio.FilterID) { c.h.SetFilter(id) }
func (c *Channel) ClearFilter()                { c.h.SetFilter(audio.NullFilter) }
func (c *Channel) SetEffect(id audio.EffectID) { c.h.SetEffect(id) }
func (c *Channel) ClearEffect()                { c.h.SetEffect(audio.NullEffect) }

func (c *Channel) Close() error { return c.h.Close() }

func (c *Channel) base() float64           { return c.volume * c.volScale }
func (c *Channel) effectivePitch() float64 { return c.pitch * c.pitchScale }

func (c *Channel) applyLocked() {
	tx := c.h.Lock()
	tx.SetVolume(stream.Base, c.base())
	tx.SetPitch(c.effectivePitch())
	tx.Unlock()
}
