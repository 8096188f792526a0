// SPDX-License-Identifier: EPL-2.0

package channel

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ik5/audchan/audio"
	"github.com/ik5/audchan/stream"
)

// Group is a resizable, index-addressed pool of channels sharing a global
// volume and pitch.
type Group struct {
	backend audio.Backend
	opts    stream.Options

	mu          sync.RWMutex
	slots       []*Channel
	globalVol   float64
	globalPitch float64
}

// MaxGroupSize bounds a pool; every slot owns backend voices.
const MaxGroupSize = 1024

// NewGroup creates size slots whose streams are built from opts; opts.Name
// becomes the prefix of each slot name.
func NewGroup(backend audio.Backend, size int, opts stream.Options) (*Group, error) {
	if size < 0 || size > MaxGroupSize {
		return nil, fmt.Errorf("%d: %w", size, ErrInvalidSize)
	}

	g := &Group{
		backend:     backend,
		opts:        opts,
		globalVol:   1,
		globalPitch: 1,
	}
	g.grow(size)

	return g, nil
}

func (g *Group) grow(size int) {
	for i := len(g.slots); i < size; i++ {
		o := g.opts
		o.Name = fmt.Sprintf("%s[%d]", g.opts.Name, i)

		c := New(stream.New(g.backend, o))
		c.SetScale(g.globalVol, g.globalPitch)
		g.slots = append(g.slots, c)
	}
}

func (g *Group) slot(id int) (*Channel, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if id < 0 || id >= len(g.slots) {
		return nil, fmt.Errorf("%d: %w", id, ErrNoSlot)
	}

	return g.slots[id], nil
}

// Slot returns the channel at id.
func (g *Group) Slot(id int) (*Channel, error) { return g.slot(id) }

func (g *Group) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.slots)
}

// Resize keeps the first n slots, stopping and closing the rest, or adds
// new ones.
func (g *Group) Resize(n int) error {
	if n < 0 || n > MaxGroupSize {
		return fmt.Errorf("%d: %w", n, ErrInvalidSize)
	}

	g.mu.Lock()
	var removed []*Channel
	if n < len(g.slots) {
		removed = g.slots[n:]
		g.slots = g.slots[:n:n]
	} else {
		g.grow(n)
	}
	g.mu.Unlock()

	var errs []error
	for _, c := range removed {
		c.Stop()
		errs = append(errs, c.Close())
	}

	return errors.Join(errs...)
}

func (g *Group) Play(id int, file string, volume, pitch, offset float64, fadeInOnOffset bool) error {
	c, err := g.slot(id)
	if err != nil {
		return err
	}
	if !c.Play(file, volume, pitch, offset, fadeInOnOffset) {
		return fmt.Errorf("%s: %w", file, ErrPlayFailed)
	}
	return nil
}

func (g *Group) Crossfade(id int, file string, d time.Duration, volume, pitch, offset float64) error {
	c, err := g.slot(id)
	if err != nil {
		return err
	}
	if !c.Crossfade(file, d, volume, pitch, offset) {
		return fmt.Errorf("%s: %w", file, ErrPlayFailed)
	}
	return nil
}

func (g *Group) Stop(id int) error {
	return g.with(id, (*Channel).Stop)
}

func (g *Group) FadeOut(id int, d time.Duration) error {
	return g.with(id, func(c *Channel) { c.FadeOut(d) })
}

func (g *Group) Offset(id int) (float64, error) {
	c, err := g.slot(id)
	if err != nil {
		return 0, err
	}
	return c.Offset(), nil
}

func (g *Group) State(id int) (audio.PlayState, error) {
	c, err := g.slot(id)
	if err != nil {
		return audio.Stopped, err
	}
	return c.State(), nil
}

func (g *Group) IsPlaying(id int) (bool, error) {
	c, err := g.slot(id)
	if err != nil {
		return false, err
	}
	return c.IsPlaying(), nil
}

func (g *Group) Volume(id int) (float64, error) {
	c, err := g.slot(id)
	if err != nil {
		return 0, err
	}
	return c.Volume(), nil
}

func (g *Group) SetVolume(id int, v float64) error {
	return g.with(id, func(c *Channel) { c.SetVolume(v) })
}

func (g *Group) Pitch(id int) (float64, error) {
	c, err := g.slot(id)
	if err != nil {
		return 0, err
	}
	return c.Pitch(), nil
}

func (g *Group) SetPitch(id int, p float64) error {
	return g.with(id, func(c *Channel) { c.SetPitch(p) })
}

func (g *Group) SetFilter(id int, f audio.FilterID) error {
	return g.with(id, func(c *Channel) { c.SetFilter(f) })
}

func (g *Group) ClearFilter(id int) error { return g.with(id, (*Channel).ClearFilter) }

func (g *Group) SetEffect(id int, e audio.EffectID) error {
	return g.with(id, func(c *Channel) { c.SetEffect(e) })
}

func (g *Group) ClearEffect(id int) error { return g.with(id, (*Channel).ClearEffect) }

func (g *Group) GlobalVolume() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.globalVol
}

// SetGlobalVolume scales the volume of every slot.
func (g *Group) SetGlobalVolume(v float64) {
	g.mu.Lock()
	g.globalVol = max(v, 0)
	g.rescaleLocked()
	g.mu.Unlock()
}

func (g *Group) GlobalPitch() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.globalPitch
}

// SetGlobalPitch scales the pitch of every slot. Non-positive values are
// ignored.
func (g *Group) SetGlobalPitch(p float64) {
	if p <= 0 {
		return
	}

	g.mu.Lock()
	g.globalPitch = p
	g.rescaleLocked()
	g.mu.Unlock()
}

func (g *Group) rescaleLocked() {
	for _, c := range g.slots {
		c.SetScale(g.globalVol, g.globalPitch)
	}
}

func (g *Group) StopAll() {
	for _, c := range g.snapshot() {
		c.Stop()
	}
}

func (g *Group) Close() error {
	g.mu.Lock()
	slots := g.slots
	g.slots = nil
	g.mu.Unlock()

	var errs []error
	for _, c := range slots {
		errs = append(errs, c.Close())
	}

	return errors.Join(errs...)
}

func (g *Group) snapshot() []*Channel {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*Channel(nil), g.slots...)
}

func (g *Group) with(id int, fn func(*Channel)) error {
	c, err := g.slot(id)
	if err != nil {
		return err
	}
	fn(c)
	return nil
}
