// SPDX-License-Identifier: EPL-2.0

package channel

import (
	"fmt"
	"sync"

	"github.com/ik5/audchan/audio"
	"github.com/ik5/audchan/stream"
)

// Emitter plays short one-shot sounds on a fixed pool of streams. A new
// sound takes the first idle stream or, when all are busy, the next one in
// round-robin order.
type Emitter struct {
	mu      sync.Mutex
	handles []*stream.Handle
	next    int
	scale   float64
	filter  audio.FilterID
	effect  audio.EffectID
}

func NewEmitter(backend audio.Backend, sources int, opts stream.Options) (*Emitter, error) {
	if sources <= 0 {
		return nil, fmt.Errorf("%d sources: %w", sources, ErrInvalidSize)
	}

	e := &Emitter{scale: 1}
	for i := range sources {
		o := opts
		o.Name = fmt.Sprintf("%s[%d]", opts.Name, i)
		o.Looped = false
		e.handles = append(e.handles, stream.New(backend, o))
	}

	return e, nil
}

func (e *Emitter) Sources() int { return len(e.handles) }

// Play starts file at the given nominal volume and pitch.
func (e *Emitter) Play(file string, volume, pitch float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	h := e.pickLocked()
	return h.Play(file, volume*e.scale, pitch, 0, false)
}

func (e *Emitter) pickLocked() *stream.Handle {
	for _, h := range e.handles {
		if h.State() == audio.Stopped {
			return h
		}
	}

	h := e.handles[e.next]
	e.next = (e.next + 1) % len(e.handles)

	return h
}

// SetScale sets the multiplier applied to the volume of later sounds.
func (e *Emitter) SetScale(v float64) {
	e.mu.Lock()
	e.scale = v
	e.mu.Unlock()
}

func (e *Emitter) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, h := range e.handles {
		h.Stop()
	}
}

func (e *Emitter) Filter() audio.FilterID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter
}

func (e *Emitter) SetFilter(id audio.FilterID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.filter = id
	for _, h := range e.handles {
		h.SetFilter(id)
	}
}

func (e *Emitter) Effect() audio.EffectID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.effect
}

func (e *Emitter) SetEffect(id audio.EffectID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.effect = id
	for _, h := range e.handles {
		h.SetEffect(id)
	}
}

func (e *Emitter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	for _, h := range e.handles {
		if cerr := h.Close(); err == nil {
			err = cerr
		}
	}

	return err
}

// Playing reports whether any source is playing.
func (e *Emitter) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, h := range e.handles {
		if h.State() == audio.Playing {
			return true
		}
	}

	return false
}
