// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"time"

	"github.com/ik5/audchan/audio"
)

// kick wakes the fader. Callers hold h.mu.
func (h *Handle) kick() {
	if !h.fading() {
		return
	}

	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// fader sleeps until a ramp starts and then advances every ramp once per
// tick until none is left.
func (h *Handle) fader() {
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			return
		case <-h.wake:
		}

		ticker := time.NewTicker(h.opts.Tick)

		for running := true; running; {
			select {
			case <-h.quit:
				ticker.Stop()
				return
			case <-ticker.C:
				running = h.stepFades()
			}
		}

		ticker.Stop()
	}
}

// stepFades advances all active ramps by one tick and reports whether any
// is still running.
func (h *Handle) stepFades() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fadeOut.active {
		h.vol[FadeOut] -= h.fadeOut.step
		if h.vol[FadeOut] <= 0 || h.active.State() == audio.Stopped {
			h.vol[FadeOut] = 0
			h.stopLocked()
			h.log.Debug().Msg("fade-out finished")
		}
	}

	if h.fadeIn.active {
		h.vol[FadeIn] += h.fadeIn.step
		if h.vol[FadeIn] >= 1 {
			h.vol[FadeIn] = 1
			h.fadeIn.cancel()
		}
	}

	live := h.tails[:0]
	for _, t := range h.tails {
		t.level -= t.step
		if t.level <= 0 || t.v.State() == audio.Stopped {
			t.v.Stop()
			h.spare = append(h.spare, t.v)
			continue
		}
		live = append(live, t)
	}
	clear(h.tails[len(live):])
	h.tails = live

	h.applyGainLocked()

	return h.fading()
}

func (h *Handle) fading() bool {
	return h.fadeOut.active || h.fadeIn.active || len(h.tails) > 0
}
