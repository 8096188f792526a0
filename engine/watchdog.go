// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"time"

	"github.com/ik5/audchan/stream"
)

// watch runs the ducking state machine once per tick until Close.
func (e *Engine) watch() {
	defer close(e.done)

	ticker := time.NewTicker(e.cfg.Tick)
	defer ticker.Stop()

	for {
		e.sp.PassSecondary()

		select {
		case <-e.quit:
			return
		default:
		}

		e.watchOnce()

		select {
		case <-e.quit:
			return
		case <-ticker.C:
		}
	}
}

// watchOnce performs one watchdog iteration: ME is locked before BGM and
// released after it. Starting a stopped BGM may reopen its file, so it runs
// once both locks are released.
func (e *Engine) watchOnce() {
	me := e.me.Handle().Lock()
	bgm := e.bgm.Handle().Lock()

	snap := Snapshot{
		ME:           me.State(),
		BGM:          bgm.State(),
		External:     bgm.Volume(stream.External),
		NoResumeStop: bgm.NoResumeStop(),
	}

	cur := e.WatchState()
	next, act := Step(cur, snap, e.steps)
	apply(bgm, act)

	bgm.Unlock()
	me.Unlock()

	if act.Start {
		e.bgm.Handle().Start()
	}

	if next != cur {
		e.state.Store(int32(next))
		e.log.Debug().
			Stringer("from", cur).
			Stringer("to", next).
			Stringer("me", snap.ME).
			Stringer("bgm", snap.BGM).
			Msg("ducking transition")
	}
}

func apply(bgm *stream.Tx, act Action) {
	if act.MarkExtPaused {
		bgm.SetExtPaused(true)
	}
	if act.ClearExtPaused {
		bgm.SetExtPaused(false)
	}
	if act.SetExternal {
		bgm.SetVolume(stream.External, act.External)
	}
	if act.Pause {
		bgm.Pause()
	}
	if act.Resume {
		bgm.Resume()
	}
}
