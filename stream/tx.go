// SPDX-License-Identifier: EPL-2.0

package stream

import "github.com/ik5/audchan/audio"

// Tx is a held stream lock. It lets callers such as the ducking watchdog
// observe and change several properties without another goroutine
// interleaving. A Tx must not be used after Unlock.
type Tx struct {
	h *Handle
}

// Lock acquires the stream lock. Pair every call with Tx.Unlock.
func (h *Handle) Lock() *Tx {
	h.mu.Lock()
	return &Tx{h: h}
}

func (t *Tx) Unlock() { t.h.mu.Unlock() }

func (t *Tx) State() audio.PlayState { return t.h.active.State() }

func (t *Tx) Volume(kind VolumeKind) float64 { return t.h.vol[kind] }

func (t *Tx) SetVolume(kind VolumeKind, v float64) { t.h.setVolumeLocked(kind, v) }

func (t *Tx) Pitch() float64 { return t.h.pitch }

func (t *Tx) SetPitch(p float64) { t.h.setPitchLocked(p) }

func (t *Tx) Pause() { t.h.pauseLocked() }

// Resume continues a paused stream.
func (t *Tx) Resume() { t.h.resumeLocked() }

func (t *Tx) ExtPaused() bool { return t.h.extPaused }

func (t *Tx) SetExtPaused(v bool) { t.h.extPaused = v }

// NoResumeStop reports whether the stream was stopped on request, which
// keeps the watchdog from restarting it after a jingle.
func (t *Tx) NoResumeStop() bool { return t.h.noResumeStop }
