// SPDX-License-Identifier: EPL-2.0

/*
Package stream implements a single logical playback stream on top of an
audio.Backend.

A Handle plays through one active backend voice. A crossfade hands that voice
to a tail which fades out on its own ramp while a fresh voice fades in. The
active voice's gain is composed from four components:

	gain = Base × FadeOut × FadeIn × External

Base is set by the caller, External by the ducking watchdog, and the two fade
components by the handle's own fader goroutine, which only ticks while a ramp
is running.

Files are opened with audio.Backend.Cue before the handle lock is taken, so no
lock holder waits on disk or decoder I/O.

Single operations lock the handle internally. Sequences that must observe and
change state atomically take the lock explicitly:

	tx := h.Lock()
	if tx.State() == audio.Playing {
		tx.SetExtPaused(true)
	}
	tx.Unlock()
*/
package stream
