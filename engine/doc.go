// SPDX-License-Identifier: EPL-2.0

/*
Package engine is the audio channel engine: fixed BGM, BGS, ME and SE
channels, two pooled channel groups, engine-wide volume sliders and the
watchdog that ducks background music while a music event plays.

The watchdog is a thin loop around Step, a pure transition function over
four states:

	MeNotPlaying -> BgmFadingOut -> MePlaying -> BgmFadingIn -> MeNotPlaying

Each tick it passes the SyncPoint secondary gate, locks ME then BGM, takes a
Snapshot, applies the Action returned by Step and releases both locks.
*/
package engine
