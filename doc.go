// SPDX-License-Identifier: EPL-2.0

// Package audchan is a multi-channel audio playback engine for games.
//
// It drives four fixed channels:
//   - BGM, looping background music
//   - BGS, looping background sound such as rain or wind
//   - ME, a one-shot music effect (a jingle)
//   - SE, short sound effects from a small pool of sources
//
// It also drives two pooled groups of numbered channels, one looping and
// one not. While an ME plays, a watchdog goroutine fades BGM out and pauses
// it, then fades it back in once the ME ends.
//
// # Quick Start
//
//	sys, err := audchan.Open(audchan.DefaultConfig(), zerolog.Nop())
//	if err != nil {
//		return err
//	}
//	defer sys.Close()
//
//	sys.Engine.BGMPlay("music/field.ogg", 90, 100, 0)
//	sys.Engine.MEPlay("music/victory.ogg", 100, 100)
//
// Volumes are integers from 0 to 100 and pitches are percentages, so 100
// plays at normal speed and 150 one and a half times faster.
//
// # Packages
//
// Open only wires the pieces together:
//   - engine holds the channels, the sliders and the ducking watchdog
//   - channel and stream implement a single playable channel with fades
//   - backend decodes files through formats/* and mixes in software
//   - syncpoint freezes background work while the application is suspended
//
// Output goes through oto, beep or a silent null sink; see backend.Config.
// Every setting can come from AUDCHAN_* environment variables through
// LoadConfig.
package audchan
