// SPDX-License-Identifier: EPL-2.0

package engine

import "github.com/ik5/audchan/audio"

// WatchState is the state of the BGM ducking watchdog.
type WatchState int32

const (
	MeNotPlaying WatchState = iota
	BgmFadingOut
	MePlaying
	BgmFadingIn
)

func (s WatchState) String() string {
	switch s {
	case MeNotPlaying:
		return "me-not-playing"
	case BgmFadingOut:
		return "bgm-fading-out"
	case MePlaying:
		return "me-playing"
	case BgmFadingIn:
		return "bgm-fading-in"
	default:
		return "unknown"
	}
}

// Snapshot is what the watchdog observes with both stream locks held.
type Snapshot struct {
	ME           audio.PlayState
	BGM          audio.PlayState
	External     float64 // BGM External volume
	NoResumeStop bool    // BGM was stopped on request
}

// Steps are the External volume changes applied per tick.
type Steps struct {
	FadeOut float64
	FadeIn  float64
}

// Action is what the watchdog must do to BGM after a Step.
type Action struct {
	MarkExtPaused  bool
	ClearExtPaused bool

	SetExternal bool
	External    float64

	Pause  bool // pause BGM
	Resume bool // resume a paused BGM
	Start  bool // start a stopped BGM from its last offset
}

// Step is the ducking transition function. Within the fading states a
// change of ME state is handled before any fade arithmetic. BGM is marked
// externally paused only while fading out or held paused; every transition
// out of those states clears the mark.
func Step(state WatchState, snap Snapshot, steps Steps) (WatchState, Action) {
	meOn := snap.ME == audio.Playing

	switch state {
	case MeNotPlaying:
		if meOn {
			return BgmFadingOut, Action{MarkExtPaused: true}
		}

	case BgmFadingOut:
		if !meOn {
			return BgmFadingIn, Action{ClearExtPaused: true}
		}

		vol := snap.External - steps.FadeOut
		if vol < 0 || snap.BGM != audio.Playing {
			return MePlaying, Action{SetExternal: true, External: 0, Pause: true}
		}

		return BgmFadingOut, Action{SetExternal: true, External: vol}

	case MePlaying:
		if meOn {
			break
		}

		if snap.BGM == audio.Paused {
			return BgmFadingIn, Action{ClearExtPaused: true, Resume: true}
		}

		return MeNotPlaying, Action{
			ClearExtPaused: true,
			SetExternal:    true,
			External:       1,
			Start:          snap.BGM == audio.Stopped && !snap.NoResumeStop,
		}

	case BgmFadingIn:
		if snap.BGM == audio.Stopped {
			return MeNotPlaying, Action{ClearExtPaused: true, SetExternal: true, External: 1}
		}

		if meOn {
			return BgmFadingOut, Action{MarkExtPaused: true}
		}

		vol := snap.External + steps.FadeIn
		if vol >= 1 {
			return MeNotPlaying, Action{ClearExtPaused: true, SetExternal: true, External: 1}
		}

		return BgmFadingIn, Action{SetExternal: true, External: vol}
	}

	return state, Action{}
}
