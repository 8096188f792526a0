// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ik5/audchan/audio"
	"github.com/ik5/audchan/channel"
	"github.com/ik5/audchan/stream"
	"github.com/ik5/audchan/syncpoint"
	"github.com/ik5/audchan/utils"
)

// Kind names one of the fixed channels.
type Kind int

const (
	BGM Kind = iota
	BGS
	ME
	SE
)

func (k Kind) String() string {
	switch k {
	case BGM:
		return "bgm"
	case BGS:
		return "bgs"
	case ME:
		return "me"
	case SE:
		return "se"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k := BGM; k <= SE; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownKind)
}

// Engine drives the BGM, BGS, ME and SE channels plus two pooled groups and
// runs the watchdog that ducks BGM while ME plays.
//
// Volumes are integers in 0-100 and pitches integers around 100 (50-150 in
// practice). A stream's Base volume is volume × slider / 10000, where BGM
// and ME follow the BGM slider and BGS and SE follow the SFX slider.
type Engine struct {
	cfg   Config
	log   zerolog.Logger
	sp    *syncpoint.SyncPoint
	steps Steps

	bgm *channel.Channel
	bgs *channel.Channel
	me  *channel.Channel
	se  *channel.Emitter

	loopChannels *channel.Group
	channels     *channel.Group

	sliderMu  sync.Mutex
	bgmSlider int
	sfxSlider int

	state atomic.Int32

	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New validates cfg, creates every channel on backend and starts the
// watchdog. A nil sp gets a private SyncPoint.
func New(backend audio.Backend, sp *syncpoint.SyncPoint, cfg Config, log zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sp == nil {
		sp = syncpoint.New()
	}

	e := &Engine{
		cfg:   cfg,
		log:   log.With().Str("component", "engine").Logger(),
		sp:    sp,
		steps: cfg.steps(),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}

	opts := func(name string, looped bool) stream.Options {
		return stream.Options{
			Name:         name,
			Looped:       looped,
			Tick:         cfg.Tick,
			OffsetFadeIn: cfg.OffsetFadeIn,
			Log:          log,
		}
	}

	e.bgm = channel.New(stream.New(backend, opts("bgm", true)))
	e.bgs = channel.New(stream.New(backend, opts("bgs", true)))
	e.me = channel.New(stream.New(backend, opts("me", false)))

	var err error
	if e.se, err = channel.NewEmitter(backend, cfg.SESources, opts("se", false)); err != nil {
		return nil, errors.Join(err, e.closeStreams())
	}
	if e.loopChannels, err = channel.NewGroup(backend, cfg.LoopChannels, opts("lch", true)); err != nil {
		return nil, errors.Join(err, e.closeStreams())
	}
	if e.channels, err = channel.NewGroup(backend, cfg.Channels, opts("ch", false)); err != nil {
		return nil, errors.Join(err, e.closeStreams())
	}

	e.SetBGMVolume(cfg.BGMVolume)
	e.SetSFXVolume(cfg.SFXVolume)

	go e.watch()

	e.log.Info().
		Dur("tick", cfg.Tick).
		Dur("duck_fade_out", cfg.DuckFadeOut).
		Dur("duck_fade_in", cfg.DuckFadeIn).
		Int("loop_channels", cfg.LoopChannels).
		Int("channels", cfg.Channels).
		Msg("audio engine started")

	return e, nil
}

func volume(v int) float64 { return utils.Percent(v) }

func pitch(p int) float64 {
	if p <= 0 {
		return 1
	}
	return float64(p) / 100
}

func clampSlider(v int) int { return utils.Clamp(v, 0, 100) }

func (e *Engine) BGMPlay(file string, vol, pit int, pos float64) bool {
	return e.bgm.Play(file, volume(vol), pitch(pit), pos, true)
}

func (e *Engine) BGMStop()                { e.bgm.Stop() }
func (e *Engine) BGMFade(d time.Duration) { e.bgm.FadeOut(d) }
func (e *Engine) BGMPos() float64         { return e.bgm.Offset() }
func (e *Engine) BGSStop()                { e.bgs.Stop() }
func (e *Engine) BGSFade(d time.Duration) { e.bgs.FadeOut(d) }
func (e *Engine) BGSPos() float64         { return e.bgs.Offset() }
func (e *Engine) MEStop()                 { e.me.Stop() }
func (e *Engine) MEFade(d time.Duration)  { e.me.FadeOut(d) }
func (e *Engine) SEStop()                 { e.se.Stop() }
func (e *Engine) BGMTrack() string        { return e.bgm.Track() }
func (e *Engine) WatchState() WatchState  { return WatchState(e.state.Load()) }

// SyncPoint returns the rendezvous the watchdog parks on.
func (e *Engine) SyncPoint() *syncpoint.SyncPoint { return e.sp }

func (e *Engine) BGMCrossfade(file string, d time.Duration, vol, pit int, pos float64) bool {
	return e.bgm.Crossfade(file, d, volume(vol), pitch(pit), pos)
}

func (e *Engine) BGSPlay(file string, vol, pit int, pos float64) bool {
	return e.bgs.Play(file, volume(vol), pitch(pit), pos, true)
}

func (e *Engine) BGSCrossfade(file string, d time.Duration, vol, pit int, pos float64) bool {
	return e.bgs.Crossfade(file, d, volume(vol), pitch(pit), pos)
}

// MEPlay starts a jingle. The watchdog ducks BGM while it plays.
func (e *Engine) MEPlay(file string, vol, pit int) bool {
	return e.me.Play(file, volume(vol), pitch(pit), 0, false)
}

func (e *Engine) MECrossfade(file string, d time.Duration, vol, pit int) bool {
	return e.me.Crossfade(file, d, volume(vol), pitch(pit), 0)
}

func (e *Engine) SEPlay(file string, vol, pit int) bool {
	return e.se.Play(file, volume(vol), pitch(pit))
}

// State reports the play state of a fixed channel. SE is Playing while any
// of its sources plays.
func (e *Engine) State(k Kind) (audio.PlayState, error) {
	switch k {
	case BGM:
		return e.bgm.State(), nil
	case BGS:
		return e.bgs.State(), nil
	case ME:
		return e.me.State(), nil
	case SE:
		if e.se.Playing() {
			return audio.Playing, nil
		}
		return audio.Stopped, nil
	}
	return audio.Stopped, fmt.Errorf("%d: %w", k, ErrUnknownKind)
}

func (e *Engine) BGMVolume() int {
	e.sliderMu.Lock()
	defer e.sliderMu.Unlock()
	return e.bgmSlider
}

// SetBGMVolume sets the BGM slider, clamped to 0-100, and re-applies it to
// BGM and ME.
func (e *Engine) SetBGMVolume(v int) {
	e.sliderMu.Lock()
	defer e.sliderMu.Unlock()

	e.bgmSlider = clampSlider(v)
	s := volume(e.bgmSlider)
	e.bgm.SetScale(s, 1)
	e.me.SetScale(s, 1)
}

func (e *Engine) SFXVolume() int {
	e.sliderMu.Lock()
	defer e.sliderMu.Unlock()
	return e.sfxSlider
}

// SetSFXVolume sets the SFX slider, clamped to 0-100, and re-applies it to
// BGS and SE.
func (e *Engine) SetSFXVolume(v int) {
	e.sliderMu.Lock()
	defer e.sliderMu.Unlock()

	e.sfxSlider = clampSlider(v)
	s := volume(e.sfxSlider)
	e.bgs.SetScale(s, 1)
	e.se.SetScale(s)
}

func (e *Engine) SetFilter(k Kind, id audio.FilterID) error {
	switch k {
	case BGM:
		e.bgm.SetFilter(id)
	case BGS:
		e.bgs.SetFilter(id)
	case ME:
		e.me.SetFilter(id)
	case SE:
		e.se.SetFilter(id)
	default:
		return fmt.Errorf("%d: %w", k, ErrUnknownKind)
	}
	return nil
}

func (e *Engine) ClearFilter(k Kind) error { return e.SetFilter(k, audio.NullFilter) }

func (e *Engine) SetEffect(k Kind, id audio.EffectID) error {
	switch k {
	case BGM:
		e.bgm.SetEffect(id)
	case BGS:
		e.bgs.SetEffect(id)
	case ME:
		e.me.SetEffect(id)
	case SE:
		e.se.SetEffect(id)
	default:
		return fmt.Errorf("%d: %w", k, ErrUnknownKind)
	}
	return nil
}

func (e *Engine) ClearEffect(k Kind) error { return e.SetEffect(k, audio.NullEffect) }

// LoopChannels returns the looped pooled group.
func (e *Engine) LoopChannels() *channel.Group { return e.loopChannels }

// Channels returns the one-shot pooled group.
func (e *Engine) Channels() *channel.Group { return e.channels }

// Reset stops every channel and every pooled slot.
func (e *Engine) Reset() {
	e.bgm.Stop()
	e.bgs.Stop()
	e.me.Stop()
	e.se.Stop()
	e.loopChannels.StopAll()
	e.channels.StopAll()

	e.log.Debug().Msg("reset")
}

// Close stops the watchdog and releases every stream. A halted SyncPoint
// must be resumed first or Close blocks until it is.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		close(e.quit)
		<-e.done
		e.closeErr = e.closeStreams()
		e.log.Info().Msg("audio engine stopped")
	})

	return e.closeErr
}

func (e *Engine) closeStreams() error {
	var errs []error
	for _, c := range []*channel.Channel{e.bgm, e.bgs, e.me} {
		if c != nil {
			errs = append(errs, c.Close())
		}
	}
	if e.se != nil {
		errs = append(errs, e.se.Close())
	}
	if e.loopChannels != nil {
		errs = append(errs, e.loopChannels.Close())
	}
	if e.channels != nil {
		errs = append(errs, e.channels.Close())
	}

	return errors.Join(errs...)
}
