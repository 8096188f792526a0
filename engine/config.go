// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/ik5/audchan/channel"
	"github.com/ik5/audchan/internal/envconf"
)

// EnvPrefix is prepended to every variable read by LoadConfig.
const EnvPrefix = "AUDCHAN_"

type Config struct {
	// Tick is the watchdog poll interval and the fade step granularity.
	Tick time.Duration
	// DuckFadeOut and DuckFadeIn are the BGM ramps around a jingle.
	DuckFadeOut time.Duration
	DuckFadeIn  time.Duration
	// OffsetFadeIn is used when BGM or BGS start part-way into a track.
	OffsetFadeIn time.Duration

	LoopChannels int // looped pooled slots
	Channels     int // one-shot pooled slots
	SESources    int

	BGMVolume int // 0-100
	SFXVolume int // 0-100
}

func DefaultConfig() Config {
	return Config{
		Tick:         15 * time.Millisecond,
		DuckFadeOut:  200 * time.Millisecond,
		DuckFadeIn:   1000 * time.Millisecond,
		OffsetFadeIn: time.Second,
		LoopChannels: 16,
		Channels:     16,
		SESources:    6,
		BGMVolume:    100,
		SFXVolume:    100,
	}
}

// LoadConfig returns DefaultConfig overridden by AUDCHAN_* variables
// (TICK, DUCK_FADE_OUT, DUCK_FADE_IN, OFFSET_FADE_IN, LOOP_CHANNELS,
// CHANNELS, SE_SOURCES, BGM_VOLUME, SFX_VOLUME). Durations take Go syntax or
// plain milliseconds.
func LoadConfig(lookup envconf.Lookup) (Config, error) {
	cfg := DefaultConfig()
	r := envconf.New(EnvPrefix, lookup)

	err := errors.Join(
		r.Duration("TICK", &cfg.Tick),
		r.Duration("DUCK_FADE_OUT", &cfg.DuckFadeOut),
		r.Duration("DUCK_FADE_IN", &cfg.DuckFadeIn),
		r.Duration("OFFSET_FADE_IN", &cfg.OffsetFadeIn),
		r.Int("LOOP_CHANNELS", &cfg.LoopChannels),
		r.Int("CHANNELS", &cfg.Channels),
		r.Int("SE_SOURCES", &cfg.SESources),
		r.Int("BGM_VOLUME", &cfg.BGMVolume),
		r.Int("SFX_VOLUME", &cfg.SFXVolume),
	)
	if err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration and clamps the sliders to 0-100.
func (c *Config) Validate() error {
	switch {
	case c.Tick <= 0:
		return fmt.Errorf("%w: tick %v", ErrInvalidConfig, c.Tick)
	case c.DuckFadeOut < c.Tick || c.DuckFadeIn < c.Tick:
		return fmt.Errorf("%w: duck fades must be at least one tick", ErrInvalidConfig)
	case c.DuckFadeOut >= c.DuckFadeIn:
		return fmt.Errorf("%v >= %v: %w", c.DuckFadeOut, c.DuckFadeIn, ErrInvalidFadeTiming)
	case c.LoopChannels < 0 || c.Channels < 0:
		return fmt.Errorf("%w: negative channel count", ErrInvalidConfig)
	case c.LoopChannels > channel.MaxGroupSize || c.Channels > channel.MaxGroupSize:
		return fmt.Errorf("%w: more than %d channels", ErrInvalidConfig, channel.MaxGroupSize)
	case c.SESources <= 0:
		return fmt.Errorf("%w: need at least one SE source", ErrInvalidConfig)
	}

	c.BGMVolume = clampSlider(c.BGMVolume)
	c.SFXVolume = clampSlider(c.SFXVolume)

	return nil
}

// steps returns the per-tick External volume change for the duck ramps.
func (c *Config) steps() Steps {
	return Steps{
		FadeOut: float64(c.Tick) / float64(c.DuckFadeOut),
		FadeIn:  float64(c.Tick) / float64(c.DuckFadeIn),
	}
}
