// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultTick         = 15 * time.Millisecond
	DefaultOffsetFadeIn = time.Second
)

type Options struct {
	// Name identifies the stream in logs ("bgm", "lch[3]", ...).
	Name string
	// Looped streams restart from the beginning when they reach the end.
	Looped bool
	// Tick is the fade step interval.
	Tick time.Duration
	// OffsetFadeIn is the ramp used when Play starts at a non-zero offset
	// with fade-in requested.
	OffsetFadeIn time.Duration
	Log          zerolog.Logger
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.Tick <= 0 {
		out.Tick = DefaultTick
	}
	if out.OffsetFadeIn <= 0 {
		out.OffsetFadeIn = DefaultOffsetFadeIn
	}
	if out.Name == "" {
		out.Name = "stream"
	}
	return out
}
