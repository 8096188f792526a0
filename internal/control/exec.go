// SPDX-License-Identifier: EPL-2.0

package control

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ik5/audchan/audio"
	"github.com/ik5/audchan/backend"
	"github.com/ik5/audchan/channel"
	"github.com/ik5/audchan/engine"
)

// Effects is implemented by backends that own filters and effects.
type Effects interface {
	AddFilter(f backend.Factory) audio.FilterID
	AddEffect(f backend.Factory) audio.EffectID
}

// Executor runs commands against an engine. It is not safe for concurrent
// use; the Dispatcher serialises calls.
type Executor struct {
	eng *engine.Engine
	fx  Effects
	log zerolog.Logger
}

// NewExecutor returns an executor for eng. fx may be nil, in which case the
// lowpass and echo commands fail.
func NewExecutor(eng *engine.Engine, fx Effects, log zerolog.Logger) *Executor {
	return &Executor{
		eng: eng,
		fx:  fx,
		log: log.With().Str("component", "control").Logger(),
	}
}

func (x *Executor) ExecLine(line string) Reply {
	cmd, err := Parse(line)
	if err != nil {
		return fail(err)
	}
	return x.Exec(cmd)
}

func (x *Executor) Exec(cmd Command) Reply {
	r := x.exec(cmd)

	ev := x.log.Debug()
	if r.Err != nil {
		ev = x.log.Warn().Err(r.Err)
	}
	ev.Str("cmd", cmd.Name).Strs("args", cmd.Args).Msg("command")

	return r
}

func (x *Executor) exec(cmd Command) Reply {
	a := args(cmd.Args)

	switch cmd.Name {
	case "bgm", "bgs", "me", "se":
		k, _ := engine.ParseKind(cmd.Name)
		return x.fixed(k, a)
	case "lch":
		return x.pool(x.eng.LoopChannels(), a)
	case "ch":
		return x.pool(x.eng.Channels(), a)
	case "volume":
		return x.slider(a)
	case "filter", "effect":
		return x.fxAssign(cmd.Name, a)
	case "lowpass":
		return x.lowPass(a)
	case "echo":
		return x.echo(a)
	case "reset":
		x.eng.Reset()
		return Reply{}
	case "watch":
		return ok("%s", x.eng.WatchState())
	case "help":
		return ok("%s", help)
	}

	return fail(fmt.Errorf("%q: %w", cmd.Name, ErrUnknownCommand))
}

const help = "bgm|bgs|me|se play|stop|fade|pos|crossfade|state, " +
	"lch|ch play|crossfade|stop|stopall|fade|pos|state|volume|pitch|global-volume|global-pitch|size|filter|effect, " +
	"volume bgm|sfx [n], filter|effect <kind> <id>|clear, lowpass <hz>, echo <ms> <feedback> <mix>, reset, watch"

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func played(started bool, file string) Reply {
	if !started {
		return fail(fmt.Errorf("%s: %w", file, ErrFailed))
	}
	return Reply{}
}

// fixed handles the BGM, BGS, ME and SE channels.
func (x *Executor) fixed(k engine.Kind, a args) Reply {
	sub, err := a.str(0)
	if err != nil {
		return fail(err)
	}

	switch sub {
	case "play":
		return x.fixedPlay(k, a)
	case "crossfade":
		return x.fixedCrossfade(k, a)
	case "stop":
		switch k {
		case engine.BGM:
			x.eng.BGMStop()
		case engine.BGS:
			x.eng.BGSStop()
		case engine.ME:
			x.eng.MEStop()
		case engine.SE:
			x.eng.SEStop()
		}
		return Reply{}
	case "fade":
		n, err := a.mustInt(1)
		if err != nil {
			return fail(err)
		}
		switch k {
		case engine.BGM:
			x.eng.BGMFade(ms(n))
		case engine.BGS:
			x.eng.BGSFade(ms(n))
		case engine.ME:
			x.eng.MEFade(ms(n))
		default:
			return fail(fmt.Errorf("%s fade: %w", k, ErrUsage))
		}
		return Reply{}
	case "pos":
		switch k {
		case engine.BGM:
			return ok("%g", x.eng.BGMPos())
		case engine.BGS:
			return ok("%g", x.eng.BGSPos())
		}
		return fail(fmt.Errorf("%s pos: %w", k, ErrUsage))
	case "state":
		st, err := x.eng.State(k)
		if err != nil {
			return fail(err)
		}
		return ok("%s", st)
	}

	return fail(fmt.Errorf("%s %q: %w", k, sub, ErrUnknownCommand))
}

func (x *Executor) fixedPlay(k engine.Kind, a args) Reply {
	file, err := a.str(1)
	if err != nil {
		return fail(err)
	}
	vol, err := a.intOr(2, 100)
	if err != nil {
		return fail(err)
	}
	pit, err := a.intOr(3, 100)
	if err != nil {
		return fail(err)
	}
	pos, err := a.floatOr(4, 0)
	if err != nil {
		return fail(err)
	}

	switch k {
	case engine.BGM:
		return played(x.eng.BGMPlay(file, vol, pit, pos), file)
	case engine.BGS:
		return played(x.eng.BGSPlay(file, vol, pit, pos), file)
	case engine.ME:
		return played(x.eng.MEPlay(file, vol, pit), file)
	default:
		return played(x.eng.SEPlay(file, vol, pit), file)
	}
}

func (x *Executor) fixedCrossfade(k engine.Kind, a args) Reply {
	file, err := a.str(1)
	if err != nil {
		return fail(err)
	}
	n, err := a.mustInt(2)
	if err != nil {
		return fail(err)
	}
	vol, err := a.intOr(3, 100)
	if err != nil {
		return fail(err)
	}
	pit, err := a.intOr(4, 100)
	if err != nil {
		return fail(err)
	}
	pos, err := a.floatOr(5, 0)
	if err != nil {
		return fail(err)
	}

	switch k {
	case engine.BGM:
		return played(x.eng.BGMCrossfade(file, ms(n), vol, pit, pos), file)
	case engine.BGS:
		return played(x.eng.BGSCrossfade(file, ms(n), vol, pit, pos), file)
	case engine.ME:
		return played(x.eng.MECrossfade(file, ms(n), vol, pit), file)
	}

	return fail(fmt.Errorf("%s crossfade: %w", k, ErrUsage))
}

func (x *Executor) slider(a args) Reply {
	which, err := a.str(0)
	if err != nil {
		return fail(err)
	}

	var get func() int
	var set func(int)

	switch which {
	case "bgm":
		get, set = x.eng.BGMVolume, x.eng.SetBGMVolume
	case "sfx":
		get, set = x.eng.SFXVolume, x.eng.SetSFXVolume
	default:
		return fail(fmt.Errorf("volume %q: %w", which, ErrUsage))
	}

	if len(a) > 1 {
		n, err := a.mustInt(1)
		if err != nil {
			return fail(err)
		}
		set(n)
	}

	return ok("%d", get())
}

func parseID(s string) (uint32, bool, error) {
	if s == "clear" {
		return 0, true, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false, fmt.Errorf("%q: %w", s, ErrUsage)
	}
	return uint32(n), n == 0, nil
}

// fxAssign handles "filter <kind> <id>|clear" and "effect <kind> <id>|clear".
func (x *Executor) fxAssign(what string, a args) Reply {
	name, err := a.str(0)
	if err != nil {
		return fail(err)
	}
	k, err := engine.ParseKind(name)
	if err != nil {
		return fail(err)
	}
	raw, err := a.str(1)
	if err != nil {
		return fail(err)
	}
	id, clr, err := parseID(raw)
	if err != nil {
		return fail(err)
	}

	switch {
	case what == "filter" && clr:
		err = x.eng.ClearFilter(k)
	case what == "filter":
		err = x.eng.SetFilter(k, audio.FilterID(id))
	case clr:
		err = x.eng.ClearEffect(k)
	default:
		err = x.eng.SetEffect(k, audio.EffectID(id))
	}
	if err != nil {
		return fail(err)
	}

	return Reply{}
}

func (x *Executor) lowPass(a args) Reply {
	if x.fx == nil {
		return fail(ErrNoEffects)
	}
	hz, err := a.mustFloat(0)
	if err != nil {
		return fail(err)
	}
	if hz <= 0 {
		return fail(fmt.Errorf("cutoff %g: %w", hz, ErrUsage))
	}

	return ok("%d", x.fx.AddFilter(backend.LowPass(hz)))
}

func (x *Executor) echo(a args) Reply {
	if x.fx == nil {
		return fail(ErrNoEffects)
	}
	delay, err := a.mustInt(0)
	if err != nil {
		return fail(err)
	}
	feedback, err := a.floatOr(1, 0.4)
	if err != nil {
		return fail(err)
	}
	mix, err := a.floatOr(2, 0.5)
	if err != nil {
		return fail(err)
	}
	if delay <= 0 || feedback < 0 || feedback >= 1 {
		return fail(fmt.Errorf("echo %d %g: %w", delay, feedback, ErrUsage))
	}

	return ok("%d", x.fx.AddEffect(backend.Echo(ms(delay), feedback, mix)))
}

// pool handles the lch and ch groups. Volumes and pitches are percentages.
func (x *Executor) pool(g *channel.Group, a args) Reply {
	sub, err := a.str(0)
	if err != nil {
		return fail(err)
	}

	switch sub {
	case "size":
		if len(a) > 1 {
			n, err := a.mustInt(1)
			if err != nil {
				return fail(err)
			}
			if err := g.Resize(n); err != nil {
				return fail(err)
			}
		}
		return ok("%d", g.Size())
	case "stopall":
		g.StopAll()
		return Reply{}
	case "global-volume":
		if len(a) > 1 {
			v, err := a.mustFloat(1)
			if err != nil {
				return fail(err)
			}
			g.SetGlobalVolume(v / 100)
		}
		return ok("%g", g.GlobalVolume()*100)
	case "global-pitch":
		if len(a) > 1 {
			v, err := a.mustFloat(1)
			if err != nil {
				return fail(err)
			}
			g.SetGlobalPitch(v / 100)
		}
		return ok("%g", g.GlobalPitch()*100)
	}

	id, err := a.mustInt(1)
	if err != nil {
		return fail(err)
	}

	return x.slot(g, sub, id, a[2:])
}

func (x *Executor) slot(g *channel.Group, sub string, id int, a args) Reply {
	switch sub {
	case "play":
		file, err := a.str(0)
		if err != nil {
			return fail(err)
		}
		vol, pit, pos, err := envelope(a[1:])
		if err != nil {
			return fail(err)
		}
		fade, err := a.boolOr(4, false)
		if err != nil {
			return fail(err)
		}
		return result(g.Play(id, file, vol, pit, pos, fade))
	case "crossfade":
		file, err := a.str(0)
		if err != nil {
			return fail(err)
		}
		n, err := a.mustInt(1)
		if err != nil {
			return fail(err)
		}
		vol, pit, pos, err := envelope(a[2:])
		if err != nil {
			return fail(err)
		}
		return result(g.Crossfade(id, file, ms(n), vol, pit, pos))
	case "stop":
		return result(g.Stop(id))
	case "fade":
		n, err := a.mustInt(0)
		if err != nil {
			return fail(err)
		}
		return result(g.FadeOut(id, ms(n)))
	case "pos":
		v, err := g.Offset(id)
		return value(v, 1, err)
	case "state":
		st, err := g.State(id)
		if err != nil {
			return fail(err)
		}
		return ok("%s", st)
	case "volume":
		if len(a) > 0 {
			v, err := a.mustFloat(0)
			if err != nil {
				return fail(err)
			}
			if err := g.SetVolume(id, v/100); err != nil {
				return fail(err)
			}
		}
		v, err := g.Volume(id)
		return value(v, 100, err)
	case "pitch":
		if len(a) > 0 {
			v, err := a.mustFloat(0)
			if err != nil {
				return fail(err)
			}
			if err := g.SetPitch(id, v/100); err != nil {
				return fail(err)
			}
		}
		v, err := g.Pitch(id)
		return value(v, 100, err)
	case "filter", "effect":
		raw, err := a.str(0)
		if err != nil {
			return fail(err)
		}
		fid, clr, err := parseID(raw)
		if err != nil {
			return fail(err)
		}
		switch {
		case sub == "filter" && clr:
			return result(g.ClearFilter(id))
		case sub == "filter":
			return result(g.SetFilter(id, audio.FilterID(fid)))
		case clr:
			return result(g.ClearEffect(id))
		default:
			return result(g.SetEffect(id, audio.EffectID(fid)))
		}
	}

	return fail(fmt.Errorf("%q: %w", sub, ErrUnknownCommand))
}

// envelope reads optional [volume%] [pitch%] [pos] arguments.
func envelope(a args) (vol, pit, pos float64, err error) {
	if vol, err = a.floatOr(0, 100); err != nil {
		return
	}
	if pit, err = a.floatOr(1, 100); err != nil {
		return
	}
	pos, err = a.floatOr(2, 0)
	return vol / 100, pit / 100, pos, err
}

func result(err error) Reply {
	if err != nil {
		return fail(err)
	}
	return Reply{}
}

func value(v, scale float64, err error) Reply {
	if err != nil {
		return fail(err)
	}
	return ok("%s", strconv.FormatFloat(v*scale, 'f', -1, 64))
}
