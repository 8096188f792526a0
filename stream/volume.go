// SPDX-License-Identifier: EPL-2.0

package stream

// VolumeKind selects one of the multiplicative gain components of a stream.
type VolumeKind int

const (
	// Base is driven by the caller and the engine sliders.
	Base VolumeKind = iota
	// FadeOut is lowered by FadeOut ramps.
	FadeOut
	// FadeIn is raised by offset and crossfade ramps.
	FadeIn
	// External is driven by the ducking watchdog.
	External

	numVolumes
)

func (k VolumeKind) String() string {
	switch k {
	case Base:
		return "base"
	case FadeOut:
		return "fade-out"
	case FadeIn:
		return "fade-in"
	case External:
		return "external"
	default:
		return "unknown"
	}
}

type volumes [numVolumes]float64

func fullVolumes() volumes {
	return volumes{1, 1, 1, 1}
}

func (v *volumes) gain() float64 {
	return v[Base] * v[FadeOut] * v[FadeIn] * v[External]
}

// ramp is a linear fade advanced once per tick.
type ramp struct {
	active bool
	step   float64
}

func (r *ramp) start(step float64) {
	r.active = true
	r.step = step
}

func (r *ramp) cancel() {
	*r = ramp{}
}
