// SPDX-License-Identifier: EPL-2.0

/*
Package backend is the software playback backend: a Mixer implementing
audio.Backend on top of the bundled decoders, per-voice filters and effects,
and output sinks for oto, beep or no device at all.

	reg := backend.NewRegistry()
	mix := backend.NewMixer(reg, 44100, log)
	sink, err := backend.OpenSink(backend.DefaultConfig(), mix, log)

Each voice owns a decode pipeline (decoder, resampler at the voice pitch,
stereo mapper). Looped voices reopen their file when it ends.
*/
package backend
