// SPDX-License-Identifier: EPL-2.0

// Package audio defines the boundary between the playback engine and the
// code that turns files into sound.
//
// # Sources
//
// A Source is a pull-based PCM stream of interleaved float32 samples in
// [-1, 1]:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Decoders in the formats packages produce sources; Resampler and
// StereoMapper wrap them. A source signals the end of the stream with
// io.EOF, possibly together with the final samples.
//
// # Registry
//
// Registry maps file extensions to decoders and opens files directly:
//
//	reg := audio.NewRegistry()
//	reg.Register("ogg", vorbis.Decoder{})
//	src, err := reg.Open("Audio/BGM/field.ogg")
//
// # Pitch
//
// Resampler converts to the output rate and applies a pitch factor that can
// be changed while streaming:
//
//	r := audio.NewResampler(src, 48000)
//	_ = r.SetPitch(1.5)
//
// # Voices
//
// Voice and Backend describe the streaming playback primitive the engine
// drives. A Voice plays one loaded file at a time with its own gain, pitch,
// filter and effect. FilterID and EffectID are handles owned by the backend;
// NullFilter and NullEffect mean none.
package audio
